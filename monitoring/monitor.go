// Package monitoring exposes a running elevator fleet over HTTP so that
// requests and fault signals can be issued while it runs.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/elevsim/controller"
	"github.com/sarchlab/elevsim/elevator"
	"github.com/sarchlab/elevsim/idgen"
)

// Fleet is what the monitor needs from a controller.
type Fleet interface {
	Name() string
	Snapshots() []elevator.Snapshot
	Elevator(id int) (*elevator.Elevator, error)
	Request(floor int) error
	Malfunction(id int) error
	Recover(id int) error
}

// Monitor turns a running controller into a server.
type Monitor struct {
	fleet           Fleet
	portNumber      int
	profileDuration time.Duration
	ids             idgen.Generator

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar

	server *http.Server
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		profileDuration: time.Second,
		ids:             idgen.NewSequential(),
	}
}

// WithPortNumber sets the port number of the monitor. Ports below 1000 are
// replaced with a random port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithProfileDuration sets how long /api/profile samples the CPU.
func (m *Monitor) WithProfileDuration(d time.Duration) *Monitor {
	m.profileDuration = d
	return m
}

// RegisterFleet registers the controller to be monitored.
func (m *Monitor) RegisterFleet(f Fleet) {
	m.fleet = f
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        m.ids.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the handler serving the monitoring API.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/elevators", m.listElevators).Methods(http.MethodGet)
	r.HandleFunc("/api/elevator/{id}", m.elevatorDetail).Methods(http.MethodGet)
	r.HandleFunc("/api/request/{floor}", m.request).Methods(http.MethodPost)
	r.HandleFunc("/api/malfunction/{id}", m.malfunction).Methods(http.MethodPost)
	r.HandleFunc("/api/recover/{id}", m.recoverElevator).Methods(http.MethodPost)
	r.HandleFunc("/api/progress", m.listProgressBars).Methods(http.MethodGet)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	return r
}

// StartServer starts serving in the background and returns the URL.
func (m *Monitor) StartServer() (string, error) {
	if m.fleet == nil {
		return "", errors.New("no fleet registered")
	}

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring elevators with %s\n", url)

	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("monitoring server: %v", err)
		}
	}()

	return url, nil
}

// StopServer shuts the server down.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) listElevators(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, m.fleet.Snapshots())
}

func (m *Monitor) elevatorDetail(w http.ResponseWriter, r *http.Request) {
	e := m.findElevatorOrError(w, r)
	if e == nil {
		return
	}

	snapshot := e.Snapshot()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&snapshot)
	serializer.SetMaxDepth(2)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) request(w http.ResponseWriter, r *http.Request) {
	floor, err := strconv.Atoi(mux.Vars(r)["floor"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err = m.fleet.Request(floor)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (m *Monitor) malfunction(w http.ResponseWriter, r *http.Request) {
	e := m.findElevatorOrError(w, r)
	if e == nil {
		return
	}

	if e.Status() == elevator.StatusMalfunction {
		writeError(w, http.StatusConflict,
			fmt.Errorf("%s is already malfunctioning", e.Name()))
		return
	}

	dieOnErr(m.fleet.Malfunction(e.ID()))
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) recoverElevator(w http.ResponseWriter, r *http.Request) {
	e := m.findElevatorOrError(w, r)
	if e == nil {
		return
	}

	if e.Status() != elevator.StatusMalfunction {
		writeError(w, http.StatusConflict,
			fmt.Errorf("%s is not malfunctioning", e.Name()))
		return
	}

	dieOnErr(m.fleet.Recover(e.ID()))
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) findElevatorOrError(
	w http.ResponseWriter,
	r *http.Request,
) *elevator.Elevator {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil
	}

	e, err := m.fleet.Elevator(id)
	if err != nil {
		writeError(w, statusOf(err), err)
		return nil
	}

	return e
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, controller.ErrInvalidFloor):
		return http.StatusBadRequest
	case errors.Is(err, controller.ErrUnknownElevator):
		return http.StatusNotFound
	case errors.Is(err, controller.ErrNoEligibleUnit):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	views := make([]progressBarView, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		views = append(views, b.view())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, views)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	time.Sleep(m.profileDuration)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed,
		fmt.Errorf("%s not allowed on %s", r.Method, r.URL.Path))
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	fmt.Fprintf(w, "Error: %s", err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
