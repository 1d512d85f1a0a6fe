package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/elevsim/config"
	"github.com/sarchlab/elevsim/controller"
	"github.com/sarchlab/elevsim/datarecording"
	"github.com/sarchlab/elevsim/dispatch"
	"github.com/sarchlab/elevsim/eventlog"
	"github.com/sarchlab/elevsim/idgen"
	"github.com/sarchlab/elevsim/monitoring"
	"github.com/sarchlab/elevsim/tracing"
)

type runOptions struct {
	elevators int
	minFloor  int
	maxFloor  int
	moveMs    int
	doorMs    int
	strategy  string

	requests     []int
	faultUnit    int
	faultAfter   time.Duration
	recoverAfter time.Duration
	timeout      time.Duration

	record      string
	monitor     bool
	port        int
	openBrowser bool
	verbose     bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the elevators until every request is served.",
	Long: "`run` issues the floor requests, optionally malfunctions one " +
		"elevator and recovers it, then waits until every working elevator " +
		"is idle.",
	Run: func(cmd *cobra.Command, _ []string) {
		opts, err := runOptionsFrom(cmd)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		rides, err := simulate(ctx, opts, os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			atexit.Exit(1)
		}

		fmt.Printf("Served %d rides, mean ride time %v\n",
			rides.TotalCount(), rides.AverageTime().Round(time.Millisecond))

		atexit.Exit(0)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.Int("elevators", 3, "Number of elevators. Env ELEVSIM_ELEVATORS.")
	f.Int("min-floor", 0, "Lowest floor. Env ELEVSIM_MIN_FLOOR.")
	f.Int("max-floor", 20, "Highest floor. Env ELEVSIM_MAX_FLOOR.")
	f.Int("move-ms", 300, "Time to travel one floor. Env ELEVSIM_MOVE_MS.")
	f.Int("door-ms", 700, "Time the door stays open. Env ELEVSIM_DOOR_MS.")
	f.String("strategy", "nearest",
		"Dispatch strategy (nearest, least-loaded). Env ELEVSIM_STRATEGY.")
	f.IntSlice("requests", []int{5, 10, 3}, "Floors to request, in order.")
	f.Int("fault-unit", 1, "Elevator to malfunction; negative for none.")
	f.Duration("fault-after", 5*time.Second,
		"Delay between the requests and the malfunction.")
	f.Duration("recover-after", 3*time.Second,
		"Delay between the malfunction and the recovery.")
	f.Duration("timeout", time.Minute,
		"Give up waiting for the elevators after this long.")
	f.String("record", "",
		"Record rides into <record>.sqlite3. The file must not exist.")
	f.Bool("monitor", false, "Serve the monitoring API while running.")
	f.Int("port", 0, "Monitoring port; 0 picks a free one.")
	f.Bool("open-browser", false, "Open the monitoring URL in a browser.")
	f.BoolP("verbose", "v", false, "Log every floor passed.")
}

func runOptionsFrom(cmd *cobra.Command) (runOptions, error) {
	var (
		opts runOptions
		err  error
	)

	ints := []struct {
		flag, env string
		dst       *int
	}{
		{"elevators", "ELEVSIM_ELEVATORS", &opts.elevators},
		{"min-floor", "ELEVSIM_MIN_FLOOR", &opts.minFloor},
		{"max-floor", "ELEVSIM_MAX_FLOOR", &opts.maxFloor},
		{"move-ms", "ELEVSIM_MOVE_MS", &opts.moveMs},
		{"door-ms", "ELEVSIM_DOOR_MS", &opts.doorMs},
	}

	for _, o := range ints {
		*o.dst, err = intOption(cmd, o.flag, o.env)
		if err != nil {
			return opts, err
		}
	}

	opts.strategy, _ = cmd.Flags().GetString("strategy")
	if v, ok := os.LookupEnv("ELEVSIM_STRATEGY"); ok &&
		!cmd.Flags().Changed("strategy") {
		opts.strategy = v
	}

	opts.requests, _ = cmd.Flags().GetIntSlice("requests")
	opts.faultUnit, _ = cmd.Flags().GetInt("fault-unit")
	opts.faultAfter, _ = cmd.Flags().GetDuration("fault-after")
	opts.recoverAfter, _ = cmd.Flags().GetDuration("recover-after")
	opts.timeout, _ = cmd.Flags().GetDuration("timeout")
	opts.record, _ = cmd.Flags().GetString("record")
	opts.monitor, _ = cmd.Flags().GetBool("monitor")
	opts.port, _ = cmd.Flags().GetInt("port")
	opts.openBrowser, _ = cmd.Flags().GetBool("open-browser")
	opts.verbose, _ = cmd.Flags().GetBool("verbose")

	return opts, nil
}

// intOption returns the flag value, or the environment variable when the
// flag was not given on the command line.
func intOption(cmd *cobra.Command, flag, env string) (int, error) {
	v, _ := cmd.Flags().GetInt(flag)
	if cmd.Flags().Changed(flag) {
		return v, nil
	}

	s, ok := os.LookupEnv(env)
	if !ok {
		return v, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", env, err)
	}

	return n, nil
}

// simulate runs one scenario and returns the ride statistics. Events are
// logged to logOut.
func simulate(
	ctx context.Context,
	opts runOptions,
	logOut io.Writer,
) (*tracing.AverageTimeTracer, error) {
	building, err := config.NewBuildingConfig(opts.minFloor, opts.maxFloor)
	if err != nil {
		return nil, err
	}

	timing, err := config.NewTimingConfig(opts.moveMs, opts.doorMs)
	if err != nil {
		return nil, err
	}

	strategy, err := dispatch.ByName(opts.strategy)
	if err != nil {
		return nil, err
	}

	rides := tracing.NewAverageTimeTracer(nil)
	ids := idgen.NewSequential()

	b := controller.MakeBuilder().
		WithCount(opts.elevators).
		WithStrategy(strategy).
		WithBuilding(building).
		WithTiming(timing).
		WithHook(eventlog.NewLogHook(logOut, opts.verbose)).
		WithHook(tracing.NewTraceHook(rides, ids, nil))

	var dbTracer *tracing.DBTracer
	if opts.record != "" {
		dbTracer = tracing.NewDBTracer(
			datarecording.New(opts.record), time.Now())
		b = b.WithHook(tracing.NewTraceHook(dbTracer, ids, nil))
	}

	var monitor *monitoring.Monitor
	if opts.monitor {
		monitor = monitoring.NewMonitor().WithPortNumber(opts.port)
		bar := monitor.CreateProgressBar("Requests", uint64(len(opts.requests)))
		b = b.WithHook(monitoring.NewProgressHook(bar))
	}

	ctrl, err := b.Build()
	if err != nil {
		return nil, err
	}
	defer ctrl.Shutdown()

	if monitor != nil {
		if err := startMonitor(monitor, ctrl, opts.openBrowser); err != nil {
			return nil, err
		}
		defer monitor.StopServer(context.Background())
	}

	for _, floor := range opts.requests {
		if err := ctrl.Request(floor); err != nil {
			fmt.Fprintf(logOut, "Request %d failed: %v\n", floor, err)
		}
	}

	if opts.faultUnit >= 0 {
		if err := injectFault(ctx, ctrl, opts); err != nil {
			return nil, err
		}
	}

	drainCtx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	err = ctrl.Drain(drainCtx)
	ctrl.Shutdown()

	if dbTracer != nil {
		dbTracer.Flush()
	}

	if err != nil {
		return rides, fmt.Errorf("waiting for the elevators: %w", err)
	}

	return rides, nil
}

func startMonitor(
	monitor *monitoring.Monitor,
	ctrl *controller.Controller,
	openBrowser bool,
) error {
	monitor.RegisterFleet(ctrl)

	url, err := monitor.StartServer()
	if err != nil {
		return err
	}

	if openBrowser {
		if err := browser.OpenURL(url + "/api/elevators"); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
		}
	}

	return nil
}

// injectFault malfunctions one elevator after faultAfter and recovers it
// recoverAfter later.
func injectFault(
	ctx context.Context,
	ctrl *controller.Controller,
	opts runOptions,
) error {
	if !sleep(ctx, opts.faultAfter) {
		return ctx.Err()
	}

	if err := ctrl.Malfunction(opts.faultUnit); err != nil {
		return err
	}

	if !sleep(ctx, opts.recoverAfter) {
		return ctx.Err()
	}

	return ctrl.Recover(opts.faultUnit)
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
