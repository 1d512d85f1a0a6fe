package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/elevsim/config"
	"github.com/sarchlab/elevsim/controller"
	"github.com/sarchlab/elevsim/elevator"
	"github.com/sarchlab/elevsim/hooking"
)

// parkedController builds a fleet whose loops poll once an hour, so
// requests stay pending while the test inspects them.
func parkedController(count int, hooks ...hooking.Hook) *controller.Controller {
	building, err := config.NewBuildingConfig(0, 10)
	Expect(err).NotTo(HaveOccurred())

	timing, err := config.NewTimingConfig(0, 0)
	Expect(err).NotTo(HaveOccurred())
	timing, err = timing.WithPoll(int(time.Hour / time.Millisecond))
	Expect(err).NotTo(HaveOccurred())

	b := controller.MakeBuilder().
		WithCount(count).
		WithBuilding(building).
		WithTiming(timing)
	for _, h := range hooks {
		b = b.WithHook(h)
	}

	c, err := b.Build()
	Expect(err).NotTo(HaveOccurred())

	return c
}

var _ = Describe("Monitor", func() {
	var (
		ctrl   *controller.Controller
		m      *Monitor
		router http.Handler
	)

	BeforeEach(func() {
		ctrl = parkedController(2)
		m = NewMonitor()
		m.RegisterFleet(ctrl)
		router = m.Router()
	})

	AfterEach(func() {
		ctrl.Shutdown()
	})

	serve := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(method, path, nil)
		router.ServeHTTP(rec, req)

		return rec
	}

	It("should list the elevators", func() {
		rec := serve(http.MethodGet, "/api/elevators")

		Expect(rec.Code).To(Equal(http.StatusOK))

		var snapshots []elevator.Snapshot
		Expect(json.Unmarshal(rec.Body.Bytes(), &snapshots)).To(Succeed())
		Expect(snapshots).To(HaveLen(2))
		Expect(snapshots[1].Name).To(Equal("Building.Elevator[1]"))
	})

	It("should describe one elevator", func() {
		rec := serve(http.MethodGet, "/api/elevator/1")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("Building.Elevator[1]"))
	})

	It("should answer 404 for an unknown elevator", func() {
		Expect(serve(http.MethodGet, "/api/elevator/7").Code).
			To(Equal(http.StatusNotFound))
		Expect(serve(http.MethodPost, "/api/malfunction/7").Code).
			To(Equal(http.StatusNotFound))
	})

	It("should answer 400 for a malformed id", func() {
		Expect(serve(http.MethodGet, "/api/elevator/first").Code).
			To(Equal(http.StatusBadRequest))
	})

	It("should accept a floor request", func() {
		rec := serve(http.MethodPost, "/api/request/6")

		Expect(rec.Code).To(Equal(http.StatusAccepted))
		Expect(ctrl.Pending()).To(Equal(1))
	})

	It("should answer 400 for a floor outside the building", func() {
		rec := serve(http.MethodPost, "/api/request/11")

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(ctrl.Pending()).To(BeZero())
	})

	It("should answer 503 when every elevator is down", func() {
		Expect(serve(http.MethodPost, "/api/malfunction/0").Code).
			To(Equal(http.StatusOK))
		Expect(serve(http.MethodPost, "/api/malfunction/1").Code).
			To(Equal(http.StatusOK))

		rec := serve(http.MethodPost, "/api/request/3")

		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
	})

	It("should malfunction and recover an elevator", func() {
		Expect(serve(http.MethodPost, "/api/malfunction/0").Code).
			To(Equal(http.StatusOK))
		Expect(ctrl.Elevators()[0].Status()).
			To(Equal(elevator.StatusMalfunction))

		Expect(serve(http.MethodPost, "/api/malfunction/0").Code).
			To(Equal(http.StatusConflict))

		Expect(serve(http.MethodPost, "/api/recover/0").Code).
			To(Equal(http.StatusOK))
		Expect(ctrl.Elevators()[0].Status()).To(Equal(elevator.StatusIdle))
	})

	It("should answer 409 when recovering a working elevator", func() {
		Expect(serve(http.MethodPost, "/api/recover/1").Code).
			To(Equal(http.StatusConflict))
	})

	It("should reject the wrong method", func() {
		Expect(serve(http.MethodGet, "/api/request/3").Code).
			To(Equal(http.StatusMethodNotAllowed))
		Expect(serve(http.MethodPost, "/api/elevators").Code).
			To(Equal(http.StatusMethodNotAllowed))
		Expect(ctrl.Pending()).To(BeZero())
	})

	It("should answer 404 for an unknown route", func() {
		Expect(serve(http.MethodGet, "/api/stairs").Code).
			To(Equal(http.StatusNotFound))
	})

	It("should list the progress bars", func() {
		bar := m.CreateProgressBar("Requests", 3)
		bar.IncrementInProgress(2)
		bar.MoveInProgressToFinished(1)

		rec := serve(http.MethodGet, "/api/progress")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var bars []map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0]["name"]).To(Equal("Requests"))
		Expect(bars[0]["total"]).To(BeNumerically("==", 3))
		Expect(bars[0]["in_progress"]).To(BeNumerically("==", 1))
		Expect(bars[0]["finished"]).To(BeNumerically("==", 1))

		m.CompleteProgressBar(bar)

		rec = serve(http.MethodGet, "/api/progress")
		Expect(rec.Body.String()).To(Equal("[]"))
	})

	It("should report resources", func() {
		rec := serve(http.MethodGet, "/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("memory_size"))
	})
})

var _ = Describe("Monitor server", func() {
	It("should refuse to start without a fleet", func() {
		_, err := NewMonitor().StartServer()

		Expect(err).To(HaveOccurred())
	})

	It("should serve on a random port", func() {
		ctrl := parkedController(1)
		defer ctrl.Shutdown()

		m := NewMonitor().WithPortNumber(0)
		m.RegisterFleet(ctrl)

		url, err := m.StartServer()
		Expect(err).NotTo(HaveOccurred())
		defer func() {
			Expect(m.StopServer(context.Background())).To(Succeed())
		}()

		rsp, err := http.Get(url + "/api/elevators")
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
	})
})

var _ = Describe("ProgressHook", func() {
	It("should follow requests from acceptance to service", func() {
		bar := &ProgressBar{Name: "Requests", Total: 2}
		hook := NewProgressHook(bar)
		domain := hooking.NewHookableBase()

		fire := func(pos *hooking.HookPos, floor int, detail any) {
			hook.Func(hooking.HookCtx{
				Domain: domain, Pos: pos, Item: floor, Detail: detail,
			})
		}

		fire(elevator.HookPosRequestEnqueued, 4, true)
		fire(elevator.HookPosRequestEnqueued, 4, false)
		fire(elevator.HookPosRequestEnqueued, 9, true)
		Expect(bar.view().InProgress).To(Equal(uint64(2)))

		fire(elevator.HookPosRequestServed, 4, nil)
		Expect(bar.view().InProgress).To(Equal(uint64(1)))
		Expect(bar.view().Finished).To(Equal(uint64(1)))
	})
})
