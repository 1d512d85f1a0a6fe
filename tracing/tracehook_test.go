package tracing

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/elevsim/config"
	"github.com/sarchlab/elevsim/controller"
	"github.com/sarchlab/elevsim/elevator"
	"github.com/sarchlab/elevsim/hooking"
	"github.com/sarchlab/elevsim/idgen"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) CurrentTime() time.Time {
	return c.now
}

type sampleDomain struct {
	*hooking.HookableBase
	name string
}

func newSampleDomain(name string) *sampleDomain {
	return &sampleDomain{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
	}
}

func (d *sampleDomain) Name() string {
	return d.name
}

func (d *sampleDomain) fire(pos *hooking.HookPos, floor int, detail any) {
	d.InvokeHook(hooking.HookCtx{
		Domain: d,
		Pos:    pos,
		Item:   floor,
		Detail: detail,
	})
}

var _ = Describe("TraceHook", func() {
	var (
		mockCtrl *gomock.Controller
		tracer   *MockTracer
		clock    *fakeClock
		hook     hooking.Hook
		domain   *sampleDomain
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		tracer = NewMockTracer(mockCtrl)
		clock = &fakeClock{now: time.Unix(100, 0)}
		hook = NewTraceHook(tracer, idgen.NewSequential(), clock)
		domain = newSampleDomain("Building.Elevator[0]")
		domain.AcceptHook(hook)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should start a ride when a new floor is enqueued", func() {
		var started Task
		tracer.EXPECT().StartTask(gomock.Any()).Do(func(t Task) {
			started = t
		})

		domain.fire(elevator.HookPosRequestEnqueued, 5, true)

		Expect(started.ID).To(Equal("1"))
		Expect(started.Kind).To(Equal(KindRide))
		Expect(started.What).To(Equal("floor 5"))
		Expect(started.Where).To(Equal("Building.Elevator[0]"))
		Expect(started.Floor).To(Equal(5))
		Expect(started.StartTime).To(Equal(clock.now))
	})

	It("should not start a ride for a floor already pending", func() {
		domain.fire(elevator.HookPosRequestEnqueued, 5, false)
	})

	It("should end the ride when the floor is served", func() {
		tracer.EXPECT().StartTask(gomock.Any())

		var ended Task
		tracer.EXPECT().EndTask(gomock.Any()).Do(func(t Task) {
			ended = t
		})

		domain.fire(elevator.HookPosRequestEnqueued, 5, true)
		clock.now = clock.now.Add(3 * time.Second)
		domain.fire(elevator.HookPosRequestServed, 5, nil)

		Expect(ended.ID).To(Equal("1"))
		Expect(ended.Duration()).To(Equal(3 * time.Second))
	})

	It("should ignore served floors with no ride in flight", func() {
		domain.fire(elevator.HookPosRequestServed, 7, nil)
	})

	It("should not end the same ride twice", func() {
		tracer.EXPECT().StartTask(gomock.Any())
		tracer.EXPECT().EndTask(gomock.Any()).Times(1)

		domain.fire(elevator.HookPosRequestEnqueued, 5, true)
		domain.fire(elevator.HookPosRequestServed, 5, nil)
		domain.fire(elevator.HookPosRequestServed, 5, nil)
	})

	It("should step every ride in flight on malfunction and recovery", func() {
		tracer.EXPECT().StartTask(gomock.Any()).Times(2)

		var stepped []Task
		tracer.EXPECT().StepTask(gomock.Any()).Do(func(t Task) {
			stepped = append(stepped, t)
		}).Times(4)

		domain.fire(elevator.HookPosRequestEnqueued, 3, true)
		domain.fire(elevator.HookPosRequestEnqueued, 8, true)
		domain.fire(elevator.HookPosMalfunction, 1, elevator.StatusMoving)
		domain.fire(elevator.HookPosRecover, 1, nil)

		Expect(stepped).To(HaveLen(4))
		for _, t := range stepped[:2] {
			Expect(t.Steps).To(HaveLen(1))
			Expect(t.Steps[0].What).To(Equal("malfunction at floor 1"))
		}
		for _, t := range stepped[2:] {
			Expect(t.Steps).To(HaveLen(2))
			Expect(t.Steps[1].What).To(Equal("recover at floor 1"))
		}
	})

	It("should keep the rides of different elevators apart", func() {
		other := newSampleDomain("Building.Elevator[1]")
		other.AcceptHook(hook)

		tracer.EXPECT().StartTask(gomock.Any()).Times(2)
		tracer.EXPECT().StepTask(gomock.Any()).Do(func(t Task) {
			Expect(t.Where).To(Equal("Building.Elevator[1]"))
		}).Times(1)

		domain.fire(elevator.HookPosRequestEnqueued, 4, true)
		other.fire(elevator.HookPosRequestEnqueued, 4, true)
		other.fire(elevator.HookPosMalfunction, 2, elevator.StatusIdle)
	})
})

var _ = Describe("CollectTrace", func() {
	var (
		mockCtrl *gomock.Controller
		tracer   *MockTracer
		domain   *sampleDomain
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		tracer = NewMockTracer(mockCtrl)
		domain = newSampleDomain("Elevator[0]")
	})

	It("should attach a trace hook", func() {
		CollectTrace(domain, tracer)

		Expect(domain.NumHooks()).To(Equal(1))
	})

	It("should panic if the tracer already traces the domain", func() {
		CollectTrace(domain, tracer)

		Expect(func() { CollectTrace(domain, tracer) }).To(Panic())
	})
})

var _ = Describe("Tracing a running controller", func() {
	It("should finish one ride per served request", func() {
		tracer := NewAverageTimeTracer(nil)

		building, err := config.NewBuildingConfig(1, 10)
		Expect(err).NotTo(HaveOccurred())
		timing, err := config.NewTimingConfig(1, 1)
		Expect(err).NotTo(HaveOccurred())

		ctrl, err := controller.MakeBuilder().
			WithCount(2).
			WithBuilding(building).
			WithTiming(timing).
			WithHook(NewTraceHook(tracer, idgen.NewSequential(), nil)).
			Build()
		Expect(err).NotTo(HaveOccurred())
		defer ctrl.Shutdown()

		for _, f := range []int{5, 10, 3} {
			Expect(ctrl.Request(f)).To(Succeed())
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Expect(ctrl.Drain(ctx)).To(Succeed())

		Expect(tracer.TotalCount()).To(Equal(uint64(3)))
		Expect(tracer.AverageTime()).To(BeNumerically(">", 0))
	})
})
