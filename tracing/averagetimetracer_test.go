package tracing

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AverageTimeTracer", func() {
	var (
		base   time.Time
		tracer *AverageTimeTracer
	)

	BeforeEach(func() {
		base = time.Unix(0, 0)
		tracer = NewAverageTimeTracer(func(t Task) bool {
			return t.Kind == KindRide
		})
	})

	finish := func(id string, kind string, d time.Duration) {
		t := Task{ID: id, Kind: kind, StartTime: base}
		tracer.StartTask(t)
		t.EndTime = base.Add(d)
		tracer.EndTask(t)
	}

	It("should average the finished tasks", func() {
		finish("1", KindRide, 2*time.Second)
		finish("2", KindRide, 4*time.Second)

		Expect(tracer.TotalCount()).To(Equal(uint64(2)))
		Expect(tracer.AverageTime()).To(Equal(3 * time.Second))
	})

	It("should skip filtered tasks", func() {
		finish("1", KindRide, 2*time.Second)
		finish("2", "other", 10*time.Second)

		Expect(tracer.TotalCount()).To(Equal(uint64(1)))
		Expect(tracer.AverageTime()).To(Equal(2 * time.Second))
	})

	It("should not count tasks still in flight", func() {
		tracer.StartTask(Task{ID: "1", Kind: KindRide, StartTime: base})

		Expect(tracer.TotalCount()).To(BeZero())
		Expect(tracer.AverageTime()).To(BeZero())
	})
})
