package scroll

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu     sync.Mutex
	depths []int
}

func (r *recorder) emit(depth int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.depths = append(r.depths, depth)
}

func (r *recorder) get() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.depths...)
}

func TestObserve(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    []int
	}{
		{name: "gradual", samples: []float64{10, 30, 60, 95}, want: []int{25, 50, 75, 90}},
		{name: "regression ignored", samples: []float64{80, 20, 90}, want: []int{25, 50, 75, 90}},
		{name: "single jump fires all in order", samples: []float64{100}, want: []int{25, 50, 75, 90}},
		{name: "repeated samples fire once", samples: []float64{26, 26, 27, 26, 49}, want: []int{25}},
		{name: "exact threshold", samples: []float64{25, 50}, want: []int{25, 50}},
		{name: "below first threshold", samples: []float64{5, 10, 24.9}, want: nil},
		{name: "zero", samples: []float64{0}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			d := NewDetector(rec.emit)
			for _, s := range tt.samples {
				d.Observe(s)
			}
			assert.Equal(t, tt.want, rec.get())
		})
	}
}

func TestObserve_MonotonicWatermarkPerSample(t *testing.T) {
	rec := &recorder{}
	d := NewDetector(rec.emit)

	d.Observe(80)
	assert.Equal(t, []int{25, 50, 75}, rec.get())

	d.Observe(20)
	assert.Equal(t, []int{25, 50, 75}, rec.get())
	assert.Equal(t, 80.0, d.Watermark())

	d.Observe(90)
	assert.Equal(t, []int{25, 50, 75, 90}, rec.get())
}

func TestDetach_StopsSampling(t *testing.T) {
	rec := &recorder{}
	d := NewDetector(rec.emit)

	d.Observe(30)
	d.Detach()
	d.Observe(95)

	assert.Equal(t, []int{25}, rec.get())
}

func TestObserve_ConcurrentSamplesFireOnce(t *testing.T) {
	rec := &recorder{}
	d := NewDetector(rec.emit)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for p := 0; p <= 100; p += 5 {
				d.Observe(float64(p))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, []int{25, 50, 75, 90}, rec.get())
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(100, 800, 800))
	assert.Equal(t, 0.0, Percent(100, 600, 800))
	assert.Equal(t, 50.0, Percent(500, 2000, 1000))
	assert.Equal(t, 100.0, Percent(1200, 2000, 1000))
	assert.Equal(t, 0.0, Percent(-20, 2000, 1000))
}
