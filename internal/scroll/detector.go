// Package scroll turns a continuous scroll-position signal into once-only
// depth milestones.
package scroll

import "sync"

// Thresholds are the milestone depths in percent, ascending.
var Thresholds = []int{25, 50, 75, 90}

// Detector keeps the scroll watermark of one session. Each threshold fires at
// most once, in ascending order, and never after Detach. emit runs while the
// detector is locked and must not call back into it.
type Detector struct {
	mu       sync.Mutex
	max      float64
	fired    map[int]bool
	detached bool
	emit     func(depth int)
}

// NewDetector returns a Detector that calls emit for every crossed threshold.
func NewDetector(emit func(depth int)) *Detector {
	return &Detector{
		fired: make(map[int]bool, len(Thresholds)),
		emit:  emit,
	}
}

// Observe feeds one sample. Samples at or below the watermark are ignored;
// every threshold newly crossed by a higher sample fires on the same call.
func (d *Detector) Observe(percent float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.detached || percent <= d.max {
		return
	}
	d.max = percent

	for _, t := range Thresholds {
		if percent >= float64(t) && !d.fired[t] {
			d.fired[t] = true
			d.emit(t)
		}
	}
}

// Detach stops sampling. Already fired milestones are kept.
func (d *Detector) Detach() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detached = true
}

// Watermark returns the highest sample seen.
func (d *Detector) Watermark() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.max
}

// Percent converts page geometry into a 0-100 scroll fraction. A page that
// cannot scroll reports 0.
func Percent(scrollY, documentHeight, viewportHeight float64) float64 {
	scrollable := documentHeight - viewportHeight
	if scrollable <= 0 {
		return 0
	}
	p := scrollY / scrollable * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
