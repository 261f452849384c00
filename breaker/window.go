package breaker

import "time"

type sample struct {
	at time.Time
	ok bool
}

// window is a time-bounded rolling set of call outcomes. Samples older than
// the monitoring period are pruned on every access, so the failure rate is
// always the ratio over the trailing period. Pruning keeps a running failure
// count so rate queries stay O(1) after the prune scan.
type window struct {
	period  time.Duration
	samples []sample
	head    int // index of the oldest live sample
	fails   int // failures among live samples
}

func newWindow(period time.Duration) *window {
	return &window{period: period}
}

// record appends an outcome observed at now.
func (w *window) record(now time.Time, ok bool) {
	w.prune(now)
	w.samples = append(w.samples, sample{at: now, ok: ok})
	if !ok {
		w.fails++
	}
}

// prune drops samples that fell out of the trailing period. The backing
// slice is compacted once the dead prefix outgrows the live part.
func (w *window) prune(now time.Time) {
	cutoff := now.Add(-w.period)
	for w.head < len(w.samples) && !w.samples[w.head].at.After(cutoff) {
		if !w.samples[w.head].ok {
			w.fails--
		}
		w.head++
	}
	if w.head > len(w.samples)/2 {
		w.samples = append(w.samples[:0], w.samples[w.head:]...)
		w.head = 0
	}
}

// total returns the number of live samples.
func (w *window) total(now time.Time) int {
	w.prune(now)
	return len(w.samples) - w.head
}

// failureRate returns failures/total over the trailing period, 0 when empty.
func (w *window) failureRate(now time.Time) float64 {
	w.prune(now)
	total := len(w.samples) - w.head
	if total == 0 {
		return 0
	}
	return float64(w.fails) / float64(total)
}

// reset clears all samples.
func (w *window) reset() {
	w.samples = w.samples[:0]
	w.head = 0
	w.fails = 0
}
