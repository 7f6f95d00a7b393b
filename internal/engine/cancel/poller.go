package cancel

// Poller batches engine steps and consults a Signal once per granularity.
// A Poller over a nil Signal, and a nil *Poller, never report cancellation
// and cost a single nil check per step.
type Poller struct {
	sig     Signal
	every   int
	pending int
	stopped bool
}

// NewPoller creates a poller that checks sig every granularity steps.
// A non-positive granularity selects DefaultGranularity.
func NewPoller(sig Signal, granularity int) Poller {
	if granularity <= 0 {
		granularity = DefaultGranularity
	}
	return Poller{sig: sig, every: granularity}
}

// Active reports whether the poller has a signal to consult.
func (p *Poller) Active() bool {
	return p != nil && p.sig != nil
}

// Granularity returns the number of steps between polls.
func (p *Poller) Granularity() int {
	if p == nil {
		return DefaultGranularity
	}
	return p.every
}

// Step records n steps and reports whether the operation must stop.
// Once a cancellation is observed every later call returns true.
func (p *Poller) Step(n int) bool {
	if p == nil || p.sig == nil {
		return false
	}
	if p.stopped {
		return true
	}
	p.pending += n
	if p.pending < p.every {
		return false
	}
	p.sig.Advance(uint64(p.pending))
	p.pending = 0
	if p.sig.Canceled() {
		p.stopped = true
	}
	return p.stopped
}

// Check polls immediately, flushing pending progress.
func (p *Poller) Check() bool {
	if p == nil || p.sig == nil {
		return false
	}
	if !p.stopped {
		p.Flush()
		p.stopped = p.sig.Canceled()
	}
	return p.stopped
}

// Flush reports any pending progress without polling.
func (p *Poller) Flush() {
	if p == nil || p.sig == nil || p.pending == 0 {
		return
	}
	p.sig.Advance(uint64(p.pending))
	p.pending = 0
}

// Stopped reports whether a cancellation has been observed.
func (p *Poller) Stopped() bool {
	return p != nil && p.stopped
}
