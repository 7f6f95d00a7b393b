package buffer

// Observer receives buffer events. Implementations must be safe for use by
// every buffer they are attached to.
type Observer interface {
	// Operation is called once per public operation with its outcome.
	Operation(op string, err error)
	// Grew is called when storage was replaced by a larger block.
	Grew(from, to int, mode Mode)
}

type nopObserver struct{}

func (nopObserver) Operation(string, error) {}
func (nopObserver) Grew(int, int, Mode)     {}

// observe reports the outcome of op. It is deferred by every public method.
func (b *StringBuffer) observe(op string, errp *error) {
	if b == nil {
		return
	}
	b.obs.Operation(op, *errp)
}
