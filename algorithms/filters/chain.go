package filters

// Processor is a stateful streaming filter
type Processor interface {
	ProcessInPlace(buf []float64)
	Reset()
}

// Chain runs processors in order. A nil or empty chain passes audio through.
type Chain []Processor

// ProcessInPlace runs every stage over buf
func (c Chain) ProcessInPlace(buf []float64) {
	for _, p := range c {
		p.ProcessInPlace(buf)
	}
}

// Reset clears the state of every stage
func (c Chain) Reset() {
	for _, p := range c {
		p.Reset()
	}
}
