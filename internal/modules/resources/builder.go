package resources

// Builder accumulates a circuit's cost while tracking which ancilla registers are
// live, so that the peak ancilla count of a composite operation is exact rather
// than a sum of every allocation.
type Builder struct {
	wires int
	live  int
	peak  int
	gates Counts
}

// NewBuilder starts a circuit acting on the given logical wires.
func NewBuilder(wires int) *Builder {
	return &Builder{wires: wires, gates: Counts{}}
}

// Alloc marks n ancilla qubits as live.
func (b *Builder) Alloc(n int) *Builder {
	b.live += n
	b.peak = max(b.peak, b.live)
	return b
}

// Free releases n live ancilla qubits.
func (b *Builder) Free(n int) *Builder {
	b.live = max(b.live-n, 0)
	return b
}

// Apply appends an operation. Its own ancilla sit on top of whatever is live.
func (b *Builder) Apply(e Estimate) *Builder {
	return b.Repeat(e, 1)
}

// Repeat appends an operation n times.
func (b *Builder) Repeat(e Estimate, n int64) *Builder {
	if n <= 0 {
		return b
	}
	b.peak = max(b.peak, b.live+e.Ancilla)
	for g, c := range e.Gates {
		if c != 0 {
			b.gates[g] += c * n
		}
	}
	return b
}

// Gate appends n applications of a single gate type.
func (b *Builder) Gate(g GateType, n int64) *Builder {
	if n > 0 {
		b.gates[g] += n
	}
	return b
}

// Live returns the number of currently allocated ancilla qubits.
func (b *Builder) Live() int {
	return b.live
}

// Estimate returns the accumulated cost.
func (b *Builder) Estimate() Estimate {
	gates := make(Counts, len(b.gates))
	for g, c := range b.gates {
		gates[g] = c
	}
	return Estimate{Wires: b.wires, Ancilla: b.peak, Gates: gates}
}
