package runs

import "time"

// Run is one recorded estimate.
type Run struct {
	ID            string
	Molecule      string
	Scheme        string
	ModeBits      int
	CoeffBits     int
	States        int
	Modes         int
	Time          float64
	ReqError      float64
	Norm          float64
	Steps         int64
	StepToffoli   int64
	TotalToffoli  int64
	TotalQubits   int
	FragmentCount int
	Fragments     []FragmentRow // loaded by Get only
	Report        []byte        // encoded full report, opaque to the ledger
	CreatedAt     time.Time
}

// FragmentRow is one fragment's place in the recorded step schedule.
type FragmentRow struct {
	Name    string
	Times   int64
	Toffoli int64
	Qubits  int
}
