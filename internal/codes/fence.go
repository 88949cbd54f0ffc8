package codes

import "sync/atomic"

// Fence hands out increasing tickets so that only the newest of several overlapping
// requests gets to apply its result.
type Fence struct {
	seq atomic.Uint64
}

func (f *Fence) Next() uint64 {
	return f.seq.Add(1)
}

func (f *Fence) IsLatest(ticket uint64) bool {
	return f.seq.Load() == ticket
}
