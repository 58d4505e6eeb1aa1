package metrics

import "sync/atomic"

// CycleCounters tallies request cycles run by the outfit controller.
type CycleCounters struct {
	submitted  atomic.Int64
	succeeded  atomic.Int64
	failed     atomic.Int64
	superseded atomic.Int64
}

// CycleSnapshot is a point-in-time copy of CycleCounters.
type CycleSnapshot struct {
	Submitted  int64 `json:"submitted"`
	Succeeded  int64 `json:"succeeded"`
	Failed     int64 `json:"failed"`
	Superseded int64 `json:"superseded"`
}

// NewCycleCounters returns zeroed counters.
func NewCycleCounters() *CycleCounters {
	return &CycleCounters{}
}

func (c *CycleCounters) Submitted()  { c.submitted.Add(1) }
func (c *CycleCounters) Succeeded()  { c.succeeded.Add(1) }
func (c *CycleCounters) Failed()     { c.failed.Add(1) }
func (c *CycleCounters) Superseded() { c.superseded.Add(1) }

// Snapshot copies the current values.
func (c *CycleCounters) Snapshot() CycleSnapshot {
	return CycleSnapshot{
		Submitted:  c.submitted.Load(),
		Succeeded:  c.succeeded.Load(),
		Failed:     c.failed.Load(),
		Superseded: c.superseded.Load(),
	}
}

// InFlight reports cycles that have neither settled nor been superseded.
func (s CycleSnapshot) InFlight() int64 {
	return s.Submitted - s.Succeeded - s.Failed - s.Superseded
}
