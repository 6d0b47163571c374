package train

import "math"

// monitor tracks a maximized validation metric for early stopping and
// checkpointing. One metric drives both decisions: the epoch that
// improves it is the epoch worth snapshotting, and a patience window
// without improvement ends the run.
type monitor struct {
	patience  int
	best      float64
	bestEpoch int
	since     int
}

func newMonitor(patience int) *monitor {
	return &monitor{patience: patience, best: math.Inf(-1)}
}

// observe records one epoch's metric and reports whether it improved on
// the best seen so far.
func (m *monitor) observe(epoch int, value float64) bool {
	if value > m.best {
		m.best = value
		m.bestEpoch = epoch
		m.since = 0
		return true
	}
	m.since++
	return false
}

// shouldStop reports whether the patience window is exhausted.
func (m *monitor) shouldStop() bool {
	return m.since >= m.patience
}
