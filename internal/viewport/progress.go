package viewport

import "github.com/Faultbox/relive/internal/loader"

// progressTracker turns byte counts of one request into host-facing
// percentages: determinate only, clamped to [0,100], never decreasing.
type progressTracker struct {
	last     float64
	reported bool
}

func (p *progressTracker) reset() {
	p.last = 0
	p.reported = false
}

// update returns the percentage to report, or false when pr is
// indeterminate or would not advance the bar.
func (p *progressTracker) update(pr loader.Progress) (float64, bool) {
	pct, ok := pr.Percent()
	if !ok {
		return 0, false
	}
	if p.reported && pct <= p.last {
		return 0, false
	}
	p.last = pct
	p.reported = true
	return pct, true
}
