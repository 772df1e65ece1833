package loader

import "io"

// progressStep is the minimum number of bytes between two progress events.
const progressStep = 32 << 10

// countingReader reports bytes read through report.
type countingReader struct {
	r      io.Reader
	total  int64
	loaded int64
	last   int64
	report func(Progress)
}

func newCountingReader(r io.Reader, total int64, report func(Progress)) *countingReader {
	if total <= 0 {
		total = -1
	}
	return &countingReader{r: r, total: total, report: report}
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.loaded += int64(n)
	if n > 0 && c.loaded-c.last >= progressStep {
		c.emit()
	}
	return n, err
}

func (c *countingReader) emit() {
	if c.report == nil {
		return
	}
	c.last = c.loaded
	c.report(Progress{Loaded: c.loaded, Total: c.total})
}

// finish sends the final event. At EOF the size is known, so the event is
// determinate even when the transport never reported a length.
func (c *countingReader) finish() {
	c.total = c.loaded
	c.emit()
}
