package pipeline

import "sync/atomic"

type stats struct {
	fetch    atomic.Int64
	embedded atomic.Int64
	ocr      atomic.Int64
	evaluate atomic.Int64
}

// Stats is a point-in-time snapshot of stage invocation counters.
type Stats struct {
	Fetch    int64
	Embedded int64
	OCR      int64
	Evaluate int64
}

// Stats reports how many times each stage has been entered since the
// Screener was constructed.
func (s *Screener) Stats() Stats {
	return Stats{
		Fetch:    s.stats.fetch.Load(),
		Embedded: s.stats.embedded.Load(),
		OCR:      s.stats.ocr.Load(),
		Evaluate: s.stats.evaluate.Load(),
	}
}
