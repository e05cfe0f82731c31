package videoapi

import (
	"context"
	"io"
	"sync"

	"github.com/romariotrain/video-stream/internal/media/models"
)

// progressReader counts the bytes the transport pulls from the body. It only
// reports when the whole percentage changes to keep the event stream short.
type progressReader struct {
	r       io.ReadCloser
	sent    int64
	total   int64
	lastPct int64
	report  func(sent, total int64)
}

func newProgressReader(r io.ReadCloser, total int64, report func(sent, total int64)) *progressReader {
	return &progressReader{r: r, total: total, lastPct: -1, report: report}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.total > 0 {
		p.sent += int64(n)
		if pct := p.sent * 100 / p.total; pct != p.lastPct {
			p.lastPct = pct
			p.report(p.sent, p.total)
		}
	}
	return n, err
}

func (p *progressReader) Close() error {
	return p.r.Close()
}

// progressSink forwards progress to the event channel until stop is called.
// The transport may still be reading the body after Do returns, so late
// reports are dropped rather than sent after the outcome.
type progressSink struct {
	ctx     context.Context
	events  chan<- models.TransferEvent
	mu      sync.Mutex
	stopped bool
}

func (s *progressSink) report(sent, total int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	select {
	case s.events <- models.TransferEvent{Kind: models.TransferProgress, Sent: sent, Total: total}:
	case <-s.ctx.Done():
	}
}

func (s *progressSink) stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}
