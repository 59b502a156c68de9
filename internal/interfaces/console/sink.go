package console

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"hlsnap/internal/application/port"
	"hlsnap/internal/domain/model"
)

// Sink 在终端打印报告摘要
type Sink struct {
	mu       sync.Mutex
	out      io.Writer
	renderer *Renderer
}

func NewSink(out io.Writer, color bool) *Sink {
	if out == nil {
		out = os.Stdout
	}
	return &Sink{out: out, renderer: NewRenderer(color)}
}

func (s *Sink) Publish(_ context.Context, runID string, r *model.Report) error {
	if r == nil {
		return errors.New("nil report")
	}
	line := s.renderer.Render(runID, r)

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.out, line)
	return err
}

var _ port.ReportPublisher = (*Sink)(nil)
