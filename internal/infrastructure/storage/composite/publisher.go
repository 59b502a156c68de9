package composite

import (
	"context"

	"hlsnap/internal/application/port"
	"hlsnap/internal/domain/model"
)

// Publisher fans a report out to every configured publisher.
type Publisher struct {
	pubs []port.ReportPublisher
}

func New(pubs ...port.ReportPublisher) *Publisher {
	out := make([]port.ReportPublisher, 0, len(pubs))
	for _, p := range pubs {
		if p != nil {
			out = append(out, p)
		}
	}
	return &Publisher{pubs: out}
}

func (c *Publisher) Len() int { return len(c.pubs) }

// Publish 依次发布，单个失败不影响其余，返回第一个错误
func (c *Publisher) Publish(ctx context.Context, runID string, r *model.Report) error {
	var firstErr error
	for _, p := range c.pubs {
		if err := p.Publish(ctx, runID, r); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ port.ReportPublisher = (*Publisher)(nil)
