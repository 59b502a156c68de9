package report

import (
	"context"

	"hlsnap/internal/application/port"
	"hlsnap/internal/domain/model"
)

type noopPublisher struct{}

func NewNoopPublisher() port.ReportPublisher { return &noopPublisher{} }

func (n *noopPublisher) Publish(ctx context.Context, runID string, r *model.Report) error {
	return nil
}
