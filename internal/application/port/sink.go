package port

import (
	"context"

	"hlsnap/internal/domain/model"
)

// ReportWriter persists the report; failure is terminal for the run.
type ReportWriter interface {
	WriteReport(ctx context.Context, r *model.Report) error
}

// ReportPublisher 报告的次要输出（控制台、Redis 等），失败只记录日志
type ReportPublisher interface {
	Publish(ctx context.Context, runID string, r *model.Report) error
}

// SnapshotWriter persists a raw stream message.
type SnapshotWriter interface {
	WriteSnapshot(ctx context.Context, raw []byte) error
}
