package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hlsnap/internal/application"
	"hlsnap/internal/application/port"
	"hlsnap/internal/domain/model"
	dsvc "hlsnap/internal/domain/service"
)

type ServiceDeps struct {
	Source    port.MarketSource
	Writer    port.ReportWriter
	Publisher port.ReportPublisher // optional
	TopN      int
	EveryMin  int // 0 = run once
	Now       func() time.Time
}

type Service struct {
	deps ServiceDeps
}

func NewService(deps ServiceDeps) *Service {
	if deps.TopN <= 0 {
		deps.TopN = model.DefaultTopN
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Publisher == nil {
		deps.Publisher = NewNoopPublisher()
	}
	return &Service{deps: deps}
}

// Run 生成一次报告；EveryMin > 0 时按间隔重复，每次运行互不依赖
// In repeat mode a failed run is logged and the loop continues; cancellation
// ends the loop without error.
func (s *Service) Run(ctx context.Context) error {
	if s.deps.EveryMin <= 0 {
		_, err := s.RunOnce(ctx)
		return err
	}

	if _, err := s.RunOnce(ctx); err != nil {
		log.Error().Err(err).Msg("report run failed")
	}

	ticker := time.NewTicker(time.Duration(s.deps.EveryMin) * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				log.Error().Err(err).Msg("report run failed")
			}
		}
	}
}

// RunOnce fetches, joins, ranks and writes a single report.
func (s *Service) RunOnce(ctx context.Context) (*model.Report, error) {
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Str("source", s.deps.Source.Name()).Logger()

	metas, ctxs, err := s.deps.Source.MetaAndAssetContexts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", application.ErrUpstreamFetch, err)
	}
	if len(metas) == 0 {
		return nil, fmt.Errorf("%w: empty asset metadata", application.ErrUpstreamEmpty)
	}
	if len(ctxs) == 0 {
		return nil, fmt.Errorf("%w: empty asset contexts", application.ErrUpstreamEmpty)
	}

	metrics, stats := dsvc.BuildMetrics(metas, ctxs)
	logJoinStats(logger, stats)
	if len(metrics) == 0 {
		return nil, fmt.Errorf("%w: no asset joined metadata with context", application.ErrUpstreamEmpty)
	}

	r := dsvc.NewReport(metrics, s.deps.TopN, s.deps.Now())
	if err := s.deps.Writer.WriteReport(ctx, r); err != nil {
		return nil, fmt.Errorf("%w: %w", application.ErrWrite, err)
	}

	logger.Info().
		Int("assets", len(metrics)).
		Int("top_n", s.deps.TopN).
		Str("timestamp_utc", r.TimestampUTC).
		Msg("report written")

	if err := s.deps.Publisher.Publish(ctx, runID, r); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn().Err(err).Msg("publish report failed")
	}
	return r, nil
}

func logJoinStats(logger zerolog.Logger, st model.JoinStats) {
	if len(st.MissingContext) > 0 {
		logger.Warn().Strs("assets", st.MissingContext).Msg("assets without context skipped")
	}
	if len(st.MissingMeta) > 0 {
		logger.Warn().Strs("assets", st.MissingMeta).Msg("contexts without metadata skipped")
	}
	if len(st.DuplicateContexts) > 0 {
		logger.Warn().Strs("assets", st.DuplicateContexts).Msg("duplicate contexts, last one kept")
	}
	if len(st.DuplicateMeta) > 0 {
		logger.Warn().Strs("assets", st.DuplicateMeta).Msg("duplicate metadata, first one kept")
	}
}
