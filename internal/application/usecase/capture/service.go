package capture

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"hlsnap/internal/application"
	"hlsnap/internal/application/port"
)

const (
	DefaultConnectGrace = 3 * time.Second
	DefaultTimeout      = 20 * time.Second
)

type ServiceDeps struct {
	Stream       port.BookStream
	Writer       port.SnapshotWriter
	Asset        string
	Match        func(raw []byte) bool // true for the message to capture
	ConnectGrace time.Duration
	Timeout      time.Duration
}

type Service struct {
	deps ServiceDeps
	st   tracker
}

func NewService(deps ServiceDeps) *Service {
	if deps.ConnectGrace <= 0 {
		deps.ConnectGrace = DefaultConnectGrace
	}
	if deps.Timeout <= 0 {
		deps.Timeout = DefaultTimeout
	}
	if deps.Match == nil {
		deps.Match = func([]byte) bool { return true }
	}
	return &Service{deps: deps}
}

// State returns the current state of the capture run.
func (s *Service) State() State { return s.st.get() }

// Transitions returns every state entered so far, in order.
func (s *Service) Transitions() []State { return s.st.path() }

// Run 连接、订阅、等待第一条匹配消息并写入文件，任何路径退出都会关闭连接
func (s *Service) Run(ctx context.Context) (err error) {
	logger := log.With().Str("asset", s.deps.Asset).Logger()

	// one-shot result cell: only the first match is delivered
	result := make(chan []byte, 1)
	var captured atomic.Bool
	onMessage := func(raw []byte) {
		if !s.deps.Match(raw) {
			logger.Debug().Str("snippet", snippet(raw, 100)).Msg("non-target message discarded")
			return
		}
		if !captured.CompareAndSwap(false, true) {
			return
		}
		result <- append([]byte(nil), raw...)
	}

	defer func() {
		if cerr := s.deps.Stream.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("stream close failed")
		}
		s.st.set(StateClosed)
		logger.Info().Msg("stream closed")
	}()

	s.st.set(StateConnecting)
	cctx, cancel := context.WithTimeout(ctx, s.deps.ConnectGrace)
	err = s.deps.Stream.Connect(cctx, onMessage)
	cancel()
	if err != nil {
		s.st.set(StateConnectionFailed)
		return fmt.Errorf("%w: %w", application.ErrConnection, err)
	}

	if err := s.deps.Stream.Subscribe(ctx, s.deps.Asset); err != nil {
		s.st.set(StateConnectionFailed)
		return fmt.Errorf("%w: subscribe: %w", application.ErrConnection, err)
	}
	s.st.set(StateSubscribedWaiting)
	logger.Info().Dur("timeout", s.deps.Timeout).Msg("waiting for order book snapshot")

	timer := time.NewTimer(s.deps.Timeout)
	defer timer.Stop()

	var raw []byte
	select {
	case raw = <-result:
	case serr := <-s.deps.Stream.Errors():
		// a match may have landed just before the drop
		select {
		case raw = <-result:
		default:
			s.st.set(StateConnectionFailed)
			return fmt.Errorf("%w: %w", application.ErrConnection, serr)
		}
	case <-timer.C:
		s.st.set(StateTimedOut)
		return fmt.Errorf("%w after %s", application.ErrTimeout, s.deps.Timeout)
	case <-ctx.Done():
		s.st.set(StateConnectionFailed)
		return fmt.Errorf("%w: %w", application.ErrConnection, ctx.Err())
	}

	s.st.set(StateCaptured)
	logger.Info().Int("bytes", len(raw)).Msg("order book snapshot captured")

	if uerr := s.deps.Stream.Unsubscribe(ctx, s.deps.Asset); uerr != nil {
		logger.Debug().Err(uerr).Msg("unsubscribe failed")
	}

	if err := s.deps.Writer.WriteSnapshot(ctx, raw); err != nil {
		return fmt.Errorf("%w: %w", application.ErrWrite, err)
	}
	return nil
}

func snippet(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
