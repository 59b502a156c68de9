package hyperliquid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"hlsnap/internal/application"
	"hlsnap/internal/application/port"
	"hlsnap/internal/infrastructure/exchange"
)

const (
	defaultPingInterval = 50 * time.Second
	readIdleTimeout     = 90 * time.Second
	writeTimeout        = 5 * time.Second
)

// BookStream Hyperliquid l2Book WebSocket 流
type BookStream struct {
	wsURL        string
	pingInterval time.Duration

	mu      sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex

	errs      chan error
	done      chan struct{}
	closeOnce sync.Once
}

// NewBookStream 创建订单簿流（未连接）
func NewBookStream(wsURL string) *BookStream {
	if strings.TrimSpace(wsURL) == "" {
		wsURL = "wss://api.hyperliquid.xyz/ws"
	}
	return &BookStream{
		wsURL:        strings.TrimSpace(wsURL),
		pingInterval: defaultPingInterval,
		errs:         make(chan error, 1),
		done:         make(chan struct{}),
	}
}

func (s *BookStream) Name() string { return application.ExchangeHyperliquid }

type wsSubscription struct {
	Type string `json:"type"`
	Coin string `json:"coin"`
}

type wsRequest struct {
	Method       string          `json:"method"`
	Subscription *wsSubscription `json:"subscription,omitempty"`
}

// Connect dials the socket and starts the read and ping goroutines.
func (s *BookStream) Connect(ctx context.Context, onMessage port.MessageHandler) error {
	select {
	case <-s.done:
		return errors.New("hyperliquid stream closed")
	default:
	}

	log.Info().Str("feed", s.Name()).Str("url", s.wsURL).Msg("ws connecting")
	conn, err := exchange.DialWS(ctx, s.wsURL)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.wsURL, err)
	}

	s.mu.Lock()
	if s.conn != nil {
		s.mu.Unlock()
		_ = conn.Close()
		return errors.New("hyperliquid stream already connected")
	}
	s.conn = conn
	s.mu.Unlock()

	log.Info().Str("feed", s.Name()).Msg("ws connected")

	go s.readLoop(conn, onMessage)
	go s.pingLoop()
	return nil
}

func (s *BookStream) readLoop(conn *websocket.Conn, onMessage port.MessageHandler) {
	_ = conn.SetReadDeadline(time.Now().Add(readIdleTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readIdleTimeout))
	})

	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				// 主动关闭，不上报
			default:
				log.Warn().Str("feed", s.Name()).Err(err).Msg("ws read failed")
				s.reportErr(err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readIdleTimeout))
		if onMessage != nil {
			onMessage(b)
		}
	}
}

// pingLoop 应用层心跳，服务端约 60s 无消息会断开
func (s *BookStream) pingLoop() {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.send(wsRequest{Method: "ping"}); err != nil {
				log.Debug().Str("feed", s.Name()).Err(err).Msg("ws ping failed")
			}
		}
	}
}

func (s *BookStream) reportErr(err error) {
	select {
	case s.errs <- err:
	default:
	}
}

func (s *BookStream) Subscribe(ctx context.Context, coin string) error {
	return s.sendCtx(ctx, wsRequest{
		Method:       "subscribe",
		Subscription: &wsSubscription{Type: "l2Book", Coin: coin},
	})
}

func (s *BookStream) Unsubscribe(ctx context.Context, coin string) error {
	return s.sendCtx(ctx, wsRequest{
		Method:       "unsubscribe",
		Subscription: &wsSubscription{Type: "l2Book", Coin: coin},
	})
}

func (s *BookStream) sendCtx(ctx context.Context, req wsRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.send(req)
}

func (s *BookStream) send(req wsRequest) error {
	b, err := json.Marshal(req)
	if err != nil {
		return err
	}

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return errors.New("hyperliquid stream not connected")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, b)
}

func (s *BookStream) Errors() <-chan error { return s.errs }

// Close 关闭连接，可重复调用，未连接时也安全
func (s *BookStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()
		if conn == nil {
			return
		}

		s.writeMu.Lock()
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		s.writeMu.Unlock()
		err = conn.Close()
	})
	return err
}

type l2BookEnvelope struct {
	Channel string `json:"channel"`
	Data    struct {
		Coin string `json:"coin"`
	} `json:"data"`
}

// L2BookFilter 返回匹配 coin 的 l2Book 消息过滤器（大小写不敏感）
func L2BookFilter(coin string) func(raw []byte) bool {
	coin = strings.TrimSpace(coin)
	return func(raw []byte) bool {
		var env l2BookEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return false
		}
		return env.Channel == "l2Book" && strings.EqualFold(strings.TrimSpace(env.Data.Coin), coin)
	}
}

var _ port.BookStream = (*BookStream)(nil)
