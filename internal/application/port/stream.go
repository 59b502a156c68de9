package port

import "context"

// MessageHandler is invoked from the stream's read goroutine for every inbound frame.
type MessageHandler func(raw []byte)

// BookStream 单资产订单簿流式连接
type BookStream interface {
	Connect(ctx context.Context, onMessage MessageHandler) error
	Subscribe(ctx context.Context, coin string) error
	Unsubscribe(ctx context.Context, coin string) error
	// Errors delivers at most one error when the connection drops.
	Errors() <-chan error
	// Close is safe to call on a stream that never connected.
	Close() error
}
