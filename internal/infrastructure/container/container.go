package container

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"hlsnap/internal/application/port"
	"hlsnap/internal/infrastructure/config"
	"hlsnap/internal/infrastructure/exchange/hyperliquid"
	"hlsnap/internal/infrastructure/storage/composite"
	"hlsnap/internal/infrastructure/storage/jsonfile"
	redispub "hlsnap/internal/infrastructure/storage/redis"
	"hlsnap/internal/interfaces/console"
)

// Container 包含所有应用依赖
type Container struct {
	cfg         *config.Config
	redisClient *redis.Client
	publisher   *composite.Publisher
	closeOnce   sync.Once
	closerChain []func() error
}

// New 创建新的容器实例
func New(cfg *config.Config) (*Container, error) {
	c := &Container{
		cfg:         cfg,
		closerChain: make([]func() error, 0),
	}

	var pubs []port.ReportPublisher
	if !cfg.Report.Quiet {
		pubs = append(pubs, console.NewSink(os.Stdout, !cfg.App.NoColor))
	}

	if cfg.Redis.Enabled {
		if err := c.initRedis(); err != nil {
			// 清理已初始化的资源
			_ = c.Close()
			return nil, fmt.Errorf("redis init failed: %w", err)
		}
		pubs = append(pubs, redispub.New(c.redisClient, cfg.Redis.Channel))
	}

	c.publisher = composite.New(pubs...)
	return c, nil
}

// initRedis 初始化 Redis 连接
func (c *Container) initRedis() error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     c.cfg.Redis.Addr,
		Password: c.cfg.Redis.Password,
		DB:       c.cfg.Redis.DB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	c.redisClient = rdb

	// 注册关闭回调
	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing redis connection")
		return rdb.Close()
	})

	log.Info().
		Str("addr", c.cfg.Redis.Addr).
		Int("db", c.cfg.Redis.DB).
		Str("channel", c.cfg.Redis.Channel).
		Msg("redis initialized")

	return nil
}

// Config 获取配置
func (c *Container) Config() *config.Config {
	return c.cfg
}

// RedisClient 获取 Redis 客户端（未启用时为 nil）
func (c *Container) RedisClient() *redis.Client {
	return c.redisClient
}

// InfoClient 构建 REST 客户端
func (c *Container) InfoClient() *hyperliquid.InfoClient {
	hl := c.cfg.Exchange.Hyperliquid
	return hyperliquid.NewInfoClient(
		hl.RestURL,
		hyperliquid.WithRateLimit(hl.RequestsPerSec),
		hyperliquid.WithRetries(hl.MaxRetries, 500*time.Millisecond),
	)
}

// BookStream 构建订单簿流，每次调用返回新连接对象
func (c *Container) BookStream() *hyperliquid.BookStream {
	return hyperliquid.NewBookStream(c.cfg.Exchange.Hyperliquid.WsURL)
}

// ReportPublisher 次要输出（终端摘要、Redis），失败不影响主流程
func (c *Container) ReportPublisher() *composite.Publisher {
	return c.publisher
}

func (c *Container) ReportWriter() *jsonfile.Writer {
	return jsonfile.New(c.cfg.Report.OutputPath)
}

func (c *Container) SnapshotWriter() *jsonfile.Writer {
	return jsonfile.New(c.cfg.Capture.OutputPath)
}

// Close 关闭所有资源（按后进先出顺序）
func (c *Container) Close() error {
	var err error
	c.closeOnce.Do(func() {
		for i := len(c.closerChain) - 1; i >= 0; i-- {
			if e := c.closerChain[i](); e != nil {
				log.Error().Err(e).Msg("error closing resource")
				if err == nil {
					err = e
				}
			}
		}
		log.Debug().Msg("container closed")
	})
	return err
}
