package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"

	"hlsnap/internal/application/port"
	"hlsnap/internal/domain/model"
)

const DefaultChannel = "hlsnap:report"

// Publisher 将每次生成的报告 PUBLISH 到频道，便于下游订阅
type Publisher struct {
	rdb     *redis.Client
	channel string
}

// Envelope is the pub/sub message body.
type Envelope struct {
	RunID  string        `json:"run_id"`
	Report *model.Report `json:"report"`
}

func New(rdb *redis.Client, channel string) *Publisher {
	if strings.TrimSpace(channel) == "" {
		channel = DefaultChannel
	}
	return &Publisher{rdb: rdb, channel: channel}
}

func (p *Publisher) Channel() string { return p.channel }

func (p *Publisher) Publish(ctx context.Context, runID string, r *model.Report) error {
	if r == nil {
		return errors.New("nil report")
	}
	b, err := json.Marshal(Envelope{RunID: runID, Report: r})
	if err != nil {
		return err
	}
	// PUBLISH <channel> json，无订阅者时返回 0 也算成功
	return p.rdb.Publish(ctx, p.channel, string(b)).Err()
}

var _ port.ReportPublisher = (*Publisher)(nil)
