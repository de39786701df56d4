package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/ledger-backend/internal/domain/accounts"
	"github.com/yungbote/ledger-backend/internal/pkg/logger"
)

const DefaultChannel = "ledger.account.events"

type RedisPublisher struct {
	log     *logger.Logger
	rdb     goredis.UniversalClient
	channel string
	owned   bool
}

var _ Publisher = (*RedisPublisher)(nil)

// NewRedisPublisher dials addr and pings it before returning.
func NewRedisPublisher(addr, channel string, log *logger.Logger) (*RedisPublisher, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	p := NewRedisPublisherFromClient(rdb, channel, log)
	p.owned = true
	return p, nil
}

// NewRedisPublisherFromClient wraps an existing client. Close leaves the
// client open.
func NewRedisPublisherFromClient(rdb goredis.UniversalClient, channel string, log *logger.Logger) *RedisPublisher {
	if log == nil {
		log = logger.NewNop()
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{
		log:     log.With("service", "RedisEventPublisher"),
		rdb:     rdb,
		channel: channel,
	}
}

func (p *RedisPublisher) Transport() string { return "redis" }

func (p *RedisPublisher) Channel() string { return p.channel }

func (p *RedisPublisher) Client() goredis.UniversalClient { return p.rdb }

func (p *RedisPublisher) Publish(ctx context.Context, ev accounts.Event) error {
	if p == nil || p.rdb == nil {
		return fmt.Errorf("redis event publisher not initialized")
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.rdb.Publish(ctx, p.channel, raw).Err()
}

// Subscribe forwards every event on the channel to onEvent until ctx ends.
// It returns once the subscription is confirmed.
func (p *RedisPublisher) Subscribe(ctx context.Context, onEvent func(ev accounts.Event)) error {
	if p == nil || p.rdb == nil {
		return fmt.Errorf("redis event publisher not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := p.rdb.Subscribe(ctx, p.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var ev accounts.Event
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					p.log.Warn("bad redis event payload", "error", err)
					continue
				}
				onEvent(ev)
			}
		}
	}()

	return nil
}

func (p *RedisPublisher) Close() error {
	if p == nil || p.rdb == nil || !p.owned {
		return nil
	}
	return p.rdb.Close()
}
