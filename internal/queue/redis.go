// Package queue publishes booked messages onto a Redis list.
package queue

import (
	"context"
	"fmt"
	"strings"

	"tradebook/internal/pkg/circuit"
	"tradebook/internal/trade"

	"github.com/redis/go-redis/v9"
)

const DefaultTopic = "tradebook:messages"

type Options struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// redisPusher is the slice of the redis client the publisher needs.
type redisPusher interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisPublisher appends each message to the list named by the topic
// (RPUSH); consumers LPOP from the left.
type RedisPublisher struct {
	client  redisPusher
	addr    string
	breaker *circuit.Breaker
}

type PublisherOption func(*RedisPublisher)

// WithBreaker fails publishes fast while b is open.
func WithBreaker(b *circuit.Breaker) PublisherOption {
	return func(p *RedisPublisher) { p.breaker = b }
}

func NewRedisPublisher(client *redis.Client, opts ...PublisherOption) *RedisPublisher {
	return newPublisher(client, client.Options().Addr, opts...)
}

func newPublisher(client redisPusher, addr string, opts ...PublisherOption) *RedisPublisher {
	p := &RedisPublisher{client: client, addr: addr}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, data []byte) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = DefaultTopic
	}
	err := p.breaker.Do(func() error {
		return p.client.RPush(ctx, topic, data).Err()
	})
	if err != nil {
		return &trade.IOError{Op: "publish", Destination: p.destination(topic), Err: err}
	}
	return nil
}

// Ping checks the connection at startup.
func (p *RedisPublisher) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis %s: %w", p.addr, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error { return p.client.Close() }

func (p *RedisPublisher) destination(topic string) string {
	return "redis://" + p.addr + "/" + topic
}
