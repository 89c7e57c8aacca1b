package redis

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"lettings/internal/platform/config"
)

// Client wraps the go-redis client with health checking.
type Client struct {
	*redis.Client
}

// New connects and pings. Returns nil, nil when no URL is configured.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{Client: client}, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// RegisterPoolMetrics exposes pool statistics as gauges read at scrape time.
func (c *Client) RegisterPoolMetrics(reg prometheus.Registerer) {
	f := promauto.With(reg)
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "lettings_redis_pool_total_conns",
		Help: "Number of total connections in the pool",
	}, func() float64 { return float64(c.PoolStats().TotalConns) })
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "lettings_redis_pool_idle_conns",
		Help: "Number of idle connections in the pool",
	}, func() float64 { return float64(c.PoolStats().IdleConns) })
	f.NewCounterFunc(prometheus.CounterOpts{
		Name: "lettings_redis_pool_timeouts_total",
		Help: "Number of times a connection was not obtained due to timeout",
	}, func() float64 { return float64(c.PoolStats().Timeouts) })
}
