// Package queue publishes encoded frames onto the Redis-backed list fabric
// the replay engine feeds.
package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"commtester/internal/errs"
)

const defaultSentinelPort = 26399

// Publisher pushes an encoded frame onto a named queue.
type Publisher interface {
	LPush(ctx context.Context, queueName string, data []byte) error
	Close() error
}

// Info describes how to reach the Redis endpoint a RedisPublisher targets,
// either directly or via Sentinel master discovery.
type Info struct {
	Host     string
	Port     int
	Password string
	DB       int

	// SentinelAddr and MasterName, when both set, cause Connect to resolve
	// the current master through Sentinel before dialing it. Host/Port are
	// ignored in that case.
	SentinelAddr string
	MasterName   string
}

// RedisPublisher implements Publisher against a shared go-redis client
// pool, safe for concurrent use from every replay worker.
type RedisPublisher struct {
	client *redis.Client
}

// Connect resolves info (via Sentinel if configured) and opens a client
// pool against the result.
func Connect(ctx context.Context, info Info) (*RedisPublisher, error) {
	host, port := info.Host, info.Port
	if info.SentinelAddr != "" && info.MasterName != "" {
		resolvedHost, resolvedPort, err := ResolveMaster(ctx, info.SentinelAddr, info.MasterName)
		if err != nil {
			return nil, err
		}
		host, port = resolvedHost, resolvedPort
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: info.Password,
		DB:       info.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errs.Wrap(errs.Transport, "redis connect", err)
	}
	return &RedisPublisher{client: client}, nil
}

// ResolveMaster asks the Sentinel at sentinelAddr (host:port, default
// Sentinel port 26399 in the reference deployment) for the current master
// of masterName via SENTINEL get-master-addr-by-name.
func ResolveMaster(ctx context.Context, sentinelAddr, masterName string) (host string, port int, err error) {
	sentinel := redis.NewSentinelClient(&redis.Options{Addr: sentinelAddr})
	defer sentinel.Close()

	addr, err := sentinel.GetMasterAddrByName(ctx, masterName).Result()
	if err != nil {
		return "", 0, errs.Wrap(errs.Transport, "sentinel get-master-addr-by-name", err)
	}
	if len(addr) != 2 {
		return "", 0, errs.New(errs.Transport, "sentinel returned malformed master address")
	}
	var p int
	if _, scanErr := fmt.Sscanf(addr[1], "%d", &p); scanErr != nil {
		return "", 0, errs.Wrap(errs.Transport, "sentinel master port", scanErr)
	}
	return addr[0], p, nil
}

// LPush pushes data onto queueName as a single atomic left-push.
func (p *RedisPublisher) LPush(ctx context.Context, queueName string, data []byte) error {
	if err := p.client.LPush(ctx, queueName, data).Err(); err != nil {
		return errs.Wrap(errs.Transport, "lpush "+queueName, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// DefaultSentinelPort is exported for CLI flag defaults.
func DefaultSentinelPort() int { return defaultSentinelPort }
