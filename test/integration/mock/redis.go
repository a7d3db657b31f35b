package mock

import (
	"context"
	"sync"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// Redis is a process-wide in-memory Redis server and a client bound to it.
type Redis struct {
	Client *redis.Client
	server *miniredis.Miniredis
}

var (
	redisOnce sync.Once
	sharedRed *Redis
)

// NewRedis starts the server on first use.
func NewRedis() *Redis {
	redisOnce.Do(func() {
		server, err := miniredis.Run()
		if err != nil {
			panic(err)
		}
		sharedRed = &Redis{
			Client: redis.NewClient(&redis.Options{Addr: server.Addr()}),
			server: server,
		}
	})
	return sharedRed
}

// Flush drops every key.
func (r *Redis) Flush() error {
	return r.Client.FlushAll(context.Background()).Err()
}

// FastForward expires keys as if d had passed.
func (r *Redis) FastForward(d time.Duration) {
	r.server.FastForward(d)
}
