package infra_redis_init

import (
	"fmt"
	"log"
	"log/slog"

	"github.com/go-redis/redis"
	"github.com/humanbelnik/singalong/core/internal/config"
)

// MustEstablishConn connects to the redis instance backing the search cache.
func MustEstablishConn(cfg config.RedisCache) *redis.Client {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       0,
	})

	if err := client.Ping().Err(); err != nil {
		log.Fatal("search cache: redis ping failed: ", err)
	}

	slog.Default().Info("search cache connected", "addr", addr, "ttl", cfg.TTL)
	return client
}
