package app

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/humanbelnik/singalong/core/internal/config"
	http_init "github.com/humanbelnik/singalong/core/internal/delivery/http/init"
	http_room "github.com/humanbelnik/singalong/core/internal/delivery/http/room"
	ws_room "github.com/humanbelnik/singalong/core/internal/delivery/ws/room"
	infra_acrcloud "github.com/humanbelnik/singalong/core/internal/infra/acrcloud"
	infra_artwork "github.com/humanbelnik/singalong/core/internal/infra/artwork"
	infra_audio "github.com/humanbelnik/singalong/core/internal/infra/audio"
	"github.com/humanbelnik/singalong/core/internal/infra/keywordmock"
	infra_lemonfox "github.com/humanbelnik/singalong/core/internal/infra/lemonfox"
	infra_pg_init "github.com/humanbelnik/singalong/core/internal/infra/postgres/init"
	infra_postgres_keyword "github.com/humanbelnik/singalong/core/internal/infra/postgres/keyword"
	infra_redis_init "github.com/humanbelnik/singalong/core/internal/infra/redis/init"
	infra_search_cache "github.com/humanbelnik/singalong/core/internal/infra/redis/search_cache"
	infra_s3 "github.com/humanbelnik/singalong/core/internal/infra/s3"
	"github.com/humanbelnik/singalong/core/internal/infra/s3mock"
	infra_serper "github.com/humanbelnik/singalong/core/internal/infra/serper"
	"github.com/humanbelnik/singalong/core/internal/model"
	"github.com/humanbelnik/singalong/core/internal/service/score_band"
	usecase_broker "github.com/humanbelnik/singalong/core/internal/usecase/broker"
	usecase_recognition "github.com/humanbelnik/singalong/core/internal/usecase/recognition"
	usecase_room "github.com/humanbelnik/singalong/core/internal/usecase/room"
	usecase_round "github.com/humanbelnik/singalong/core/internal/usecase/round"
)

func Go(cfg *config.Config) {
	seed := time.Now().UnixNano()

	var keywords usecase_round.KeywordSource
	if cfg.Postgres.Host == "" {
		slog.Warn("DB_HOST is empty, using the built-in keyword pool")
		keywords = keywordmock.New(rand.New(rand.NewSource(seed)))
	} else {
		pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)
		keywords = infra_postgres_keyword.New(pgConn)
	}

	var searcher usecase_recognition.Searcher = infra_serper.New(cfg.Serper)
	if cfg.Redis.Host != "" {
		redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)
		searcher = infra_search_cache.New(redisConn, "search_cache", cfg.Redis.TTL, searcher)
	}

	var archive usecase_round.Archive
	if cfg.S3.Bucket == "" || (os.Getenv("AWS_ACCESS_KEY_ID") == "" && cfg.S3.Endpoint == "") {
		archive = s3mock.New()
	} else {
		s3conn := infra_s3.MustEstabilishConn(cfg.S3)
		recordings, err := infra_s3.New(cfg.S3.Bucket, s3conn, cfg.S3.Prefix)
		if err != nil {
			panic(err)
		}
		archive = recordings
	}

	recognitionUC := usecase_recognition.New(
		infra_acrcloud.New(cfg.ACRCloud),
		infra_lemonfox.New(cfg.LemonFox),
		searcher,
		infra_artwork.New(cfg.Artwork),
		infra_audio.New(cfg.Audio),
		score_band.New(rand.New(rand.NewSource(seed+1)), cfg.Game.Jitter),
		cfg.Artwork.Domains,
	)
	recognizer := usecase_round.RecognizerFunc(func(ctx context.Context, raw []byte, kw model.Keyword) usecase_broker.Computation {
		return recognitionUC.Start(ctx, raw, kw)
	})

	registry := usecase_room.New()
	broker := usecase_broker.New()
	hub := ws_room.New()

	gameUC := usecase_round.New(
		registry,
		broker,
		hub,
		keywords,
		recognizer,
		archive,
		usecase_round.TimingsFromConfig(cfg.Game),
	)
	dispatcher := ws_room.NewDispatcher(registry, gameUC, hub)

	controllerPool := http_init.NewControllerPool()
	controllerPool.Add(http_room.New(registry, hub, dispatcher))

	controllerPool.Register()
	controllerPool.RunAll(cfg.HTTP.Host, cfg.HTTP.Port)
}
