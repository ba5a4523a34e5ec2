package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/iconforge/iconforge-backend/config"
	"github.com/iconforge/iconforge-backend/internal/application"
	"github.com/iconforge/iconforge-backend/internal/domain/repository"
	pginfra "github.com/iconforge/iconforge-backend/internal/infrastructure/postgres"
	"github.com/iconforge/iconforge-backend/pkg/helpers"
	"github.com/iconforge/iconforge-backend/pkg/iconset"
)

// The snapshot worker is the serving side of the cache-invalidation hook: it
// consumes iconset update events and rebuilds the collections index that
// icon pickers read from redis.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-snapshot-worker", cfg.Env)

	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	repo := pginfra.NewProjectRepository(pool)

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if _, err := ch.QueueDeclare(cfg.RabbitMQIconSetQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare: %v", err)
	}
	msgs, err := ch.Consume(cfg.RabbitMQIconSetQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	// Full rebuild on startup so the index is warm before any event arrives.
	if err := rebuildCollections(ctx, repo, rdb); err != nil {
		logger.WithError(err).Warn("initial collections rebuild failed")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var ev application.IconSetUpdatedEvent
			if err := json.Unmarshal(msg.Body, &ev); err != nil {
				logger.WithError(err).Warn("bad message")
				_ = msg.Nack(false, false)
				continue
			}
			c, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := rebuildCollections(c, repo, rdb)
			cancel()
			if err != nil {
				logger.WithError(err).WithField("prefix", ev.Prefix).Warn("rebuild failed")
				_ = msg.Nack(false, true)
				continue
			}
			logger.WithField("prefix", ev.Prefix).WithField("total", ev.Total).Debug("collections index rebuilt")
			_ = msg.Ack(false)
		}
		close(done)
	}()

	logger.Infof("snapshot worker listening on queue=%s", cfg.RabbitMQIconSetQueue)
	<-stop
	logger.Info("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

// rebuildCollections recomputes the served collection payload for every
// project from the database blobs and swaps the redis hash in one pipeline.
func rebuildCollections(ctx context.Context, repo repository.ProjectRepository, rdb *redis.Client) error {
	projects, err := repo.All(ctx)
	if err != nil {
		return err
	}
	fields := make(map[string]any, len(projects))
	for i := range projects {
		p := &projects[i]
		set, err := iconset.Parse(p.IconSetJSON)
		if err != nil {
			continue // skip unreadable blobs, keep serving the rest
		}
		info := set.Info()
		col := application.CollectionResponse{
			Prefix:        set.Prefix(),
			Title:         info.Name,
			Total:         set.Count(),
			Uncategorized: set.Names(),
			Height:        info.Height,
			Category:      info.Category,
		}
		b, err := json.Marshal(col)
		if err != nil {
			continue
		}
		fields[p.Prefix] = b
	}

	pipe := rdb.TxPipeline()
	pipe.Del(ctx, application.CollectionsCacheKey)
	if len(fields) > 0 {
		pipe.HSet(ctx, application.CollectionsCacheKey, fields)
	}
	_, err = pipe.Exec(ctx)
	return err
}
