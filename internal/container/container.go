package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iconforge/iconforge-backend/config"
	"github.com/iconforge/iconforge-backend/internal/infrastructure/snapshot"
	"github.com/iconforge/iconforge-backend/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client
	snapshots   *snapshot.Store

	jwtManager *helpers.JWTManager

	eventsPub *helpers.RabbitPublisher
	mailPub   *helpers.RabbitPublisher
	esClient  *elasticsearch.Client
)

func SetConfig(c *config.Config)            { cfg = c }
func GetConfig() *config.Config             { return cfg }
func SetLogger(l *logrus.Logger)            { logger = l }
func GetLogger() *logrus.Logger             { return logger }
func SetPGPool(p *pgxpool.Pool)             { pgPool = p }
func GetPGPool() *pgxpool.Pool              { return pgPool }
func SetRedis(r *redis.Client)              { redisClient = r }
func GetRedis() *redis.Client               { return redisClient }
func SetGCS(s *storage.Client)              { gcsClient = s }
func GetGCS() *storage.Client               { return gcsClient }
func SetSnapshots(s *snapshot.Store)        { snapshots = s }
func GetSnapshots() *snapshot.Store         { return snapshots }
func SetJWT(m *helpers.JWTManager)          { jwtManager = m }
func GetJWT() *helpers.JWTManager           { return jwtManager }
func SetEvents(p *helpers.RabbitPublisher)  { eventsPub = p }
func GetEvents() *helpers.RabbitPublisher   { return eventsPub }
func SetMailPub(p *helpers.RabbitPublisher) { mailPub = p }
func GetMailPub() *helpers.RabbitPublisher  { return mailPub }
func SetES(c *elasticsearch.Client)         { esClient = c }
func GetES() *elasticsearch.Client          { return esClient }
