package main

import (
	"context"
	"errors"
	"log"

	"github.com/joho/godotenv"

	"github.com/iconforge/iconforge-backend/config"
	"github.com/iconforge/iconforge-backend/internal/application"
	"github.com/iconforge/iconforge-backend/internal/domain/entity"
	"github.com/iconforge/iconforge-backend/internal/domain/repository"
	pginfra "github.com/iconforge/iconforge-backend/internal/infrastructure/postgres"
	"github.com/iconforge/iconforge-backend/internal/infrastructure/snapshot"
	"github.com/iconforge/iconforge-backend/pkg/helpers"
	"github.com/iconforge/iconforge-backend/pkg/iconset"
)

// Seeds a demo user and a demo project with a single icon for local development.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	snapshots, err := snapshot.NewStore(cfg.IconsDir)
	if err != nil {
		log.Fatalf("failed to init snapshot store: %v", err)
	}

	users := pginfra.NewUserRepository(pool)
	projects := pginfra.NewProjectRepository(pool)
	svc := application.NewProjectService(projects, snapshots, nil, nil, nil, "", logger)

	hash, err := helpers.HashPassword("demo-password")
	if err != nil {
		log.Fatalf("hash: %v", err)
	}
	demo := &entity.User{Email: "demo@iconforge.dev", Name: "Demo", Password: hash}
	if err := users.Create(ctx, demo); err != nil {
		if !errors.Is(err, repository.ErrDuplicateEmail) {
			log.Fatalf("seed user: %v", err)
		}
		existing, err := users.GetByEmail(ctx, demo.Email)
		if err != nil {
			log.Fatalf("seed user lookup: %v", err)
		}
		demo = existing
	}

	if _, err := svc.CreateProject(ctx, demo, application.CreateProjectInput{
		Prefix: "demo-icons",
		Name:   "Demo Icons",
		Desc:   "seeded project",
	}); err != nil {
		if errors.Is(err, application.ErrPrefixExists) {
			logger.Info("demo project already seeded")
			return
		}
		log.Fatalf("seed project: %v", err)
	}

	if err := svc.AddIcons(ctx, mustProjectID(ctx, projects), map[string]iconset.Icon{
		"star": {Body: `<path d="M12 2l2.9 6.3 6.9.6-5.2 4.6 1.5 6.8-6.1-3.6-6.1 3.6 1.5-6.8-5.2-4.6 6.9-.6z"/>`, Width: 24, Height: 24},
	}); err != nil {
		log.Fatalf("seed icon: %v", err)
	}
	logger.Info("seed complete")
}

func mustProjectID(ctx context.Context, repo *pginfra.ProjectRepository) int64 {
	p, err := repo.GetByPrefix(ctx, "demo-icons")
	if err != nil {
		log.Fatalf("seed project lookup: %v", err)
	}
	return p.ID
}
