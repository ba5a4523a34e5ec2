package router

import (
	"github.com/iconforge/iconforge-backend/internal/application"
	"github.com/iconforge/iconforge-backend/internal/container"
	pginfra "github.com/iconforge/iconforge-backend/internal/infrastructure/postgres"
	handlers "github.com/iconforge/iconforge-backend/internal/interface/http"
	"github.com/iconforge/iconforge-backend/internal/router/modules"
	"github.com/iconforge/iconforge-backend/pkg/helpers"
)

// InitModules initializes all application modules and registers them with the
// router registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()

	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	projectRepo := pginfra.NewProjectRepository(container.GetPGPool())

	userSvc := application.NewUserService(
		userRepo,
		container.GetJWT(),
		container.GetRedis(),
		container.GetLogger(),
		container.GetES(),
		cfg.ESUsersIndex,
		container.GetMailPub(),
		cfg.MailSendEnabled,
	)
	projectSvc := application.NewProjectService(
		projectRepo,
		container.GetSnapshots(),
		container.GetRedis(),
		container.GetEvents(),
		container.GetGCS(),
		cfg.GCSBucket,
		container.GetLogger(),
	)

	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)
	userHandler := handlers.NewUserHandler(userSvc, cookies, container.GetLogger())
	projectHandler := handlers.NewProjectHandler(projectSvc, userSvc, container.GetLogger())

	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
	r.Add(modules.NewProjectModule(projectHandler, container.GetJWT()))
}

// ProjectService builds the project service from container singletons for
// callers outside the router (startup reconciliation, workers).
func ProjectService() *application.ProjectService {
	cfg := container.GetConfig()
	return application.NewProjectService(
		pginfra.NewProjectRepository(container.GetPGPool()),
		container.GetSnapshots(),
		container.GetRedis(),
		container.GetEvents(),
		container.GetGCS(),
		cfg.GCSBucket,
		container.GetLogger(),
	)
}
