package setup

import (
	"context"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/attachment"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/config"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/handler"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/jwt"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/middleware"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/notify"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/realtime"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/service"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/storage/pg"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/storage/s3"
)

// Dependencies holds all initialized collaborators of the service.
type Dependencies struct {
	Storage *pg.Storage
	Handler *handler.Handler
	Auth    *middleware.Auth
	Jwt     jwt.JwtService
	Cfg     *config.Config
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	objectStore, err := s3.New(ctx, cfg)
	if err != nil {
		storage.Cleanup()
		return nil, err
	}

	attachments := attachment.New(objectStore, cfg.Public.Limits)
	bus := realtime.NewBus()

	thread := service.NewThread(storage, attachments, bus, cfg.Public.Limits.MaxBodyChars)
	injector := service.NewSystemInjector(storage, bus)
	email := notify.New(&cfg.Private.Email)
	admin := service.NewAdminEvents(injector, email, storage)

	jwtService := jwt.New(cfg.JwtKey(), cfg.Public.Http.JwtTTL)
	auth := middleware.NewAuth(jwtService)

	h := handler.New(thread, attachments, admin, storage, cfg)

	return &Dependencies{
		Storage: storage,
		Handler: h,
		Auth:    auth,
		Jwt:     jwtService,
		Cfg:     cfg,
	}, nil
}
