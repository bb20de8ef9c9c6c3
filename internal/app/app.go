package app

import (
	"fmt"

	"github.com/boardadmin/boardadmin/internal/config"
	"github.com/boardadmin/boardadmin/internal/db"
	"github.com/boardadmin/boardadmin/internal/repository"
	"github.com/boardadmin/boardadmin/internal/service"
	"github.com/boardadmin/boardadmin/internal/storage"
	"github.com/jmoiron/sqlx"
)

type App struct {
	Cfg               *config.Config
	DB                *sqlx.DB
	AuthService       *service.AuthService
	UserService       *service.UserService
	EmailService      *service.EmailService
	PostService       *service.PostService
	AttachmentService *service.AttachmentService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	return Wire(cfg, database)
}

// Wire builds the services on top of an open, migrated database. The CLI
// uses it directly so it never migrates implicitly.
func Wire(cfg *config.Config, database *sqlx.DB) (*App, error) {
	// Repositories
	userRepository := repository.NewUserRepository(database)
	postRepository := repository.NewPostRepository(database)
	attachmentRepository := repository.NewAttachmentRepository(database)

	// Storage
	if cfg.StorageDriver != "s3" {
		err := storage.EnsureDir(cfg.StorageRoot)
		if err != nil {
			return nil, err
		}
	}
	fileStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.IsDevelopment(),
	)
	userService := service.NewUserService(userRepository)
	authService := service.NewAuthService(
		userService,
		cfg.JWTSecret,
		cfg.IsProduction(),
		cfg.JWTExpiry,
	)
	attachmentService := service.NewAttachmentService(attachmentRepository, postRepository, fileStorage, cfg.AdminPageSize)
	postService := service.NewPostService(postRepository, attachmentService)

	return &App{
		Cfg:               cfg,
		DB:                database,
		AuthService:       authService,
		UserService:       userService,
		EmailService:      emailService,
		PostService:       postService,
		AttachmentService: attachmentService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return db.Close(a.DB)
	}
	return nil
}
