package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/clubhub/internal/app/controllers"
	appMigrations "github.com/yigit/clubhub/internal/app/migrations"
	"github.com/yigit/clubhub/internal/app/models/dto"
	appRepos "github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/app/repositories/memory"
	appRoutes "github.com/yigit/clubhub/internal/app/routes"
	appServices "github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/config"
	"github.com/yigit/clubhub/internal/db"
	appMiddleware "github.com/yigit/clubhub/internal/middleware"
	pkgAuth "github.com/yigit/clubhub/internal/pkg/auth"
	"github.com/yigit/clubhub/internal/pkg/filestorage"
	"github.com/yigit/clubhub/internal/pkg/helpers"
	"github.com/yigit/clubhub/internal/pkg/logger"
	"github.com/yigit/clubhub/internal/pkg/websocket"
	"github.com/yigit/clubhub/migrations"
)

// DefaultConfigPath is read when CLUBHUB_CONFIG is unset.
const DefaultConfigPath = "configs/config.yaml"

// revocationPruneInterval is how often expired revocations are dropped.
const revocationPruneInterval = 10 * time.Minute

// Dependencies holds everything the server needs to run and to shut down.
type Dependencies struct {
	Store          appRepos.Store
	Database       *db.PostgresDB
	Services       *appServices.Services
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService
	Revocations    *pkgAuth.RevocationList
	FileStorage    *filestorage.LocalStorage
	Hub            *websocket.Hub
	Logger         zerolog.Logger

	stopBackground context.CancelFunc
}

// Close stops background work, which disconnects live clients, and releases the store.
func (d *Dependencies) Close() {
	if d.stopBackground != nil {
		d.stopBackground()
	}
	if d.Revocations != nil {
		d.Revocations.Close()
	}
	if d.Database != nil {
		d.Database.Close()
	}
}

// LoadConfigAndSetupLogger reads the configuration and configures the global logger from it.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := os.Getenv("CLUBHUB_CONFIG")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	level := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  level,
		Format: logger.Format(strings.ToLower(cfg.Logging.Format)),
		Output: os.Stdout,
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(level)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// migrationFiles prefers the configured directory and falls back to the
// schema compiled into the binary.
func migrationFiles(dir string, lgr zerolog.Logger) fs.FS {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return os.DirFS(dir)
		}
		lgr.Warn().Str("path", dir).Msg("Migrations directory not found, using embedded migrations")
	}
	return migrations.Files
}

// SetupStore opens the configured store. For postgres it connects and applies
// pending migrations; the returned database is nil for the memory driver.
func SetupStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (appRepos.Store, *db.PostgresDB, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		lgr.Warn().Msg("Using in-memory store, data is lost on restart")
		return memory.NewStore(logger.Component("memory-store")), nil, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg, logger.Component("postgres"))
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, logger.Component("migrator"))
	if err := migrator.Migrate(ctx, migrationFiles(cfg.Store.Migrations, lgr)); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return appRepos.NewPostgresStore(database), database, nil
}

// BuildDependencies wires services, controllers and middleware on top of store.
func BuildDependencies(cfg *config.Config, store appRepos.Store, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Store: store, Logger: lgr}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Storage.Path, cfg.Storage.BaseURL, cfg.Storage.Bucket, logger.Component("filestorage"))
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	clock := helpers.SystemClock{}
	deps.Revocations = pkgAuth.NewRevocationList(clock, logger.Component("revocations"))
	bg, cancel := context.WithCancel(context.Background())
	deps.stopBackground = cancel
	go deps.Revocations.Run(bg, revocationPruneInterval)

	deps.Hub = websocket.NewHub(logger.Component("websocket"))
	go deps.Hub.Run(bg)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	}, clock, deps.Revocations)

	deps.Services = appServices.NewServices(appServices.Dependencies{
		Store:   store,
		Objects: deps.FileStorage,
		Tokens:  deps.JWTService,
		Hasher:  pkgAuth.NewPasswordHasher(),
		Clock:   clock,
		Logger:  lgr,
	})

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.Controllers = NewControllers(deps.Services, deps.Hub, deps.FileStorage.URL, lgr)
	return deps, nil
}

// NewControllers builds every controller over the given services. Club
// activity is published to hub.
func NewControllers(svc *appServices.Services, hub *websocket.Hub, objectURL dto.ObjectURL, lgr zerolog.Logger) appRoutes.Controllers {
	component := func(name string) zerolog.Logger {
		return lgr.With().Str("controller", name).Logger()
	}
	return appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(svc.Auth, objectURL, component("auth")),
		Users:        appControllers.NewUserController(svc.Users, svc.Feed, objectURL, component("users")),
		Clubs:        appControllers.NewClubController(svc.Membership, hub, objectURL, component("clubs")),
		Posts:        appControllers.NewPostController(svc.Posts, svc.Interactions, hub, objectURL, component("posts")),
		Comments:     appControllers.NewCommentController(svc.Comments, component("comments")),
		Forum:        appControllers.NewForumController(svc.Forum, hub, component("forum")),
		Events:       appControllers.NewEventController(svc.Events, hub, component("events")),
		Feed:         appControllers.NewFeedController(svc.Feed, objectURL, component("feed")),
		Interactions: appControllers.NewInteractionController(svc.Interactions, component("interactions")),
		Live:         appControllers.NewLiveController(svc.Membership, hub, component("live")),
	}
}

// NewRouter builds a gin engine with the request logger, recovery and the API routes.
func NewRouter(controllers appRoutes.Controllers, auth *appMiddleware.AuthMiddleware, lgr zerolog.Logger) (*gin.Engine, error) {
	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(appMiddleware.Recovery(lgr), appMiddleware.RequestLogger(logger.Component("http")))

	appRoutes.SetupRouter(router, controllers, auth)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
	return router, nil
}

// SetupRouter sets the gin mode from the config, builds the router and serves
// stored objects under the path of the storage base URL.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router, err := NewRouter(deps.Controllers, deps.AuthMiddleware, lgr)
	if err != nil {
		return nil, err
	}

	prefix := "/files"
	if u, err := url.Parse(cfg.Storage.BaseURL); err == nil && u.Path != "" && u.Path != "/" {
		prefix = strings.TrimRight(u.Path, "/")
	}
	router.Static(prefix, cfg.Storage.Path)
	lgr.Info().Str("path", cfg.Storage.Path).Str("prefix", prefix).Msg("Static file serving configured for uploads")

	return router, nil
}
