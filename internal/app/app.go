package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/folio-space/folio/internal/backend"
	"github.com/folio-space/folio/internal/backend/identity"
	"github.com/folio-space/folio/internal/config"
	"github.com/folio-space/folio/internal/middleware"
	"github.com/folio-space/folio/internal/modules/files"
	"github.com/folio-space/folio/internal/pkg/bark"
	pkgcron "github.com/folio-space/folio/internal/pkg/cron"
	"github.com/folio-space/folio/internal/pkg/jwt"
	"github.com/folio-space/folio/internal/pkg/mail"
	"github.com/folio-space/folio/internal/pkg/metrics"
	pkgredis "github.com/folio-space/folio/internal/pkg/redis"
	"github.com/folio-space/folio/internal/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// App holds all application dependencies.
type App struct {
	cfg      *config.AppConfig
	router   *gin.Engine
	logger   *zap.Logger
	catalog  *repository.Catalog
	identity *identity.Provider
	blobs    backend.BlobStore
	uploader *files.Uploader
	mailer   *mail.Sender
	push     *bark.Service
	redis    *pkgredis.Client
	sched    *pkgcron.Scheduler
	stores   *stores
	cancel   context.CancelFunc
}

// New initializes the application: config → stores → redis → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := applyRuntimeSettings(cfg, logger); err != nil {
		return nil, err
	}

	ctx := context.Background()
	st, err := openStores(ctx, cfg.Database, cfg.IsDev())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	var rc *pkgredis.Client
	if cfg.RedisEnabled() {
		rc, err = pkgredis.Connect(ctx, cfg.Redis.URLValue())
		if err != nil {
			_ = st.close()
			return nil, fmt.Errorf("redis: %w", err)
		}
	} else {
		logger.Info("redis not configured, rate limit and http cache disabled")
	}

	blobs, err := openBlobStore(cfg)
	if err != nil {
		_ = st.close()
		_ = rc.Close()
		return nil, fmt.Errorf("storage: %w", err)
	}

	signer, err := jwt.New(cfg.Auth.JWTSecret)
	if err != nil {
		_ = st.close()
		_ = rc.Close()
		return nil, fmt.Errorf("jwt: %w", err)
	}
	provider := identity.New(st.users, st.sessions, signer, identity.Options{SessionTTL: cfg.Auth.SessionTTL})

	catalogLogger := logger.Named("Catalog")
	catalog := repository.NewCatalog(st.tables, repository.Options{
		Logger:  catalogLogger,
		Observe: metrics.RecordBackendCall,
		OnChange: func(collection string) {
			purgeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if _, err := middleware.PurgeHTTPCache(purgeCtx, rc.Raw()); err != nil {
				catalogLogger.Warn("http cache purge failed", zap.String("collection", collection), zap.Error(err))
			}
		},
	})
	if err := catalog.LoadAll(ctx); err != nil {
		// Sections render their own error; the server still starts.
		catalogLogger.Warn("initial catalog load incomplete", zap.Error(err))
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true

	sched := pkgcron.New(logger.Named("CronService"), metrics.IncCronRun)

	a := &App{
		cfg:      cfg,
		router:   router,
		logger:   logger,
		catalog:  catalog,
		identity: provider,
		blobs:    blobs,
		uploader: files.NewUploader(blobs, cfg.MaxUploadBytes()),
		mailer:   mail.New(cfg.Mail),
		push:     bark.New(cfg.Bark.Key, cfg.Bark.Server, cfg.Site.Title),
		redis:    rc,
		sched:    sched,
		stores:   st,
	}
	registerCronJobs(sched, a)
	a.registerRoutes()
	return a, nil
}

// Start launches the background jobs. They stop on Shutdown.
func (a *App) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.sched.Start(ctx)
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Server.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background jobs and closes every connection.
func (a *App) Shutdown() {
	if a.cancel != nil {
		a.cancel()
		a.sched.Wait()
	}
	if err := a.redis.Close(); err != nil {
		a.logger.Warn("redis close failed", zap.Error(err))
	}
	if err := a.stores.close(); err != nil {
		a.logger.Warn("database close failed", zap.Error(err))
	}
}

// refresh reloads the catalog through the scheduler so the run shows up in
// the job list.
func (a *App) refresh(ctx context.Context) error {
	return a.sched.Run(ctx, jobCatalogRefresh)
}

var processStart = time.Now()
