package app

import (
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/folio-space/folio/internal/auth"
	"github.com/folio-space/folio/internal/config"
	"github.com/folio-space/folio/internal/middleware"
	"github.com/folio-space/folio/internal/modules/account"
	"github.com/folio-space/folio/internal/modules/admin"
	"github.com/folio-space/folio/internal/modules/content"
	"github.com/folio-space/folio/internal/modules/files"
	"github.com/folio-space/folio/internal/modules/site"
	pkgcron "github.com/folio-space/folio/internal/pkg/cron"
	"github.com/folio-space/folio/internal/pkg/response"
	"github.com/folio-space/folio/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const apiPrefix = "/api/v1"

// httpCacheSkipPaths are public GETs whose answer depends on the caller.
func httpCacheSkipPaths() []string {
	return []string{
		apiPrefix + "/auth/*",
		apiPrefix + "/ping",
		apiPrefix + "/uptime",
	}
}

func (a *App) registerRoutes() {
	r := a.router
	rdb := a.redis.Raw()

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c, "method not allowed")
	})

	r.Use(gin.Recovery())
	r.Use(middleware.Logger(a.logger))
	r.Use(middleware.Metrics())
	r.Use(corsMiddleware(a.cfg.Server.AllowedOrigins, a.cfg.IsDev()))
	r.Use(auth.Middleware(a.identity, a.logger.Named("Auth")))

	r.SetHTMLTemplate(web.MustTemplates())
	if dir := a.cfg.StaticDir(); dir != "" {
		r.Static("/static", dir)
	} else {
		r.StaticFS("/static", http.FS(web.Static()))
	}
	if a.cfg.Storage.Driver == config.StorageLocal {
		r.Static("/uploads", filepath.Join(a.cfg.UploadDir(), "uploads"))
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var notifiers content.Notifiers
	if a.mailer.Enabled() {
		notifiers = append(notifiers, a.mailer)
	}
	if a.push.Enabled() {
		notifiers = append(notifiers, a.push)
	}
	var notifier content.Notifier
	if len(notifiers) > 0 {
		notifier = notifiers
	}
	var onLimited func(ip, path string)
	if a.push.Enabled() {
		onLimited = a.push.ThrottlePush
	}

	contact := content.NewContactService(a.catalog.Messages, notifier, a.cfg.Site.Title, a.logger.Named("Contact"))
	contactMW := []gin.HandlerFunc{
		middleware.RateLimit(rdb, a.cfg.Server.RateLimit, onLimited),
		middleware.Idempotence(rdb),
	}

	// Pages
	site.NewHandler(a.catalog, contact, a.cfg.Site, a.logger.Named("Site")).RegisterRoutes(r, contactMW...)
	admin.NewHandler(admin.Deps{
		Catalog:      a.catalog,
		Accounts:     a.identity,
		Uploader:     a.uploader,
		Jobs:         a.sched,
		Refresh:      a.refresh,
		Site:         a.cfg.Site,
		SecureCookie: a.cfg.Auth.CookieSecure,
		Logger:       a.logger.Named("Admin"),
	}).RegisterRoutes(r)

	// Versioned API
	api := r.Group(apiPrefix)
	api.Use(middleware.RateLimit(rdb, a.cfg.Server.RateLimit, onLimited))
	api.Use(middleware.HTTPCache(rdb, middleware.HTTPCacheOptions{
		TTL:       a.cfg.Server.CacheTTL,
		Disable:   a.cfg.IsDev(),
		SkipPaths: httpCacheSkipPaths(),
	}))
	adminAPI := api.Group("", auth.RequireAPI(), middleware.Idempotence(rdb))

	content.NewHandler(a.catalog, contact, a.refresh).RegisterRoutes(api, adminAPI, middleware.Idempotence(rdb))
	account.NewHandler(a.identity, a.cfg.Auth.CookieSecure, a.logger.Named("Account")).RegisterRoutes(api, adminAPI)
	files.NewHandler(a.uploader).RegisterRoutes(adminAPI)

	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		up := time.Since(processStart)
		c.JSON(http.StatusOK, gin.H{
			"timestamp": up.Milliseconds(),
			"humanize":  humanizeDuration(up),
		})
	})

	adminAPI.GET("/jobs", func(c *gin.Context) {
		response.List(c, a.sched.List(), "")
	})
	adminAPI.POST("/jobs/:name/run", func(c *gin.Context) {
		err := a.sched.Run(c.Request.Context(), c.Param("name"))
		switch {
		case errors.Is(err, pkgcron.ErrJobNotFound):
			response.NotFound(c)
		case err != nil:
			response.InternalError(c, err)
		default:
			response.NoContent(c)
		}
	})
}
