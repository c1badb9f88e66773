package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/accounthub/internal/auth"
	"github.com/geocoder89/accounthub/internal/cache"
	"github.com/geocoder89/accounthub/internal/config"
	"github.com/geocoder89/accounthub/internal/domain/role"
	"github.com/geocoder89/accounthub/internal/http/handlers"
	"github.com/geocoder89/accounthub/internal/http/middlewares"
	"github.com/geocoder89/accounthub/internal/observability"
	"github.com/geocoder89/accounthub/internal/redisclient"
	"github.com/geocoder89/accounthub/internal/repo/postgres"
	"github.com/geocoder89/accounthub/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter wires repositories, handlers and the middleware chain.
// redisClient may be nil; login throttling is skipped in that case.
func NewRouter(log *slog.Logger, pool *pgxpool.Pool, redisClient *redisclient.Client, reg *prometheus.Registry, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("accounthub"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(prom.GinHandleMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20)) // 1 MiB is plenty for account payloads
	r.Use(middlewares.RequireJSON())

	// health

	pingDB := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	var pingRedis func() error

	if redisClient != nil {
		pingRedis = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
			defer cancel()

			return redisClient.Ping(ctx)
		}
	}

	healthHandler := handlers.NewHealthHandler(pingDB, pingRedis)
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// wire up repositories

	usersRepo := postgres.NewUsersRepo(pool, prom)
	rolesRepo := postgres.NewRolesRepo(pool, prom)
	sessionsRepo := postgres.NewRefreshTokensRepo(pool, prom)

	// shared collaborators

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL())
	hasher := security.NewHasher(cfg.BcryptCost)
	roleCache := cache.New(30 * time.Second)

	var throttle *redisclient.LoginThrottle

	if redisClient != nil {
		throttle = redisclient.NewLoginThrottle(redisClient.Raw(), 10, 15*time.Minute)
	}

	// wire up handlers

	authHandler := handlers.NewAuthHandler(usersRepo, rolesRepo, hasher, jwtManager, sessionsRepo, throttle, roleCache, prom, cfg)
	usersHandler := handlers.NewUsersHandler(usersRepo, rolesRepo, hasher, roleCache, sessionsRepo)
	rolesHandler := handlers.NewRolesHandler(rolesRepo)

	authMW := middlewares.NewAuthMiddleware(jwtManager)

	// unauthenticated auth endpoints get an IP rate limit on top of the
	// redis-backed per-email throttle
	limiter := middlewares.NewRateLimiter(30, time.Minute)

	authGroup := r.Group("/auth")
	authGroup.Use(limiter.RateLimiterMiddleware(middlewares.KeyByIP))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// the role catalogue is public: register needs a role id up front
	r.GET("/roles", rolesHandler.ListRoles)

	users := r.Group("/users")
	users.Use(authMW.RequireAuth())
	{
		users.GET("/me", usersHandler.GetMe)

		admin := users.Group("")
		admin.Use(authMW.RequireRole(role.NameAdmin))
		{
			admin.GET("", usersHandler.ListUsers)
			admin.POST("", usersHandler.CreateUser)
			admin.PUT("/:id", usersHandler.UpdateUser)
			admin.DELETE("/:id", usersHandler.DeleteUser)
		}
	}

	return r
}
