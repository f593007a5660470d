package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/crypto/bcrypt"

	"github.com/agendly/agendly/internal/handlers"
	"github.com/agendly/agendly/internal/model"
	"github.com/agendly/agendly/internal/outbox"
	"github.com/agendly/agendly/internal/reservation"
	"github.com/agendly/agendly/internal/schedule"
	"github.com/agendly/agendly/internal/storage"
	"github.com/agendly/agendly/libs/auth"
	"github.com/agendly/agendly/libs/config"
	"github.com/agendly/agendly/libs/db"
	"github.com/agendly/agendly/libs/httpx"
	"github.com/agendly/agendly/libs/kafkax"
	otelx "github.com/agendly/agendly/libs/otel"
	"github.com/agendly/agendly/libs/runtime"
)

func main() {
	service := config.String("SERVICE_NAME", "agendly")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	jwtSecret, err := config.RequiredString("JWT_SECRET")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	if err := storage.Bootstrap(ctx, pool); err != nil {
		logger.Error("schema bootstrap failed", "err", err)
		panic(err)
	}

	scheduleRepo := storage.NewScheduleRepository(pool)
	resolution := config.Int("GRID_RESOLUTION_MINUTES", schedule.DefaultResolutionMinutes)
	if err := scheduleRepo.SeedGrid(ctx, schedule.Grid(resolution)); err != nil {
		logger.Error("grid seed failed", "err", err)
		panic(err)
	}
	ticks, err := scheduleRepo.ListTicks(ctx)
	if err != nil {
		logger.Error("grid load failed", "err", err)
		panic(err)
	}
	grid := schedule.NewGridSet(ticks)
	logger.Info("schedule grid ready", "ticks", len(ticks), "resolution_minutes", resolution)

	outboxRepo := outbox.NewRepository()
	serviceRepo := storage.NewServiceRepository(pool, outboxRepo)
	clientRepo := storage.NewClientRepository(pool, outboxRepo)
	adminRepo := storage.NewAdminRepository(pool)
	bookingRepo := storage.NewBookingRepository(pool, outboxRepo)

	seedAdmin(ctx, logger, adminRepo)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: config.Duration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go outboxPublisher.Run(ctx)

	localOffset := config.Duration("LOCAL_TIME_OFFSET", reservation.DefaultLocalOffset)
	engine := reservation.NewEngine(serviceRepo, clientRepo, bookingRepo, localOffset)

	tokenTTL := config.Duration("JWT_TTL", time.Hour)
	authHandler := handlers.NewAuthHandler(clientRepo, adminRepo, jwtSecret, tokenTTL)
	clientHandler := handlers.NewClientHandler(clientRepo, authHandler)
	serviceHandler := handlers.NewServiceHandler(serviceRepo, engine, grid, logger)
	bookingHandler := handlers.NewBookingHandler(engine, bookingRepo)
	adminHandler := handlers.NewAdminHandler(adminRepo)

	authed := handlers.RequireAuth(jwtSecret)
	clientOnly := handlers.RequireAuth(jwtSecret, auth.RoleClient)
	adminOnly := handlers.RequireAuth(jwtSecret, auth.RoleAdmin)

	readyChecks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
	}
	if brokers := config.String("KAFKA_BROKERS", ""); brokers != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}

	var rateLimit httpx.Middleware
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		defer func() { _ = rdb.Close() }()
		limiter := httpx.NewRedisRateLimiter(rdb, config.Int("RATE_LIMIT_PER_MINUTE", 120), time.Minute, service)
		rateLimit = limiter.Middleware(logger, true)
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "redis", Check: httpx.RedisReadyCheck(rdb)})
	} else {
		rateLimit = httpx.NewRateLimiter(config.Int("RATE_LIMIT_PER_MINUTE", 120), time.Minute).Middleware()
	}

	mux := runtime.NewBaseMuxWithReady(readyChecks...)

	mux.HandleFunc("/api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("/api/v1/clients", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			clientHandler.Register(w, r)
		case http.MethodPut:
			clientOnly(http.HandlerFunc(clientHandler.Update)).ServeHTTP(w, r)
		default:
			adminOnly(http.HandlerFunc(clientHandler.List)).ServeHTTP(w, r)
		}
	})
	mux.Handle("/api/v1/clients/bookings", authed(http.HandlerFunc(bookingHandler.ListMine)))
	mux.HandleFunc("/api/v1/services", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			adminOnly(http.HandlerFunc(serviceHandler.Create)).ServeHTTP(w, r)
		case http.MethodPut:
			adminOnly(http.HandlerFunc(serviceHandler.Update)).ServeHTTP(w, r)
		default:
			serviceHandler.List(w, r)
		}
	})
	mux.Handle("/api/v1/services/detail", authed(http.HandlerFunc(serviceHandler.Detail)))
	mux.HandleFunc("/api/v1/services/availability", serviceHandler.Availability)
	mux.HandleFunc("/api/v1/bookings", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			authed(http.HandlerFunc(bookingHandler.Reserve)).ServeHTTP(w, r)
		default:
			adminOnly(http.HandlerFunc(bookingHandler.ListAll)).ServeHTTP(w, r)
		}
	})
	mux.HandleFunc("/api/v1/admins", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			adminOnly(http.HandlerFunc(adminHandler.Create)).ServeHTTP(w, r)
		default:
			adminOnly(http.HandlerFunc(adminHandler.List)).ServeHTTP(w, r)
		}
	})

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		rateLimit,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: strings.Split(config.String("ALLOWED_ORIGINS", "*"), ","),
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		}),
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(15*time.Second),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, service)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

// seedAdmin creates the bootstrap admin account when ADMIN_EMAIL and
// ADMIN_PASSWORD are set. An already registered email is left untouched.
func seedAdmin(ctx context.Context, logger *slog.Logger, admins *storage.AdminRepository) {
	email := config.String("ADMIN_EMAIL", "")
	password := config.String("ADMIN_PASSWORD", "")
	if email == "" || password == "" {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("admin seed hash failed", "err", err)
		return
	}
	admin, err := admins.CreateAdmin(ctx, model.Admin{
		Name:         config.String("ADMIN_NAME", "admin"),
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if storage.IsConflict(err) {
			return
		}
		logger.Error("admin seed failed", "err", err)
		return
	}
	logger.Info("bootstrap admin created", "admin_id", admin.ID)
}
