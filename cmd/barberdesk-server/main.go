package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"barberdesk/internal/consumer"
	"barberdesk/internal/handlers"
	"barberdesk/internal/inbox"
	"barberdesk/internal/loyalty"
	"barberdesk/internal/notify"
	"barberdesk/internal/outbox"
	"barberdesk/internal/push"
	"barberdesk/internal/storage"
	"barberdesk/libs/config"
	"barberdesk/libs/db"
	"barberdesk/libs/httpx"
	"barberdesk/libs/kafkax"
	otelx "barberdesk/libs/otel"
	"barberdesk/libs/runtime"
)

func main() {
	service := config.String("SERVICE_NAME", "barberdesk-server")
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
	pool, err := db.Open(ctx, dbURL, db.PoolConfig{
		MaxConns: int32(config.Int("DB_MAX_CONNS", 10)),
		MinConns: int32(config.Int("DB_MIN_CONNS", 2)),
	})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	shopTZ := config.String("SHOP_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(shopTZ)
	if err != nil {
		logger.Error("invalid shop timezone; falling back to UTC", "tz", shopTZ, "err", err)
		loc = time.UTC
	}

	bookingRepo := storage.NewBookingRepository(pool)
	catalogRepo := storage.NewCatalogRepository(pool)
	barberRepo := storage.NewBarberRepository(pool)
	userRepo := storage.NewUserRepository(pool)
	loyaltyRepo := storage.NewLoyaltyRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	inboxRepo := inbox.NewRepository(pool)

	kafkaBrokers := config.String("KAFKA_BROKERS", "")
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   kafkaBrokers,
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	sender := buildSender(logger)
	notifyHandler := notify.NewHandler(notify.NewRepository(pool), sender, logger)
	loyaltyHandler := loyalty.NewHandler(loyaltyRepo, logger)

	startConsumer := func(topic string, handler consumer.Handler) {
		if strings.TrimSpace(kafkaBrokers) == "" || strings.TrimSpace(topic) == "" {
			return
		}
		c := consumer.New(logger, inboxRepo, consumer.Config{
			Brokers: kafkaBrokers,
			GroupID: config.String("KAFKA_GROUP_ID", "barberdesk-server"),
			Topic:   topic,
		}, handler)
		go c.Run(ctx)
	}
	startConsumer(outbox.EventAppointmentBooked, notifyHandler.HandleBooked())
	startConsumer(outbox.EventAppointmentCancelled, notifyHandler.HandleCancelled())
	startConsumer(outbox.EventAppointmentRescheduled, notifyHandler.HandleRescheduled())
	startConsumer(outbox.EventAppointmentCompleted, loyaltyHandler.HandleCompleted())

	jwtSecret := config.String("JWT_SECRET", "dev-secret")
	tokenTTL := time.Duration(config.Int("TOKEN_TTL_MINUTES", 60)) * time.Minute
	slotStep := config.Int("SLOT_STEP_MINUTES", 30)

	bookingHandler := handlers.NewBookingHandler(bookingRepo, outboxRepo, bookingRepo, barberRepo, catalogRepo, logger, loc, slotStep)
	catalogHandler := handlers.NewCatalogHandler(catalogRepo, logger)
	barberHandler := handlers.NewBarberHandler(barberRepo, logger, loc)
	authHandler := handlers.NewAuthHandler(userRepo, logger, jwtSecret, tokenTTL)
	loyaltyHTTP := handlers.NewLoyaltyHandler(loyaltyRepo, logger)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkaBrokers)},
	)

	requireAuth := handlers.RequireAuth(jwtSecret)
	requireAdmin := func(h http.HandlerFunc) http.Handler {
		return requireAuth(handlers.RequireRole("admin")(h))
	}

	mux.HandleFunc("/api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("/api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("/api/v1/services", catalogHandler.List)
	mux.HandleFunc("/api/v1/barbers", barberHandler.List)
	mux.HandleFunc("/api/v1/slots", bookingHandler.Slots)
	mux.HandleFunc("/api/v1/bookings", bookingHandler.Book)
	mux.HandleFunc("/api/v1/bookings/cancel", bookingHandler.Cancel)
	mux.HandleFunc("/api/v1/bookings/reschedule", bookingHandler.Reschedule)
	mux.HandleFunc("/api/v1/loyalty", loyaltyHTTP.Balance)

	mux.Handle("/api/v1/admin/services", requireAdmin(catalogHandler.Create))
	mux.Handle("/api/v1/admin/services/update", requireAdmin(catalogHandler.Update))
	mux.Handle("/api/v1/admin/barbers", requireAdmin(barberHandler.Create))
	mux.Handle("/api/v1/admin/barbers/working-hours", requireAdmin(barberHandler.SetWorkingHours))
	mux.Handle("/api/v1/admin/barbers/time-off", requireAdmin(barberHandler.AddTimeOff))
	mux.Handle("/api/v1/admin/bookings", requireAuth(http.HandlerFunc(bookingHandler.List)))
	mux.Handle("/api/v1/admin/bookings/complete", requireAdmin(bookingHandler.Complete))

	bodyLimit := int64(config.Int("REQUEST_BODY_LIMIT_BYTES", 1<<20))
	requestTimeout := time.Duration(config.Int("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second

	middlewares := []httpx.Middleware{
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   parseList(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods:   parseList(config.String("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS")),
			AllowedHeaders:   parseList(config.String("CORS_ALLOWED_HEADERS", "Authorization,Content-Type,X-Request-Id,Idempotency-Key")),
			AllowCredentials: config.Bool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           time.Duration(config.Int("CORS_MAX_AGE_SECONDS", 600)) * time.Second,
		}),
		buildRateLimiter(logger),
		httpx.WithBodyLimit(bodyLimit),
		httpx.WithTimeout(requestTimeout),
	}
	httpHandler := httpx.Chain(mux, middlewares...)
	httpHandler = otelhttp.NewHandler(httpHandler, "barberdesk")

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

// buildSender picks the notification delivery path: gRPC push service when
// built with generated clients and configured, webhook relay otherwise,
// noop when nothing is configured.
func buildSender(logger *slog.Logger) push.Sender {
	if addr := config.String("PUSH_GRPC_ADDR", ""); addr != "" {
		sender, err := push.NewGRPCSender(addr)
		if err != nil {
			logger.Error("push grpc dial failed; falling back", "err", err)
		} else if sender != nil {
			logger.Info("push delivery via grpc", "addr", addr)
			return sender
		}
	}
	if url := config.String("PUSH_WEBHOOK_URL", ""); url != "" {
		logger.Info("push delivery via webhook")
		return push.NewWebhookSender(url, config.String("PUSH_WEBHOOK_TOKEN", ""))
	}
	logger.Info("push delivery disabled (noop)")
	return push.NewNoopSender()
}

func buildRateLimiter(logger *slog.Logger) httpx.Middleware {
	limitPerMinute := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "rl"))
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute, "redis_addr", addr)
		return rl.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
	}
	rl := httpx.NewRateLimiter(limitPerMinute, time.Minute)
	logger.Info("rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	return rl.Middleware()
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
