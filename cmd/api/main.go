package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hmnpros/gateway/core"
	"github.com/hmnpros/gateway/x/admin"
	"github.com/hmnpros/gateway/x/appointment"
	"github.com/hmnpros/gateway/x/contact"
	"github.com/hmnpros/gateway/x/csrf"
	"github.com/hmnpros/gateway/x/opportunity"
	"github.com/hmnpros/gateway/x/policy"
	"github.com/hmnpros/gateway/x/ratelimit"
	"github.com/hmnpros/gateway/x/util"
	"github.com/hmnpros/gateway/x/webhook"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/plugin/opentelemetry/tracing"
)

type CustomHandler struct {
	slog.Handler
}

func (h *CustomHandler) Handle(ctx context.Context, r slog.Record) error {

	r.AddAttrs(slog.String("type", "app"))

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		r.AddAttrs(slog.String("traceID", span.SpanContext().TraceID().String()))
		r.AddAttrs(slog.String("spanID", span.SpanContext().SpanID().String()))
	}

	return h.Handler.Handle(ctx, r)
}

var (
	version      = "unknown"
	buildMachine = "unknown"
	buildTime    = "unknown"
	goVersion    = "unknown"
)

func main() {

	handler := &CustomHandler{Handler: slog.NewJSONHandler(os.Stdout, nil)}
	slogger := slog.New(handler)
	slog.SetDefault(slogger)

	if version == "unknown" {
		version = util.GetFullVersion()
	}

	slog.Info(fmt.Sprintf("HMNP gateway %s starting...", version))

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true

	config := util.Config{}
	configPath := os.Getenv("GATEWAY_CONFIG")
	if configPath == "" {
		configPath = "/etc/hmnp/gateway.yaml"
	}

	err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if config.Server.Production && config.Security.WebhookSecret == "" {
		slog.Error("refusing to start: production mode requires a webhook secret")
		os.Exit(1)
	}

	slog.Info(fmt.Sprintf("Config loaded! Serving: %s", config.Server.SiteFQDN))

	if config.Server.EnableTrace {
		cleanup, err := setupTraceProvider(config.Server.TraceEndpoint, config.Server.SiteFQDN+"/gateway", version)
		if err != nil {
			panic(err)
		}
		defer cleanup()

		skipper := otelecho.WithSkipper(
			func(c echo.Context) bool {
				return c.Path() == "/metrics" || c.Path() == "/health"
			},
		)
		e.Use(otelecho.Middleware("gateway", skipper))
	}

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
		Format: `{"time":"${time_rfc3339_nano}",${custom},"remote_ip":"${remote_ip}",` +
			`"host":"${host}","method":"${method}","uri":"${uri}","status":${status},` +
			`"error":"${error}","latency":${latency},"latency_human":"${latency_human}",` +
			`"bytes_in":${bytes_in},"bytes_out":${bytes_out}}` + "\n",
		CustomTagFunc: func(c echo.Context, buf *bytes.Buffer) (int, error) {
			span := trace.SpanFromContext(c.Request().Context())
			buf.WriteString(fmt.Sprintf("\"%s\":\"%s\"", "traceID", span.SpanContext().TraceID().String()))
			buf.WriteString(fmt.Sprintf(",\"%s\":\"%s\"", "spanID", span.SpanContext().SpanID().String()))
			return 0, nil
		},
	}))

	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace: "hmnp",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
	}))

	e.Use(middleware.Recover())

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             300 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(config.Server.Dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		panic("failed to connect database")
	}
	sqlDB, err := db.DB() // for pinging
	if err != nil {
		panic("failed to connect database")
	}
	defer sqlDB.Close()

	err = db.Use(tracing.NewPlugin(
		tracing.WithDBName("postgres"),
	))
	if err != nil {
		panic("failed to setup tracing plugin")
	}

	slog.Info("start migrate")
	db.AutoMigrate(
		&core.WebhookDelivery{},
		&core.Contact{},
		&core.Opportunity{},
		&core.Appointment{},
		&core.Booking{},
	)

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Server.RedisAddr,
		Password: "",
		DB:       config.Server.RedisDB,
	})
	err = redisotel.InstrumentTracing(
		rdb,
		redisotel.WithAttributes(
			attribute.KeyValue{
				Key:   "db.name",
				Value: attribute.StringValue("redis"),
			},
		),
	)
	if err != nil {
		panic("failed to setup tracing plugin")
	}

	mc := memcache.New(config.Server.MemcachedAddr)
	defer mc.Close()

	limiter := ratelimit.NewService(
		ratelimit.NewRedisStore(rdb),
		ratelimit.NewMemoryStore(),
		config.RateLimit,
	)

	dispatcher := webhook.NewDispatcher()
	contact.RegisterHandlers(dispatcher, SetupContactService(db, mc))
	opportunity.RegisterHandlers(dispatcher, SetupOpportunityService(db))
	appointmentService := SetupAppointmentService(db)
	appointment.RegisterHandlers(dispatcher, appointmentService)

	webhookHandler := SetupWebhookHandler(db, rdb, dispatcher, config)
	bookingHandler := SetupBookingHandler(db, config)
	authService := SetupAuthService(rdb, config)
	authHandler := SetupAuthHandler(rdb, config)
	adminHandler := SetupAdminHandler(db, rdb, mc, limiter)
	feedHandler := admin.NewFeedHandler(rdb)
	csrfHandler := csrf.NewHandler(config.Security.CsrfSecret, config.Server.Production)

	composer := policy.NewComposer(limiter, authService, config)

	webhooks := e.Group("/api/webhooks", composer.Middlewares(policy.WEBHOOK)...)
	webhooks.POST("", webhookHandler.Receive)

	public := e.Group("", composer.Middlewares(policy.PUBLIC)...)
	public.GET("/api/csrf", csrfHandler.Issue)

	bookings := e.Group("/api/bookings", composer.Middlewares(policy.BOOKING)...)
	bookings.POST("", bookingHandler.Create)
	bookings.GET("/:id", bookingHandler.Get)

	authGroup := e.Group("/api/auth", composer.Middlewares(policy.AUTH)...)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)

	adminGroup := e.Group("/api/admin", composer.Middlewares(policy.ADMIN)...)
	adminGroup.GET("/webhooks", adminHandler.Deliveries)
	adminGroup.GET("/webhooks/stats", adminHandler.DeliveryStats)
	adminGroup.GET("/ratelimits", adminHandler.RateLimits)
	adminGroup.DELETE("/cache", adminHandler.ClearCache)
	adminGroup.POST("/alerts/test", adminHandler.TestAlert)
	adminGroup.POST("/bookings/resync", bookingHandler.Resync)
	adminGroup.GET("/feed", feedHandler.Connect)
	adminGroup.GET("/appointments/upcoming", func(c echo.Context) error {
		appointments, err := appointmentService.GetUpcoming(c.Request().Context(), c.QueryParam("locationId"), 20)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": appointments})
	})

	e.GET("/health", func(c echo.Context) (err error) {
		ctx := c.Request().Context()

		err = sqlDB.Ping()
		if err != nil {
			return c.String(http.StatusInternalServerError, "db error")
		}

		err = rdb.Ping(ctx).Err()
		if err != nil {
			return c.String(http.StatusInternalServerError, "redis error")
		}

		return c.String(http.StatusOK, "ok")
	})

	e.GET("/metrics", echoprometheus.NewHandler())

	listenAddr := config.Server.ListenAddr
	if listenAddr == "" {
		listenAddr = ":8000"
	}
	e.Logger.Fatal(e.Start(listenAddr))
}

func setupTraceProvider(endpoint string, serviceName string, serviceVersion string) (func(), error) {

	exporter, err := otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)

	if err != nil {
		return nil, err
	}

	resource := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(serviceVersion),
	)

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(resource),
	)
	otel.SetTracerProvider(tracerProvider)

	propagator := propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
	otel.SetTextMapPropagator(propagator)

	cleanup := func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			slog.Error(fmt.Sprintf("Failed to shutdown tracer provider: %v", err))
		}
	}
	return cleanup, nil
}
