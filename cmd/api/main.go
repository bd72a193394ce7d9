package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"turfbook/internal/config"
	"turfbook/internal/database"
	"turfbook/internal/domain/booking"
	"turfbook/internal/domain/notification"
	"turfbook/internal/domain/push"
	"turfbook/internal/metrics"
	"turfbook/internal/middleware"
	jwtsvc "turfbook/internal/pkg/jwt"
	"turfbook/internal/pkg/tracing"
	"turfbook/internal/realtime"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Endpoint:       cfg.OTLPEndpoint,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.AppEnv,
	})
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}
	metrics.Init()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := database.Migrate(db, &notification.Notification{}, &push.Subscription{}, &booking.Booking{}); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if cfg.RealtimeSource == config.RealtimePostgres {
		if err := database.InstallRealtimeTrigger(db); err != nil {
			log.Fatalf("realtime trigger: %v", err)
		}
	}

	a, err := newApp(ctx, cfg, db)
	if err != nil {
		log.Fatalf("wire: %v", err)
	}

	var wg sync.WaitGroup

	if cfg.RealtimeSource == config.RealtimePostgres {
		listener := realtime.NewPGListener(cfg.DatabaseURL, database.RealtimeChannel, "recipient_id", a.hub)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("pg_listener_stopped err=%v", err)
			}
		}()
	}

	if cfg.SweepEnabled {
		scheduler := booking.NewScheduler(a.sweeper, cfg.SweepInterval)
		wg.Add(1)
		go func() {
			defer wg.Done()
			scheduler.Run(ctx)
		}()
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("http_listening addr=%s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutdown_signal_received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http_shutdown_failed err=%v", err)
	}
	a.hub.Close()
	wg.Wait()
	a.trigger.Wait()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("tracing_shutdown_failed err=%v", err)
	}
	log.Printf("shutdown_complete")
}

func newDispatchSender(ctx context.Context, cfg *config.Config) (*push.DispatchSender, error) {
	var limiter *rate.Limiter
	if cfg.PushRateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.PushRateLimit), int(cfg.PushRateLimit)+1)
	}
	dispatch := push.NewDispatchSender(limiter)

	if cfg.WebPushEnabled() {
		dispatch.Register(push.KindWebPush, push.NewWebPushSender(push.WebPushConfig{
			PublicKey:  cfg.VAPIDPublicKey,
			PrivateKey: cfg.VAPIDPrivateKey,
			Subject:    cfg.VAPIDSubject,
			TTL:        cfg.PushTTL,
		}, nil))
	} else {
		log.Printf("push_webpush_disabled reason=missing_vapid_keys")
	}

	if cfg.FirebaseCredentialsFile != "" {
		fcm, err := push.NewFCMSenderFromFile(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			return nil, err
		}
		dispatch.Register(push.KindFCM, fcm)
	}
	return dispatch, nil
}

// app holds the wired services shared by the HTTP server and background workers.
type app struct {
	router   *gin.Engine
	hub      *realtime.Hub
	notifier *notification.Service
	sweeper  *booking.Sweeper
	trigger  *push.Trigger
}

func newApp(ctx context.Context, cfg *config.Config, db *gorm.DB) (*app, error) {
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	hub := realtime.NewHub(64)

	notifService := notification.NewService(notification.NewRepository(db))
	if cfg.RealtimeSource != config.RealtimePostgres {
		notifService.OnInsert(notification.NewRealtimePublisher(hub))
	}

	pushRepo := push.NewRepository(db)
	dispatch, err := newDispatchSender(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("push senders: %w", err)
	}
	fanout := push.NewFanoutService(pushRepo, dispatch)
	trigger := push.NewTrigger(fanout)
	notifService.OnInsert(trigger)

	sweeper := booking.NewSweeper(booking.NewRepository(db), cfg.BookingLocation)

	r := newRouter(cfg, db, j, hub, routeHandlers{
		notifications: notification.NewHandler(notifService),
		subscriptions: push.NewSubscriptionHandler(push.NewSubscriptionService(pushRepo), cfg.VAPIDPublicKey),
		fanout:        push.NewFunctionHandler(fanout),
		sweep:         booking.NewSweepHandler(sweeper),
	})

	return &app{
		router:   r,
		hub:      hub,
		notifier: notifService,
		sweeper:  sweeper,
		trigger:  trigger,
	}, nil
}

type routeHandlers struct {
	notifications *notification.Handler
	subscriptions *push.SubscriptionHandler
	fanout        *push.FunctionHandler
	sweep         *booking.SweepHandler
}

func newRouter(cfg *config.Config, db *gorm.DB, j *jwtsvc.Service, hub *realtime.Hub, h routeHandlers) *gin.Engine {
	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if !cfg.IsProdLike() {
		r.Use(gin.Logger())
	}
	r.Use(middleware.ErrorLogger(), middleware.RequestID(), middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "realtime_subscribers": hub.Count()})
	})
	r.GET("/metrics", metrics.Handler())

	r.GET("/realtime/v1/notifications", realtime.NewWSHandler(hub, j, notification.TableName).Serve)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	{
		// preflight only reaches the CORS middleware if a route matches
		v1.OPTIONS("/*path", func(c *gin.Context) {})

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(j))

		notification.RegisterRoutes(protected, h.notifications)
		push.RegisterRoutes(v1, protected, h.subscriptions)

		admin := protected.Group("/admin")
		admin.Use(middleware.AdminOnly())
		notification.RegisterAdminRoutes(admin, h.notifications)
	}

	functions := r.Group("/functions/v1")
	functions.Use(middleware.FunctionCORS(), middleware.ServiceKeyAuth(cfg.ServiceRoleKey))
	{
		push.RegisterFunctionRoutes(functions, h.fanout)
		booking.RegisterFunctionRoutes(functions, h.sweep)
	}

	return r
}
