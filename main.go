package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "seatbooking/internal/config"
	intdb "seatbooking/internal/db"
	"seatbooking/internal/events"
	router "seatbooking/internal/http"
	"seatbooking/internal/http/handlers"
	"seatbooking/internal/lock"
	"seatbooking/internal/metrics"
	"seatbooking/internal/repositories"
	"seatbooking/internal/services"
	"seatbooking/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	env := intconfig.LoadEnv()
	logger := utils.NewLogger(env.LogLevel, env.LogFormat, os.Stdout)
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := intconfig.OpenDB(ctx, env)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	if err := intdb.EnsureSchema(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("schema setup failed")
	}

	m := metrics.New()
	validator := services.NewInputValidator()

	vehicleRepo := repositories.VehicleRepository{DB: db, Timeout: env.StatementTimeout}
	bookingRepo := repositories.BookingRepository{DB: db, Timeout: env.StatementTimeout}

	var publisher events.Publisher = events.LogPublisher{Logger: logger}
	if len(env.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(env.KafkaBrokers, env.KafkaBookingTopic)
		logger.Info().Strs("brokers", env.KafkaBrokers).Str("topic", env.KafkaBookingTopic).Msg("publishing booking events to kafka")
	}
	defer publisher.Close()

	var locker lock.Locker
	if env.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: env.RedisAddr})
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb)
	}

	inventory := services.InventoryService{Store: vehicleRepo, Validator: validator, Logger: logger}
	bookings := services.BookingService{
		Store:     bookingRepo,
		Vehicles:  vehicleRepo,
		Validator: validator,
		Publisher: publisher,
		Metrics:   m,
		Logger:    logger,
	}
	docs := services.DocsService{Bookings: bookingRepo, Vehicles: vehicleRepo, Seats: vehicleRepo, Logger: logger}
	sweeper := services.ExpirySweeper{
		Lister:    bookingRepo,
		Expirer:   bookings,
		Locker:    locker,
		Metrics:   m,
		Logger:    logger,
		Interval:  env.SweepInterval,
		Threshold: env.ExpiryThreshold,
	}

	r := router.NewRouter(router.Options{
		Handler: handlers.Handler{
			Inventory: inventory,
			Bookings:  bookings,
			Tickets:   docs,
			DB:        db,
			Logger:    logger,
		},
		Metrics:        m,
		Logger:         logger,
		JWTSecret:      []byte(env.JWTSecret),
		AllowedOrigins: env.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      env.StatementTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", env.AppAddr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("server stopped cleanly")
}
