package main // Entry point package

import (
	"log"  // Logging library
	"time" // Durations for session and hold TTLs

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/kavehz/movie-booking/internal/config"     // Internal config loader
	"github.com/kavehz/movie-booking/internal/database"   // MySQL connection helper
	"github.com/kavehz/movie-booking/internal/handler"    // HTTP handlers
	"github.com/kavehz/movie-booking/internal/middleware" // Rate limiting and cache middleware
	"github.com/kavehz/movie-booking/internal/queue"      // Booking event consumer
	"github.com/kavehz/movie-booking/internal/repository" // Data access layer
	"github.com/kavehz/movie-booking/internal/router"     // Route registration
	"github.com/kavehz/movie-booking/internal/store"      // Redis-backed checkout sessions
)

func main() {
	_ = godotenv.Load() // .env is optional; real environment variables win

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the checkout sessions, rate limiting and the response
	// cache.  The client is nil when Redis is unreachable; rate limiting
	// and caching then degrade to no-ops while the checkout endpoints
	// report 503 until the store is back.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; checkout sessions disabled")
	}

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	movies := repository.NewMovieRepo(db)
	theaters := repository.NewTheaterRepo(db)
	shows := repository.NewShowRepo(db)
	bookings := repository.NewBookingRepo(db)
	payments := repository.NewPaymentRepo(db)
	seatMaps := repository.NewSeatMapRepo(db, shows)
	orders := repository.NewOrderProcessor(db, bookings, payments, shows,
		time.Duration(cfg.HoldTTLMin)*time.Minute)
	sessions := store.NewCheckoutStore(rdb, time.Duration(cfg.CheckoutTTLMin)*time.Minute)

	// Handlers
	authH := handler.NewAuthHandler(cfg, users, tokens)
	catalogH := handler.NewCatalogHandler(movies, theaters, shows, seatMaps)
	checkoutH := handler.NewCheckoutHandler(cfg, sessions, seatMaps, orders, shows, movies, theaters)
	ticketsH := handler.NewTicketsHandler(bookings, payments)
	adminH := handler.NewAdminHandler(movies, theaters, shows, users, bookings)

	e := echo.New()
	e.HideBanner = true

	// Global distributed rate limiting (token bucket in Redis).
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	// Response cache for the public catalog routes only.
	var cacheMW echo.MiddlewareFunc
	if cacheCfg := config.LoadCacheConfig(); cacheCfg.Enabled {
		cacheMW = middleware.NewRedisCache(cacheCfg, rdb)
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, catalogH, cacheMW)
	router.RegisterCustomer(e, checkoutH, ticketsH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	// Background consumer appends confirmed bookings to logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking-consumer: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
