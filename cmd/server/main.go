package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/kzaleska/cinema-ticketing/internal/config"
	"github.com/kzaleska/cinema-ticketing/internal/database"
	"github.com/kzaleska/cinema-ticketing/internal/database/migrations"
	"github.com/kzaleska/cinema-ticketing/internal/handler"
	"github.com/kzaleska/cinema-ticketing/internal/middleware"
	"github.com/kzaleska/cinema-ticketing/internal/queue"
	"github.com/kzaleska/cinema-ticketing/internal/repository"
	"github.com/kzaleska/cinema-ticketing/internal/router"
	"github.com/kzaleska/cinema-ticketing/internal/service"
)

func main() {
	// A missing .env is fine in containers where the environment comes
	// from the orchestrator.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := migrations.Apply(migrateCtx, db); err != nil {
		cancel()
		log.Fatalf("migrations: %v", err)
	}
	cancel()

	// Redis backs rate limiting and the response cache.  When it is down
	// both features degrade to pass-through middleware.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response cache disabled")
	}

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	movies := repository.NewMovieRepo(db)
	cinemas := repository.NewCinemaRepo(db)
	screenings := repository.NewScreeningRepo(db)
	rooms := repository.NewRoomRepo(db)
	reservations := repository.NewReservationRepo(db)

	// The booking service: seat uniqueness is enforced by the ledger's
	// unique key, so one stateless instance per process is all we need.
	reserver := service.NewReservationService(screenings, rooms, reservations)

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens)
	catalogH := handler.NewCatalogHandler(movies, cinemas, screenings)
	reservationH := handler.NewReservationHandler(reserver, reservations, screenings)
	adminH := handler.NewAdminHandler(movies, cinemas, screenings, rooms)

	// Background consumers drain the broker queues into the log files.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()
	go func() {
		if err := queue.StartMailConsumer(); err != nil {
			log.Printf("mail consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	cacheCfg := config.LoadCacheConfig()
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cacher := middleware.NewRedisCache(cacheCfg, rdb)
	invalidator := middleware.NewCacheInvalidator(cacheCfg, rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	// Public browse traffic is the hot read path: cache first, then limit.
	router.RegisterPublic(e, catalogH, reservationH, cacher, limiter)
	// Booking responses are never cached; every attempt must reach the ledger.
	router.RegisterCustomer(e, reservationH, cfg.JWTSecret, limiter)
	// Catalog writes evict the cached browse responses.
	router.RegisterAdmin(e, adminH, cfg.JWTSecret, invalidator)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
