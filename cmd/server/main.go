package main // Entry point package

import (
	"context"
	"errors"
	"log" // Logging library
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/iliyamo/webshop/internal/config"
	"github.com/iliyamo/webshop/internal/database"
	"github.com/iliyamo/webshop/internal/handler"
	"github.com/iliyamo/webshop/internal/metrics"
	"github.com/iliyamo/webshop/internal/middleware"
	"github.com/iliyamo/webshop/internal/queue"
	"github.com/iliyamo/webshop/internal/repository"
	"github.com/iliyamo/webshop/internal/router"
	queue_publisher "github.com/iliyamo/webshop/internal/service"
)

func main() {
	// A missing .env is normal in containers; the environment is used as is.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewCollector(reg)

	users, err := repository.NewUserRepo(db, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("user repository: %v", err)
	}
	catalog := repository.NewCatalogRepo(db)
	orders := repository.NewOrderRepo(db)

	broker := config.LoadBrokerConfig()
	var events handler.OrderEvents
	if broker.PublishEnabled {
		pub := queue_publisher.New(broker.URL)
		defer pub.Close()
		events = pub
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if broker.ConsumerEnabled {
		go queue.RunOrderConsumer(ctx, broker.URL, &queue.OrderLog{Dir: broker.LogDir})
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORS())

	cacheCfg := config.LoadCacheConfig()
	catalogHandler := handler.NewCatalogHandler(catalog)
	catalogHandler.Purge = middleware.PurgeResponseCache(cacheCfg, rdb)
	router.RegisterRoutes(e, reg)
	router.RegisterPublic(e, catalogHandler, cacheCfg, rdb)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, rec), config.LoadRateLimitConfig(), rdb, rec)
	router.RegisterCustomer(e, handler.NewOrderHandler(users, orders, events, rec), cfg.JWTSecret, rec)
	router.RegisterAdmin(e, catalogHandler, users, cfg.JWTSecret, rec)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
