package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mkrasov/fitshop/internal/auth"
	"github.com/mkrasov/fitshop/internal/cart"
	"github.com/mkrasov/fitshop/internal/config"
	"github.com/mkrasov/fitshop/internal/db"
	"github.com/mkrasov/fitshop/internal/es"
	"github.com/mkrasov/fitshop/internal/events"
	"github.com/mkrasov/fitshop/internal/httpserver"
	"github.com/mkrasov/fitshop/internal/inventory"
	"github.com/mkrasov/fitshop/internal/logging"
	"github.com/mkrasov/fitshop/internal/mediaclient"
	"github.com/mkrasov/fitshop/internal/middleware/loggingmw"
	"github.com/mkrasov/fitshop/internal/middleware/monitoring"
	"github.com/mkrasov/fitshop/internal/order"
	"github.com/mkrasov/fitshop/internal/repo"
)

func main() {
	cfg := config.MustLoad()
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	ctx := context.Background()

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Ошибка инициализации БД: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal(err)
	}

	var prod *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = events.NewProducer(cfg.KafkaBrokers)
	} else {
		logger.Warn("kafka disabled, KAFKA_BROKERS is empty")
	}

	var searchHandler *httpserver.SearchHandler
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			log.Fatal(err)
		}
		searchHandler = &httpserver.SearchHandler{ES: esClient, Index: "product"}
	} else {
		logger.Warn("search disabled, ES_URL is empty")
	}

	var media *mediaclient.Client
	if cfg.MediaBaseURL != "" {
		media = mediaclient.New(cfg.MediaBaseURL, cfg.MediaAPIKey)
	} else {
		logger.Warn("image uploads disabled, MEDIA_URL is empty")
	}

	r := repo.New(gdb)
	inv := inventory.New(r)
	cartSvc := cart.New(r, inv)
	wishlistSvc := cart.NewWishlist(r, inv)
	orderSvc := order.New(r, inv)

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(monitoring.Middleware())

	deps := httpserver.Deps{
		AuthMW:          auth.NewMiddleware(cfg.JWTSecret),
		AuthHandler:     &httpserver.AuthHandler{Repo: r, JWTSecret: cfg.JWTSecret, RefreshSecret: cfg.RefreshSecret, Producer: prod},
		ProductHandler:  &httpserver.ProductHandler{Repo: r, Producer: prod},
		ImageHandler:    &httpserver.ImageHandler{Repo: r, Media: media},
		CartHandler:     &httpserver.CartHandler{Svc: cartSvc, Producer: prod},
		WishlistHandler: &httpserver.WishlistHandler{Svc: wishlistSvc, Producer: prod},
		OrderHandler:    &httpserver.OrderHandler{Svc: orderSvc, Producer: prod},
		ReviewHandler:   &httpserver.ReviewHandler{Repo: r, Producer: prod},
		SearchHandler:   searchHandler,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if prod != nil {
		if err := prod.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	logger.Info("shutdown complete")
}
