package main

import (
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/retail-backoffice/internal/config"
	"github.com/iliyamo/retail-backoffice/internal/database"
	"github.com/iliyamo/retail-backoffice/internal/handler"
	"github.com/iliyamo/retail-backoffice/internal/logger"
	"github.com/iliyamo/retail-backoffice/internal/queue"
	"github.com/iliyamo/retail-backoffice/internal/repository"
	"github.com/iliyamo/retail-backoffice/internal/router"
	"github.com/iliyamo/retail-backoffice/internal/service"
	"github.com/iliyamo/retail-backoffice/internal/token"
	"github.com/iliyamo/retail-backoffice/internal/utils"
)

func main() {
	// Local development reads .env; in deployment the variables are set by
	// the environment and the file is simply absent.
	_ = godotenv.Load()

	log := logger.New(int(slog.LevelInfo))
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("database connect failed", "error", err.Error())
	}
	defer db.Close()

	// Redis is optional: with no client the rate limiter and response cache
	// become pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, rate limiting and response cache disabled")
	}

	issuer, err := token.NewIssuer(cfg.AccessSecret, cfg.RefreshSecret,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour)
	if err != nil {
		log.Fatal("token issuer init failed", "error", err.Error())
	}
	verifier, err := token.NewVerifier(cfg.AccessSecret, cfg.RefreshSecret)
	if err != nil {
		log.Fatal("token verifier init failed", "error", err.Error())
	}

	users := repository.NewUserRepo(db)
	branches := repository.NewBranchRepo(db)
	products := repository.NewProductRepo(db)
	inventory := repository.NewInventoryRepo(db)
	customers := repository.NewCustomerRepo(db)
	accounts := repository.NewAccountRepo(db)

	sessions := service.NewSession(users, &utils.BcryptHasher{Cost: cfg.BcryptCost}, issuer, verifier, log)

	go queue.StartStockAlertConsumer()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Auth:      handler.NewAuthHandler(sessions),
		Branch:    handler.NewBranchHandler(branches),
		Product:   handler.NewProductHandler(products),
		Inventory: handler.NewInventoryHandler(inventory, products, branches),
		Customer:  handler.NewCustomerHandler(customers, branches),
		Account:   handler.NewAccountHandler(accounts, branches),
		Verifier:  verifier,
		Roles:     users,
		DB:        db,
		Redis:     rdb,
	})

	addr := ":" + cfg.Port
	log.Info("listening", "addr", addr, "env", cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal("server stopped", "error", err.Error())
	}
}
