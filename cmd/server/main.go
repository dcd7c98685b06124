package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/avelora/qr-loyalty/internal/award"
	"github.com/avelora/qr-loyalty/internal/config"
	"github.com/avelora/qr-loyalty/internal/database"
	"github.com/avelora/qr-loyalty/internal/handler"
	"github.com/avelora/qr-loyalty/internal/i18n"
	"github.com/avelora/qr-loyalty/internal/queue"
	"github.com/avelora/qr-loyalty/internal/repository"
	"github.com/avelora/qr-loyalty/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when REDIS_ADDR is unset

	translator, err := i18n.New(cfg.DefaultLang)
	if err != nil {
		log.Fatalf("i18n: %v", err)
	}

	// Repositories over the shared connection pool.
	businesses := repository.NewBusinessRepo(db)
	customers := repository.NewCustomerRepo(db)
	memberships := repository.NewMembershipRepo(db)
	discounts := repository.NewDiscountRepo(db)
	tokens := repository.NewTokenRepo(db)

	processor := &award.Processor{
		Store:                  repository.NewAwardStore(db),
		DefaultPointsPerScan:   cfg.DefaultPointsPerScan,
		DefaultRewardThreshold: cfg.DefaultRewardThreshold,
	}

	authH := handler.NewAuthHandler(cfg, businesses, tokens)
	businessH := handler.NewBusinessHandler(cfg, businesses, customers)
	customerH := handler.NewCustomerHandler(cfg, customers, memberships, discounts, businesses, translator)
	discountH := handler.NewDiscountHandler(discounts, businesses)
	adminH := handler.NewAdminHandler(cfg, businesses)
	scanH := handler.NewScanHandler(cfg, processor, translator, rdb)

	// Reward events land in a durable queue; the consumer writes the audit
	// log and survives broker restarts on its own.
	go func() {
		if err := queue.StartRewardConsumer(); err != nil {
			log.Printf("reward consumer: %v", err)
		}
	}()

	e := echo.New()
	mw := router.NewMiddlewares(rdb)
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret, mw.RateLimit)
	router.RegisterPublic(e, discountH)
	router.RegisterBusiness(e, businessH, discountH, scanH, cfg.JWTSecret, mw.RateLimit)
	router.RegisterCustomer(e, customerH, mw.Cache)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
