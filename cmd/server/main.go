package main

import (
	"log"
	"net/http"
	"os"

	_ "gastos/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"gastos/internal/auth"
	"gastos/internal/cache"
	"gastos/internal/config"
	"gastos/internal/db"
	"gastos/internal/handler"
	"gastos/internal/model"
	"gastos/internal/repository"
	"gastos/internal/router"
	"gastos/internal/service"
)

// @title Controle de Gastos API
// @version 1.0
// @description Personal finance API with user registration, JWT-protected transaction CRUD and a currency conversion passthrough.
// @host localhost:3000
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.Transaction{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Transaction{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	txRepo := repository.NewTransactionRepository(gormDB)

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	authService := service.NewAuthService(userRepo, jwtService)
	txService := service.NewTransactionService(txRepo, cacheClient)
	ratesService := service.NewRatesService(cfg.ExchangeAPIURL, cfg.ExchangeAPIKey)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	txHandler := handler.NewTransactionHandler(txService)
	ratesHandler := handler.NewRatesHandler(ratesService)

	// Register routes
	router.Register(e, cfg, authHandler, txHandler, ratesHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
