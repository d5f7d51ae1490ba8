package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"gastos/internal/config"
	"gastos/internal/db"
	"gastos/internal/model"
	"gastos/internal/repository"
)

const (
	demoUsername = "demo"
	demoPassword = "demo123"
)

// demoTransactions is a small, fixed data set for local development.
var demoTransactions = []struct {
	descricao string
	valor     string
	tipo      model.TransactionType
	categoria string
	daysAgo   int
}{
	{"Salário", "3500.00", model.TransactionTypeIncome, "Trabalho", 10},
	{"Supermercado", "412.75", model.TransactionTypeExpense, "Alimentação", 7},
	{"Freelance", "800.00", model.TransactionTypeIncome, "Trabalho", 5},
	{"Internet", "99.90", model.TransactionTypeExpense, "Casa", 3},
	{"Cinema", "45.00", model.TransactionTypeExpense, "Lazer", 1},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Transaction{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	txRepo := repository.NewTransactionRepository(gormDB)

	user, err := userRepo.FindByUsername(ctx, demoUsername)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("Failed to check demo user: %v", err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), 10)
		if err != nil {
			log.Fatalf("Failed to hash demo password: %v", err)
		}
		user = &model.User{Username: demoUsername, PasswordHash: string(hash)}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create demo user: %v", err)
		}
		log.Printf("Created demo user %q (id %d)", demoUsername, user.ID)
	} else {
		log.Printf("Demo user %q already exists (id %d)", demoUsername, user.ID)
	}

	existing, err := txRepo.ListByUser(ctx, user.ID)
	if err != nil {
		log.Fatalf("Failed to list demo transactions: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("Demo user already has %d transactions, nothing to do", len(existing))
		return
	}

	seeded := 0
	for _, item := range demoTransactions {
		valor, err := decimal.NewFromString(item.valor)
		if err != nil {
			log.Printf("Skipping transaction with invalid valor: %s", item.valor)
			continue
		}

		tx := &model.Transaction{
			Descricao: item.descricao,
			Valor:     valor,
			Tipo:      item.tipo,
			Categoria: item.categoria,
			Data:      time.Now().UTC().AddDate(0, 0, -item.daysAgo),
			UsuarioID: user.ID,
		}
		if err := txRepo.Create(ctx, tx); err != nil {
			log.Fatalf("Failed to create transaction %q: %v", item.descricao, err)
		}
		seeded++
	}

	log.Printf("Seed completed successfully! %d transactions created", seeded)
}
