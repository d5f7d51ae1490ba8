package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gastos/internal/cache"
	apperrors "gastos/internal/errors"
	"gastos/internal/model"
	"gastos/internal/repository"
)

const transactionListTTL = 5 * time.Minute

// TransactionInput carries the caller-supplied fields of a transaction.
type TransactionInput struct {
	Descricao string
	Valor     decimal.Decimal
	Tipo      model.TransactionType
	Categoria string
	// Data is optional; the current time is used when zero.
	Data time.Time
}

// TransactionService handles transaction CRUD scoped to an authenticated user.
type TransactionService interface {
	List(ctx context.Context, userID uint) ([]model.Transaction, error)
	Create(ctx context.Context, userID uint, in TransactionInput) (*model.Transaction, error)
	Get(ctx context.Context, userID, id uint) (*model.Transaction, error)
	Update(ctx context.Context, userID, id uint, in TransactionInput) (*model.Transaction, error)
	Delete(ctx context.Context, userID, id uint) error
}

type transactionService struct {
	repo  repository.TransactionRepository
	cache *cache.Client
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(repo repository.TransactionRepository, cache *cache.Client) TransactionService {
	return &transactionService{repo: repo, cache: cache}
}

func (s *transactionService) listKey(userID uint) string {
	return fmt.Sprintf("transacoes:user:%d", userID)
}

// List returns the user's transactions, most recent first, with caching.
// The cache is invalidated on every write so repeated reads with no
// intervening writes always return identical sequences.
func (s *transactionService) List(ctx context.Context, userID uint) ([]model.Transaction, error) {
	if data, _ := s.cache.Get(ctx, s.listKey(userID)); data != nil {
		var cached []model.Transaction
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	txs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	if payload, err := json.Marshal(txs); err == nil {
		_ = s.cache.Set(ctx, s.listKey(userID), payload, transactionListTTL)
	}

	return txs, nil
}

// Create stores a new transaction owned by userID. Data defaults to now.
func (s *transactionService) Create(ctx context.Context, userID uint, in TransactionInput) (*model.Transaction, error) {
	if in.Descricao == "" || in.Valor.IsZero() || in.Tipo == "" || in.Categoria == "" {
		return nil, apperrors.ErrMissingFields
	}

	data := in.Data
	if data.IsZero() {
		data = time.Now().UTC()
	}

	tx := &model.Transaction{
		Descricao: in.Descricao,
		Valor:     in.Valor,
		Tipo:      in.Tipo,
		Categoria: in.Categoria,
		Data:      data,
		UsuarioID: userID,
	}

	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	_ = s.cache.Delete(ctx, s.listKey(userID))
	return tx, nil
}

// Get returns a single transaction owned by userID.
func (s *transactionService) Get(ctx context.Context, userID, id uint) (*model.Transaction, error) {
	tx, err := s.repo.FindByOwner(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return tx, nil
}

// Update rewrites description, amount and category. Tipo and the owner are
// immutable after creation.
func (s *transactionService) Update(ctx context.Context, userID, id uint, in TransactionInput) (*model.Transaction, error) {
	if in.Descricao == "" || in.Valor.IsZero() || in.Categoria == "" {
		return nil, apperrors.ErrMissingFields
	}

	tx, err := s.repo.FindByOwner(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}

	tx.Descricao = in.Descricao
	tx.Valor = in.Valor
	tx.Categoria = in.Categoria

	if err := s.repo.Update(ctx, tx); err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	_ = s.cache.Delete(ctx, s.listKey(userID))
	return tx, nil
}

// Delete hard-deletes a transaction owned by userID.
func (s *transactionService) Delete(ctx context.Context, userID, id uint) error {
	affected, err := s.repo.DeleteByOwner(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrTransactionNotFound
	}

	_ = s.cache.Delete(ctx, s.listKey(userID))
	return nil
}
