package repository

import (
	"context"

	"gorm.io/gorm"

	"gastos/internal/model"
)

// TransactionRepository defines transaction persistence operations.
//
// Every lookup and mutation is scoped by the owning user in SQL, so a row
// belonging to another user is indistinguishable from a missing one.
type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) error
	ListByUser(ctx context.Context, userID uint) ([]model.Transaction, error)
	FindByOwner(ctx context.Context, userID, id uint) (*model.Transaction, error)
	Update(ctx context.Context, tx *model.Transaction) error
	DeleteByOwner(ctx context.Context, userID, id uint) (int64, error)
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create creates a new transaction record.
func (r *transactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// ListByUser lists a user's transactions, most recent first. Ties on the
// timestamp are broken by id so freshly created rows come first.
func (r *transactionRepository) ListByUser(ctx context.Context, userID uint) ([]model.Transaction, error) {
	var txs []model.Transaction
	if err := r.db.WithContext(ctx).
		Where("usuario_id = ?", userID).
		Order("data DESC").
		Order("id DESC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// FindByOwner finds a transaction by id, filtered by owner.
func (r *transactionRepository) FindByOwner(ctx context.Context, userID, id uint) (*model.Transaction, error) {
	var tx model.Transaction
	if err := r.db.WithContext(ctx).
		Where("id = ? AND usuario_id = ?", id, userID).
		First(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

// Update updates an existing transaction record.
func (r *transactionRepository) Update(ctx context.Context, tx *model.Transaction) error {
	return r.db.WithContext(ctx).Save(tx).Error
}

// DeleteByOwner removes a transaction by id, filtered by owner. It returns
// the number of rows deleted so callers can tell a no-op from a hit.
func (r *transactionRepository) DeleteByOwner(ctx context.Context, userID, id uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND usuario_id = ?", id, userID).
		Delete(&model.Transaction{})
	return res.RowsAffected, res.Error
}
