// Package store provides the persistence adapter: one uniform operation
// surface with three interchangeable backends (remote REST API, on-device
// SQLite, in-memory snapshot). The backend is selected once at startup and
// never mixed mid-session; the controller only branches at initialization.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"gastos/internal/model"
)

// ErrSessionExpired is returned after the remote backend has torn down the
// local session in response to a 401/403.
var ErrSessionExpired = errors.New("session invalid or expired, please log in again")

// TransactionInput carries the caller-supplied fields when creating a transaction.
type TransactionInput struct {
	Descricao string
	Valor     decimal.Decimal
	Tipo      model.TransactionType
	Categoria string
	// Data is optional; the current time is used when zero.
	Data time.Time
}

// TransactionUpdate carries the mutable fields of a transaction. Tipo and
// the owner cannot change after creation.
type TransactionUpdate struct {
	Descricao string
	Valor     decimal.Decimal
	Categoria string
}

// Store is the uniform contract shared by all backends. Implementations must
// agree on success and error shapes: ownership filtering on every transaction
// operation, unique usernames, and a not-found error that does not reveal
// whether a record exists under another owner.
type Store interface {
	// Register creates a user. Fails with errors.ErrDuplicateUsername or
	// errors.ErrMissingFields.
	Register(ctx context.Context, username, password string) (*model.User, error)

	// Login verifies credentials and establishes the session. Fails with
	// errors.ErrInvalidCredentials uniformly for unknown user or bad password.
	Login(ctx context.Context, username, password string) (*model.User, error)

	// ListTransactions returns the session user's transactions, most recent
	// first (data desc, id desc).
	ListTransactions(ctx context.Context) ([]model.Transaction, error)

	// GetTransaction returns one owned transaction, or errors.ErrTransactionNotFound.
	GetTransaction(ctx context.Context, id uint) (*model.Transaction, error)

	// CreateTransaction stores a new transaction owned by the session user.
	CreateTransaction(ctx context.Context, in TransactionInput) (*model.Transaction, error)

	// UpdateTransaction rewrites description, amount and category.
	UpdateTransaction(ctx context.Context, id uint, in TransactionUpdate) (*model.Transaction, error)

	// DeleteTransaction hard-deletes an owned transaction.
	DeleteTransaction(ctx context.Context, id uint) error

	// Close releases backend resources.
	Close() error
}
