package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gastos/internal/client/session"
	apperrors "gastos/internal/errors"
	"gastos/internal/model"
)

// SQLiteStore implements Store against the on-device SQLite database. The
// table shapes match the remote schema; every transaction query is scoped by
// the session user.
//
// Passwords are compared by direct equality against the stored value, with no
// hashing. The data never leaves the device, which is the only reason this
// weaker check is tolerated; see DESIGN.md before changing it, since hashing
// would break existing device databases.
type SQLiteStore struct {
	db       *sql.DB
	sessions *session.Manager
}

// NewSQLiteStore creates a device-backed store over an open SQLite handle.
func NewSQLiteStore(db *sql.DB, sessions *session.Manager) *SQLiteStore {
	return &SQLiteStore{db: db, sessions: sessions}
}

// Register inserts a user. A unique-constraint violation on username maps to
// the duplicate-username error.
func (s *SQLiteStore) Register(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, apperrors.ErrMissingFields
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO usuarios (username, password_hash) VALUES (?, ?)`,
		username, password)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, apperrors.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return &model.User{ID: uint(id), Username: username}, nil
}

// Login compares the supplied password with the stored value and establishes
// a local session on match. Unknown user and wrong password fail identically.
func (s *SQLiteStore) Login(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, apperrors.ErrMissingFields
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM usuarios WHERE username = ?`, username)

	var id uint
	var stored string
	if err := row.Scan(&id, &stored); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	if password != stored {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.sessions.Save(&session.Session{
		UserID:   id,
		Username: username,
		Token:    session.LocalToken,
	}); err != nil {
		return nil, err
	}

	return &model.User{ID: id, Username: username}, nil
}

func (s *SQLiteStore) userID() (uint, error) {
	sess, err := s.sessions.Current()
	if err != nil {
		return 0, err
	}
	return sess.UserID, nil
}

func scanTransaction(scan func(dest ...any) error) (*model.Transaction, error) {
	var tx model.Transaction
	var valor float64
	var data string
	var sincronizado int
	if err := scan(&tx.ID, &tx.Descricao, &valor, &tx.Tipo, &tx.Categoria, &data, &tx.UsuarioID, &sincronizado); err != nil {
		return nil, err
	}
	tx.Valor = decimal.NewFromFloat(valor)
	tx.Sincronizado = sincronizado != 0
	parsed, err := time.Parse(time.RFC3339, data)
	if err != nil {
		return nil, fmt.Errorf("parse data %q: %w", data, err)
	}
	tx.Data = parsed
	return &tx, nil
}

const transactionColumns = `id, descricao, valor, tipo, categoria, data, usuario_id, sincronizado`

// ListTransactions lists the session user's transactions, most recent first.
func (s *SQLiteStore) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transacoes WHERE usuario_id = ? ORDER BY data DESC, id DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	var result []model.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetTransaction returns one owned transaction.
func (s *SQLiteStore) GetTransaction(ctx context.Context, id uint) (*model.Transaction, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transacoes WHERE id = ? AND usuario_id = ?`,
		id, userID)

	tx, err := scanTransaction(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("query transaction: %w", err)
	}
	return tx, nil
}

// CreateTransaction inserts a transaction owned by the session user. The
// sincronizado flag is recorded as 0; nothing in the client consumes it.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, in TransactionInput) (*model.Transaction, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, err
	}

	if in.Descricao == "" || in.Valor.IsZero() || in.Tipo == "" || in.Categoria == "" {
		return nil, apperrors.ErrMissingFields
	}

	data := in.Data
	if data.IsZero() {
		data = time.Now().UTC()
	}

	valor, _ := in.Valor.Float64()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transacoes (descricao, valor, tipo, categoria, data, usuario_id, sincronizado) VALUES (?, ?, ?, ?, ?, ?, 0)`,
		in.Descricao, valor, string(in.Tipo), in.Categoria, data.Format(time.RFC3339), userID)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return &model.Transaction{
		ID:        uint(id),
		Descricao: in.Descricao,
		Valor:     in.Valor,
		Tipo:      in.Tipo,
		Categoria: in.Categoria,
		Data:      data,
		UsuarioID: userID,
	}, nil
}

// UpdateTransaction rewrites description, amount and category of an owned row.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, id uint, in TransactionUpdate) (*model.Transaction, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, err
	}

	if in.Descricao == "" || in.Valor.IsZero() || in.Categoria == "" {
		return nil, apperrors.ErrMissingFields
	}

	valor, _ := in.Valor.Float64()
	res, err := s.db.ExecContext(ctx,
		`UPDATE transacoes SET descricao = ?, valor = ?, categoria = ? WHERE id = ? AND usuario_id = ?`,
		in.Descricao, valor, in.Categoria, id, userID)
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, apperrors.ErrTransactionNotFound
	}

	return s.GetTransaction(ctx, id)
}

// DeleteTransaction hard-deletes an owned row.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id uint) error {
	userID, err := s.userID()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transacoes WHERE id = ? AND usuario_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
