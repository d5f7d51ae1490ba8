package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"gastos/internal/client/session"
	apperrors "gastos/internal/errors"
	"gastos/internal/model"
)

// MemoryStore implements Store with typed in-process collections. State is
// snapshotted to a file after every write so it survives separate command
// invocations within a session, and discarded when the snapshot is removed.
// It reproduces the same uniqueness and ownership semantics as the other
// backends through direct operations, not simulated SQL.
type MemoryStore struct {
	path     string
	sessions *session.Manager
	state    snapshot
}

type snapshotUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type snapshotTransaction struct {
	ID           uint            `json:"id"`
	Descricao    string          `json:"descricao"`
	Valor        decimal.Decimal `json:"valor"`
	Tipo         string          `json:"tipo"`
	Categoria    string          `json:"categoria"`
	Data         time.Time       `json:"data"`
	UsuarioID    uint            `json:"usuario_id"`
	Sincronizado bool            `json:"sincronizado"`
}

type snapshot struct {
	Usuarios       []snapshotUser        `json:"usuarios"`
	Transacoes     []snapshotTransaction `json:"transacoes"`
	UserSeq        uint                  `json:"user_seq"`
	TransactionSeq uint                  `json:"transaction_seq"`
}

// NewMemoryStore creates a memory-backed store, reloading any previous
// snapshot from path.
func NewMemoryStore(path string, sessions *session.Manager) (*MemoryStore, error) {
	s := &MemoryStore{path: path, sessions: sessions}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read snapshot: %w", err)
		}
		return s, nil
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

func (s *MemoryStore) persist() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	data, err := json.Marshal(s.state)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Register creates a user, enforcing username uniqueness.
func (s *MemoryStore) Register(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, apperrors.ErrMissingFields
	}

	for _, u := range s.state.Usuarios {
		if u.Username == username {
			return nil, apperrors.ErrDuplicateUsername
		}
	}

	s.state.UserSeq++
	user := snapshotUser{ID: s.state.UserSeq, Username: username, Password: password}
	s.state.Usuarios = append(s.state.Usuarios, user)

	if err := s.persist(); err != nil {
		return nil, err
	}
	return &model.User{ID: user.ID, Username: user.Username}, nil
}

// Login verifies credentials and establishes a local session. The mock keeps
// the same uniform failure as the other backends.
func (s *MemoryStore) Login(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, apperrors.ErrMissingFields
	}

	for _, u := range s.state.Usuarios {
		if u.Username == username {
			if u.Password != password {
				return nil, apperrors.ErrInvalidCredentials
			}
			if err := s.sessions.Save(&session.Session{
				UserID:   u.ID,
				Username: u.Username,
				Token:    session.LocalToken,
			}); err != nil {
				return nil, err
			}
			return &model.User{ID: u.ID, Username: u.Username}, nil
		}
	}
	return nil, apperrors.ErrInvalidCredentials
}

func (s *MemoryStore) userID() (uint, error) {
	sess, err := s.sessions.Current()
	if err != nil {
		return 0, err
	}
	return sess.UserID, nil
}

func toModel(t snapshotTransaction) model.Transaction {
	return model.Transaction{
		ID:           t.ID,
		Descricao:    t.Descricao,
		Valor:        t.Valor,
		Tipo:         model.TransactionType(t.Tipo),
		Categoria:    t.Categoria,
		Data:         t.Data,
		UsuarioID:    t.UsuarioID,
		Sincronizado: t.Sincronizado,
	}
}

// ListTransactions filters by the session user and sorts most recent first,
// ties broken by id descending.
func (s *MemoryStore) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, err
	}

	var result []model.Transaction
	for _, t := range s.state.Transacoes {
		if t.UsuarioID == userID {
			result = append(result, toModel(t))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Data.Equal(result[j].Data) {
			return result[i].Data.After(result[j].Data)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

// GetTransaction returns an owned transaction. A foreign or absent id fails
// the same way.
func (s *MemoryStore) GetTransaction(ctx context.Context, id uint) (*model.Transaction, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, err
	}

	for _, t := range s.state.Transacoes {
		if t.ID == id && t.UsuarioID == userID {
			tx := toModel(t)
			return &tx, nil
		}
	}
	return nil, apperrors.ErrTransactionNotFound
}

// CreateTransaction appends a transaction owned by the session user.
func (s *MemoryStore) CreateTransaction(ctx context.Context, in TransactionInput) (*model.Transaction, error) {
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

	s.state.TransactionSeq++
	t := snapshotTransaction{
		ID:        s.state.TransactionSeq,
		Descricao: in.Descricao,
		Valor:     in.Valor,
		Tipo:      string(in.Tipo),
		Categoria: in.Categoria,
		Data:      data,
		UsuarioID: userID,
	}
	s.state.Transacoes = append(s.state.Transacoes, t)

	if err := s.persist(); err != nil {
		return nil, err
	}
	tx := toModel(t)
	return &tx, nil
}

// UpdateTransaction rewrites description, amount and category of an owned entry.
func (s *MemoryStore) UpdateTransaction(ctx context.Context, id uint, in TransactionUpdate) (*model.Transaction, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, err
	}

	if in.Descricao == "" || in.Valor.IsZero() || in.Categoria == "" {
		return nil, apperrors.ErrMissingFields
	}

	for i, t := range s.state.Transacoes {
		if t.ID == id && t.UsuarioID == userID {
			s.state.Transacoes[i].Descricao = in.Descricao
			s.state.Transacoes[i].Valor = in.Valor
			s.state.Transacoes[i].Categoria = in.Categoria
			if err := s.persist(); err != nil {
				return nil, err
			}
			tx := toModel(s.state.Transacoes[i])
			return &tx, nil
		}
	}
	return nil, apperrors.ErrTransactionNotFound
}

// DeleteTransaction removes an owned entry.
func (s *MemoryStore) DeleteTransaction(ctx context.Context, id uint) error {
	userID, err := s.userID()
	if err != nil {
		return err
	}

	for i, t := range s.state.Transacoes {
		if t.ID == id && t.UsuarioID == userID {
			s.state.Transacoes = append(s.state.Transacoes[:i], s.state.Transacoes[i+1:]...)
			return s.persist()
		}
	}
	return apperrors.ErrTransactionNotFound
}

// Close is a no-op for the memory backend.
func (s *MemoryStore) Close() error {
	return nil
}
