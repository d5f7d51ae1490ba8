package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gastos/internal/client/session"
	apperrors "gastos/internal/errors"
	"gastos/internal/model"
)

const requestTimeout = 15 * time.Second

// RemoteStore implements Store against the backend's REST surface. Every
// operation is a network call; a 401/403 on an authenticated call tears down
// the local session before the error is surfaced.
type RemoteStore struct {
	baseURL  string
	client   *http.Client
	sessions *session.Manager
}

// NewRemoteStore creates a remote-backed store.
func NewRemoteStore(baseURL string, sessions *session.Manager) *RemoteStore {
	return &RemoteStore{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: requestTimeout},
		sessions: sessions,
	}
}

func (s *RemoteStore) do(ctx context.Context, method, path, token string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// authedDo performs a request with the session token. On 401/403 it clears
// the stored session so the next action forces a re-login.
func (s *RemoteStore) authedDo(ctx context.Context, method, path string, body any) (int, []byte, error) {
	sess, err := s.sessions.Current()
	if err != nil {
		return 0, nil, err
	}

	status, data, err := s.do(ctx, method, path, sess.Token, body)
	if err != nil {
		return 0, nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		_ = s.sessions.Clear()
		return 0, nil, ErrSessionExpired
	}
	return status, data, nil
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

type transactionRequest struct {
	Descricao string `json:"descricao"`
	Valor     string `json:"valor"`
	Tipo      string `json:"tipo,omitempty"`
	Categoria string `json:"categoria"`
	Data      string `json:"data,omitempty"`
}

// Register creates a user through POST /registrar.
func (s *RemoteStore) Register(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, apperrors.ErrMissingFields
	}

	status, data, err := s.do(ctx, http.MethodPost, "/registrar", "", credentialsRequest{username, password})
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusCreated:
		var user model.User
		if err := json.Unmarshal(data, &user); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		return &user, nil
	case http.StatusConflict:
		return nil, apperrors.ErrDuplicateUsername
	case http.StatusBadRequest:
		return nil, apperrors.ErrMissingFields
	default:
		return nil, fmt.Errorf("register failed: status %d", status)
	}
}

// Login authenticates through POST /login and stores the issued token.
func (s *RemoteStore) Login(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, apperrors.ErrMissingFields
	}

	status, data, err := s.do(ctx, http.MethodPost, "/login", "", credentialsRequest{username, password})
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, apperrors.ErrInvalidCredentials
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("login failed: status %d", status)
	}

	var resp loginResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}

	if err := s.sessions.Save(&session.Session{
		UserID:   resp.ID,
		Username: resp.Username,
		Token:    resp.Token,
	}); err != nil {
		return nil, err
	}

	return &model.User{ID: resp.ID, Username: resp.Username}, nil
}

// ListTransactions fetches GET /transacoes.
func (s *RemoteStore) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	status, data, err := s.authedDo(ctx, http.MethodGet, "/transacoes", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("list transactions failed: status %d", status)
	}

	var txs []model.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	return txs, nil
}

// GetTransaction fetches GET /transacoes/:id.
func (s *RemoteStore) GetTransaction(ctx context.Context, id uint) (*model.Transaction, error) {
	status, data, err := s.authedDo(ctx, http.MethodGet, fmt.Sprintf("/transacoes/%d", id), nil)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		var tx model.Transaction
		if err := json.Unmarshal(data, &tx); err != nil {
			return nil, fmt.Errorf("decode transaction: %w", err)
		}
		return &tx, nil
	case http.StatusNotFound:
		return nil, apperrors.ErrTransactionNotFound
	default:
		return nil, fmt.Errorf("get transaction failed: status %d", status)
	}
}

// CreateTransaction posts to /transacoes.
func (s *RemoteStore) CreateTransaction(ctx context.Context, in TransactionInput) (*model.Transaction, error) {
	req := transactionRequest{
		Descricao: in.Descricao,
		Valor:     in.Valor.String(),
		Tipo:      string(in.Tipo),
		Categoria: in.Categoria,
	}
	if !in.Data.IsZero() {
		req.Data = in.Data.Format(time.RFC3339)
	}

	status, data, err := s.authedDo(ctx, http.MethodPost, "/transacoes", req)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusCreated:
		var tx model.Transaction
		if err := json.Unmarshal(data, &tx); err != nil {
			return nil, fmt.Errorf("decode transaction: %w", err)
		}
		return &tx, nil
	case http.StatusBadRequest:
		return nil, apperrors.ErrMissingFields
	default:
		return nil, fmt.Errorf("create transaction failed: status %d", status)
	}
}

// UpdateTransaction puts to /transacoes/:id.
func (s *RemoteStore) UpdateTransaction(ctx context.Context, id uint, in TransactionUpdate) (*model.Transaction, error) {
	req := transactionRequest{
		Descricao: in.Descricao,
		Valor:     in.Valor.String(),
		Categoria: in.Categoria,
	}

	status, data, err := s.authedDo(ctx, http.MethodPut, fmt.Sprintf("/transacoes/%d", id), req)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		var tx model.Transaction
		if err := json.Unmarshal(data, &tx); err != nil {
			return nil, fmt.Errorf("decode transaction: %w", err)
		}
		return &tx, nil
	case http.StatusNotFound:
		return nil, apperrors.ErrTransactionNotFound
	case http.StatusBadRequest:
		return nil, apperrors.ErrMissingFields
	default:
		return nil, fmt.Errorf("update transaction failed: status %d", status)
	}
}

// DeleteTransaction deletes /transacoes/:id.
func (s *RemoteStore) DeleteTransaction(ctx context.Context, id uint) error {
	status, _, err := s.authedDo(ctx, http.MethodDelete, fmt.Sprintf("/transacoes/%d", id), nil)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return apperrors.ErrTransactionNotFound
	default:
		return fmt.Errorf("delete transaction failed: status %d", status)
	}
}

// Close is a no-op for the remote backend.
func (s *RemoteStore) Close() error {
	return nil
}
