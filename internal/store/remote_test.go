package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/client/session"
	apperrors "gastos/internal/errors"
	"gastos/internal/model"
)

func newSessionManager(t *testing.T) *session.Manager {
	return session.NewManager(filepath.Join(t.TempDir(), "session.json"))
}

func TestRemoteStore_LoginSavesSession(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req["password"] != "pw1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": 7, "username": "ana", "token": "tok-abc"})
	}))
	defer api.Close()

	sessions := newSessionManager(t)
	s := NewRemoteStore(api.URL, sessions)

	user, err := s.Login(context.Background(), "ana", "pw1")
	require.NoError(t, err)
	assert.Equal(t, uint(7), user.ID)

	sess, err := sessions.Current()
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", sess.Token)
	assert.Equal(t, uint(7), sess.UserID)

	_, err = s.Login(context.Background(), "ana", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestRemoteStore_RegisterStatusMapping(t *testing.T) {
	var status int
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusCreated {
			json.NewEncoder(w).Encode(map[string]any{"id": 1, "username": "ana"})
		}
	}))
	defer api.Close()

	s := NewRemoteStore(api.URL, newSessionManager(t))
	ctx := context.Background()

	status = http.StatusCreated
	user, err := s.Register(ctx, "ana", "pw1")
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)

	status = http.StatusConflict
	_, err = s.Register(ctx, "ana", "pw1")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateUsername)

	status = http.StatusBadRequest
	_, err = s.Register(ctx, "ana", "pw1")
	assert.ErrorIs(t, err, apperrors.ErrMissingFields)
}

func TestRemoteStore_AuthedCallsCarryToken(t *testing.T) {
	var gotAuth string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]model.Transaction{{ID: 1, UsuarioID: 7, Descricao: "Cinema"}})
	}))
	defer api.Close()

	sessions := newSessionManager(t)
	require.NoError(t, sessions.Save(&session.Session{UserID: 7, Username: "ana", Token: "tok-abc"}))

	s := NewRemoteStore(api.URL, sessions)
	txs, err := s.ListTransactions(context.Background())

	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Bearer tok-abc", gotAuth)
}

func TestRemoteStore_NoSession(t *testing.T) {
	s := NewRemoteStore("http://localhost:1", newSessionManager(t))

	_, err := s.ListTransactions(context.Background())
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)
}

// A rejected token must tear down the local session so the next command
// forces a fresh login.
func TestRemoteStore_RejectedTokenClearsSession(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer api.Close()

	sessions := newSessionManager(t)
	require.NoError(t, sessions.Save(&session.Session{UserID: 7, Username: "ana", Token: "stale"}))

	s := NewRemoteStore(api.URL, sessions)
	_, err := s.ListTransactions(context.Background())

	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = sessions.Current()
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)
}

func TestRemoteStore_CreateTransaction(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Supermercado", req["descricao"])
		assert.Equal(t, "152.3", req["valor"])
		assert.Equal(t, "despesa", req["tipo"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.Transaction{ID: 3, UsuarioID: 7, Descricao: "Supermercado"})
	}))
	defer api.Close()

	sessions := newSessionManager(t)
	require.NoError(t, sessions.Save(&session.Session{UserID: 7, Username: "ana", Token: "tok-abc"}))

	s := NewRemoteStore(api.URL, sessions)
	tx, err := s.CreateTransaction(context.Background(), TransactionInput{
		Descricao: "Supermercado",
		Valor:     decimal.NewFromFloat(152.30),
		Tipo:      model.TransactionTypeExpense,
		Categoria: "Alimentação",
	})

	require.NoError(t, err)
	assert.Equal(t, uint(3), tx.ID)
}

func TestRemoteStore_NotFoundMapping(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer api.Close()

	sessions := newSessionManager(t)
	require.NoError(t, sessions.Save(&session.Session{UserID: 7, Username: "ana", Token: "tok-abc"}))

	s := NewRemoteStore(api.URL, sessions)
	ctx := context.Background()

	_, err := s.GetTransaction(ctx, 99)
	assert.ErrorIs(t, err, apperrors.ErrTransactionNotFound)

	_, err = s.UpdateTransaction(ctx, 99, TransactionUpdate{
		Descricao: "x", Valor: decimal.NewFromInt(1), Categoria: "y",
	})
	assert.ErrorIs(t, err, apperrors.ErrTransactionNotFound)

	err = s.DeleteTransaction(ctx, 99)
	assert.ErrorIs(t, err, apperrors.ErrTransactionNotFound)
}
