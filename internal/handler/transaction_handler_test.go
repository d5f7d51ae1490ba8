package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gastos/internal/auth"
	apperrors "gastos/internal/errors"
	"gastos/internal/model"
	"gastos/internal/service"
)

// MockTransactionService is a mock implementation of service.TransactionService.
type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) List(ctx context.Context, userID uint) ([]model.Transaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Transaction), args.Error(1)
}

func (m *MockTransactionService) Create(ctx context.Context, userID uint, in service.TransactionInput) (*model.Transaction, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionService) Get(ctx context.Context, userID, id uint) (*model.Transaction, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionService) Update(ctx context.Context, userID, id uint, in service.TransactionInput) (*model.Transaction, error) {
	args := m.Called(ctx, userID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionService) Delete(ctx context.Context, userID, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// authedContext builds a context carrying the identity the JWT middleware
// would have attached.
func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, userID uint) echo.Context {
	c := e.NewContext(req, rec)
	c.Set("user", &jwt.Token{Claims: &auth.Claims{UserID: userID, Username: "ana"}})
	return c
}

func TestTransactionHandler_List(t *testing.T) {
	t.Run("returns transactions", func(t *testing.T) {
		mockSvc := new(MockTransactionService)
		mockSvc.On("List", mock.Anything, uint(1)).Return([]model.Transaction{
			{ID: 2, UsuarioID: 1, Descricao: "Salário"},
			{ID: 1, UsuarioID: 1, Descricao: "Cinema"},
		}, nil)

		e := newTestEcho()
		rec := httptest.NewRecorder()
		c := authedContext(e, httptest.NewRequest(http.MethodGet, "/transacoes", nil), rec, 1)

		err := NewTransactionHandler(mockSvc).List(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var txs []model.Transaction
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
		assert.Len(t, txs, 2)
		assert.Equal(t, uint(2), txs[0].ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty list is an array, not null", func(t *testing.T) {
		mockSvc := new(MockTransactionService)
		mockSvc.On("List", mock.Anything, uint(1)).Return(nil, nil)

		e := newTestEcho()
		rec := httptest.NewRecorder()
		c := authedContext(e, httptest.NewRequest(http.MethodGet, "/transacoes", nil), rec, 1)

		err := NewTransactionHandler(mockSvc).List(c)

		assert.NoError(t, err)
		assert.Equal(t, "[]\n", rec.Body.String())
		mockSvc.AssertExpectations(t)
	})

	t.Run("no identity on context", func(t *testing.T) {
		mockSvc := new(MockTransactionService)

		e := newTestEcho()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/transacoes", nil), rec)

		err := NewTransactionHandler(mockSvc).List(c)

		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestTransactionHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		mockSvc := new(MockTransactionService)
		mockSvc.On("Create", mock.Anything, uint(1), mock.MatchedBy(func(in service.TransactionInput) bool {
			return in.Descricao == "Supermercado" &&
				in.Valor.Equal(decimal.NewFromFloat(152.30)) &&
				in.Tipo == model.TransactionTypeExpense &&
				in.Categoria == "Alimentação"
		})).Return(&model.Transaction{ID: 1, UsuarioID: 1, Descricao: "Supermercado"}, nil)

		body := `{"descricao":"Supermercado","valor":"152.30","tipo":"despesa","categoria":"Alimentação"}`
		e := newTestEcho()
		rec := httptest.NewRecorder()
		c := authedContext(e, jsonRequest(http.MethodPost, "/transacoes", body), rec, 1)

		err := NewTransactionHandler(mockSvc).Create(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing fields", func(t *testing.T) {
		mockSvc := new(MockTransactionService)

		body := `{"descricao":"Supermercado","valor":"152.30"}`
		e := newTestEcho()
		rec := httptest.NewRecorder()
		c := authedContext(e, jsonRequest(http.MethodPost, "/transacoes", body), rec, 1)

		err := NewTransactionHandler(mockSvc).Create(c)

		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unparseable amount", func(t *testing.T) {
		mockSvc := new(MockTransactionService)

		body := `{"descricao":"x","valor":"abc","tipo":"despesa","categoria":"y"}`
		e := newTestEcho()
		rec := httptest.NewRecorder()
		c := authedContext(e, jsonRequest(http.MethodPost, "/transacoes", body), rec, 1)

		err := NewTransactionHandler(mockSvc).Create(c)

		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("bad date format", func(t *testing.T) {
		mockSvc := new(MockTransactionService)

		body := `{"descricao":"x","valor":"1.00","tipo":"despesa","categoria":"y","data":"10/03/2024"}`
		e := newTestEcho()
		rec := httptest.NewRecorder()
		c := authedContext(e, jsonRequest(http.MethodPost, "/transacoes", body), rec, 1)

		err := NewTransactionHandler(mockSvc).Create(c)

		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestTransactionHandler_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mockSvc := new(MockTransactionService)
		mockSvc.On("Get", mock.Anything, uint(1), uint(10)).
			Return(&model.Transaction{ID: 10, UsuarioID: 1}, nil)

		e := newTestEcho()
		rec := httptest.NewRecorder()
		c := authedContext(e, httptest.NewRequest(http.MethodGet, "/", nil), rec, 1)
		c.SetParamNames("id")
		c.SetParamValues("10")

		err := NewTransactionHandler(mockSvc).Get(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc := new(MockTransactionService)
		mockSvc.On("Get", mock.Anything, uint(1), uint(10)).
			Return(nil, apperrors.ErrTransactionNotFound)

		e := newTestEcho()
		rec := httptest.NewRecorder()
		c := authedContext(e, httptest.NewRequest(http.MethodGet, "/", nil), rec, 1)
		c.SetParamNames("id")
		c.SetParamValues("10")

		err := NewTransactionHandler(mockSvc).Get(c)

		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unparseable id reads as not found", func(t *testing.T) {
		mockSvc := new(MockTransactionService)

		e := newTestEcho()
		rec := httptest.NewRecorder()
		c := authedContext(e, httptest.NewRequest(http.MethodGet, "/", nil), rec, 1)
		c.SetParamNames("id")
		c.SetParamValues("abc")

		err := NewTransactionHandler(mockSvc).Get(c)

		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestTransactionHandler_Update(t *testing.T) {
	mockSvc := new(MockTransactionService)
	mockSvc.On("Update", mock.Anything, uint(1), uint(10), mock.MatchedBy(func(in service.TransactionInput) bool {
		return in.Descricao == "Mercado" && in.Valor.Equal(decimal.NewFromFloat(99.90)) && in.Categoria == "Casa"
	})).Return(&model.Transaction{ID: 10, UsuarioID: 1, Descricao: "Mercado"}, nil)

	body := `{"descricao":"Mercado","valor":"99.90","categoria":"Casa"}`
	e := newTestEcho()
	rec := httptest.NewRecorder()
	c := authedContext(e, jsonRequest(http.MethodPut, "/", body), rec, 1)
	c.SetParamNames("id")
	c.SetParamValues("10")

	err := NewTransactionHandler(mockSvc).Update(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	mockSvc.AssertExpectations(t)
}

func TestTransactionHandler_Delete(t *testing.T) {
	t.Run("no content", func(t *testing.T) {
		mockSvc := new(MockTransactionService)
		mockSvc.On("Delete", mock.Anything, uint(1), uint(10)).Return(nil)

		e := newTestEcho()
		rec := httptest.NewRecorder()
		c := authedContext(e, httptest.NewRequest(http.MethodDelete, "/", nil), rec, 1)
		c.SetParamNames("id")
		c.SetParamValues("10")

		err := NewTransactionHandler(mockSvc).Delete(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc := new(MockTransactionService)
		mockSvc.On("Delete", mock.Anything, uint(1), uint(10)).Return(apperrors.ErrTransactionNotFound)

		e := newTestEcho()
		rec := httptest.NewRecorder()
		c := authedContext(e, httptest.NewRequest(http.MethodDelete, "/", nil), rec, 1)
		c.SetParamNames("id")
		c.SetParamValues("10")

		err := NewTransactionHandler(mockSvc).Delete(c)

		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
		mockSvc.AssertExpectations(t)
	})
}
