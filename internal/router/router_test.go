package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/auth"
	"gastos/internal/config"
	"gastos/internal/handler"
	"gastos/internal/model"
	"gastos/internal/service"
)

// stubTransactionService lets the routing tests exercise the middleware chain
// without a database.
type stubTransactionService struct {
	lastUserID uint
}

func (s *stubTransactionService) List(ctx context.Context, userID uint) ([]model.Transaction, error) {
	s.lastUserID = userID
	return []model.Transaction{}, nil
}

func (s *stubTransactionService) Create(ctx context.Context, userID uint, in service.TransactionInput) (*model.Transaction, error) {
	return &model.Transaction{ID: 1, UsuarioID: userID}, nil
}

func (s *stubTransactionService) Get(ctx context.Context, userID, id uint) (*model.Transaction, error) {
	return &model.Transaction{ID: id, UsuarioID: userID}, nil
}

func (s *stubTransactionService) Update(ctx context.Context, userID, id uint, in service.TransactionInput) (*model.Transaction, error) {
	return &model.Transaction{ID: id, UsuarioID: userID}, nil
}

func (s *stubTransactionService) Delete(ctx context.Context, userID, id uint) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	return &model.User{ID: 1, Username: username}, nil
}

func (stubAuthService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	return "", nil, nil
}

func (stubAuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	return nil, nil
}

type stubRatesService struct{}

func (stubRatesService) Convert(ctx context.Context, from, to, amount string) (*service.ConversionResult, error) {
	return &service.ConversionResult{StatusCode: http.StatusOK, Body: []byte(`{}`)}, nil
}

func newRouter(t *testing.T, txService service.TransactionService) (*echo.Echo, *auth.JWTService) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	e := echo.New()
	Register(e, cfg,
		handler.NewAuthHandler(stubAuthService{}),
		handler.NewTransactionHandler(txService),
		handler.NewRatesHandler(stubRatesService{}),
	)
	return e, auth.NewJWTService(cfg.JWTSecret)
}

func TestSecuredRoutes_MissingToken(t *testing.T) {
	e, _ := newRouter(t, &stubTransactionService{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transacoes", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_TOKEN")
}

func TestSecuredRoutes_InvalidToken(t *testing.T) {
	e, _ := newRouter(t, &stubTransactionService{})

	req := httptest.NewRequest(http.MethodGet, "/transacoes", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TOKEN")
}

func TestSecuredRoutes_ValidTokenReachesHandler(t *testing.T) {
	stub := &stubTransactionService{}
	e, jwtService := newRouter(t, stub)

	token, err := jwtService.GenerateToken(42, "ana")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/transacoes", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(42), stub.lastUserID)
}

func TestPublicRoutesNeedNoToken(t *testing.T) {
	e, _ := newRouter(t, &stubTransactionService{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/converter-moeda?from=USD&to=BRL&amount=10", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
