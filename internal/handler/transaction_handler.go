package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"gastos/internal/auth"
	"gastos/internal/errors"
	"gastos/internal/model"
	"gastos/internal/service"
)

// TransactionHandler handles the authenticated transaction CRUD endpoints.
type TransactionHandler struct {
	txService service.TransactionService
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(txService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{txService: txService}
}

// CreateTransactionRequest represents a transaction creation request.
type CreateTransactionRequest struct {
	Descricao string `json:"descricao" validate:"required"`
	Valor     string `json:"valor" validate:"required"`
	Tipo      string `json:"tipo" validate:"required"`
	Categoria string `json:"categoria" validate:"required"`
	Data      string `json:"data,omitempty"`
}

// UpdateTransactionRequest represents a transaction update request.
// Tipo is absent on purpose: it is immutable after creation.
type UpdateTransactionRequest struct {
	Descricao string `json:"descricao" validate:"required"`
	Valor     string `json:"valor" validate:"required"`
	Categoria string `json:"categoria" validate:"required"`
}

// currentUser extracts the authenticated identity placed by the JWT middleware.
func currentUser(c echo.Context) (*auth.Claims, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "missing or invalid token",
			Code:  "UNAUTHORIZED",
		})
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "missing or invalid token",
			Code:  "UNAUTHORIZED",
		})
	}
	return claims, nil
}

func transactionID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		// An unparseable id can never match a row; same shape as not found.
		return 0, echo.NewHTTPError(http.StatusNotFound, errors.ErrorResponse{
			Error: errors.ErrTransactionNotFound.Error(),
			Code:  "TRANSACTION_NOT_FOUND",
		})
	}
	return uint(id), nil
}

// List godoc
// @Summary List the caller's transactions, most recent first
// @Tags transacoes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Transaction
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /transacoes [get]
func (h *TransactionHandler) List(c echo.Context) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}

	txs, err := h.txService.List(c.Request().Context(), claims.UserID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	if txs == nil {
		txs = []model.Transaction{}
	}
	return c.JSON(http.StatusOK, txs)
}

// Create godoc
// @Summary Create a transaction
// @Tags transacoes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "Transaction data"
// @Success 201 {object} model.Transaction
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /transacoes [post]
func (h *TransactionHandler) Create(c echo.Context) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "all fields are required",
			Code:  "MISSING_FIELDS",
		})
	}

	valor, err := decimal.NewFromString(req.Valor)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid valor",
			Code:  "INVALID_AMOUNT",
		})
	}

	in := service.TransactionInput{
		Descricao: req.Descricao,
		Valor:     valor,
		Tipo:      model.TransactionType(req.Tipo),
		Categoria: req.Categoria,
	}
	if req.Data != "" {
		data, err := time.Parse(time.RFC3339, req.Data)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "invalid data, expected RFC 3339",
				Code:  "INVALID_DATE",
			})
		}
		in.Data = data
	}

	tx, err := h.txService.Create(c.Request().Context(), claims.UserID, in)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, tx)
}

// Get godoc
// @Summary Fetch a single transaction
// @Tags transacoes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} model.Transaction
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /transacoes/{id} [get]
func (h *TransactionHandler) Get(c echo.Context) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := transactionID(c)
	if err != nil {
		return err
	}

	tx, err := h.txService.Get(c.Request().Context(), claims.UserID, id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, tx)
}

// Update godoc
// @Summary Update a transaction's description, amount and category
// @Tags transacoes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param request body UpdateTransactionRequest true "Updated fields"
// @Success 200 {object} model.Transaction
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /transacoes/{id} [put]
func (h *TransactionHandler) Update(c echo.Context) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := transactionID(c)
	if err != nil {
		return err
	}

	var req UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "descricao, valor and categoria are required",
			Code:  "MISSING_FIELDS",
		})
	}

	valor, err := decimal.NewFromString(req.Valor)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid valor",
			Code:  "INVALID_AMOUNT",
		})
	}

	tx, err := h.txService.Update(c.Request().Context(), claims.UserID, id, service.TransactionInput{
		Descricao: req.Descricao,
		Valor:     valor,
		Categoria: req.Categoria,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, tx)
}

// Delete godoc
// @Summary Delete a transaction
// @Tags transacoes
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /transacoes/{id} [delete]
func (h *TransactionHandler) Delete(c echo.Context) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := transactionID(c)
	if err != nil {
		return err
	}

	if err := h.txService.Delete(c.Request().Context(), claims.UserID, id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.NoContent(http.StatusNoContent)
}
