package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "gastos/internal/errors"
)

const upstreamTimeout = 10 * time.Second

// ConversionResult carries the upstream provider's response untouched.
type ConversionResult struct {
	StatusCode int
	Body       []byte
}

// RatesService forwards currency conversion requests to the exchange-rate
// provider. A single best-effort call: no caching, no retries.
type RatesService interface {
	Convert(ctx context.Context, from, to, amount string) (*ConversionResult, error)
}

type ratesService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewRatesService creates a new rates service.
func NewRatesService(baseURL, apiKey string) RatesService {
	return &ratesService{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: upstreamTimeout},
	}
}

// Convert calls the provider's pair endpoint and relays status and payload
// verbatim, success or not.
func (s *ratesService) Convert(ctx context.Context, from, to, amount string) (*ConversionResult, error) {
	if from == "" || to == "" || amount == "" {
		return nil, apperrors.ErrMissingFields
	}

	url := fmt.Sprintf("%s/%s/pair/%s/%s/%s", s.baseURL, s.apiKey, from, to, amount)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperrors.ErrUpstream
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.ErrUpstream
	}

	return &ConversionResult{StatusCode: resp.StatusCode, Body: body}, nil
}
