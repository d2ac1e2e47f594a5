package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"

	"sejoli-paypal-gateway/internal/client"
	"sejoli-paypal-gateway/internal/repository"
)

// ErrNoToken means PayPal did not hand us a bearer token. The current
// request must abort; renewal is never retried inline.
var ErrNoToken = errors.New("no paypal access token")

const tokenTTL = time.Hour

// TokenCache hands out the cached bearer token for one environment and
// renews it through the OAuth client-credentials grant when expired.
// Concurrent renewals race benignly: last writer wins, tokens are
// fungible within their validity window.
type TokenCache interface {
	GetOrRenew(ctx context.Context) (string, error)
}

type tokenCacheImpl struct {
	paypalClient client.PaypalClient
	tokenRepo    repository.TokenRepository
	environment  string
	now          func() time.Time
	logger       *log.Logger
}

func NewTokenCache(paypalClient client.PaypalClient, tokenRepo repository.TokenRepository, environment string) TokenCache {
	return &tokenCacheImpl{
		paypalClient: paypalClient,
		tokenRepo:    tokenRepo,
		environment:  environment,
		now:          time.Now,
		logger:       log.New("token-cache"),
	}
}

func (s *tokenCacheImpl) GetOrRenew(ctx context.Context) (string, error) {
	state, err := s.tokenRepo.Get(ctx, s.environment)
	if err != nil {
		return "", fmt.Errorf("load token state: %w", err)
	}

	if state != nil && state.AccessToken != "" && state.ExpiresAt.After(s.now()) {
		return state.AccessToken, nil
	}

	token, err := s.paypalClient.RequestAccessToken(ctx)
	if err != nil {
		s.logger.Errorf("token renewal failed for %s: %v", s.environment, err)
		return "", fmt.Errorf("%w: %v", ErrNoToken, err)
	}
	if token == "" {
		s.logger.Errorf("token response carried no access_token for %s", s.environment)
		return "", ErrNoToken
	}

	if err := s.tokenRepo.Save(ctx, s.environment, token, s.now().Add(tokenTTL)); err != nil {
		return "", fmt.Errorf("save token state: %w", err)
	}

	return token, nil
}
