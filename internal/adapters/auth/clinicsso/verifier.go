// Package clinicsso verifica tokens contra el SSO de la clínica.
// Se instancia desde main/router cuando hay SSO configurado; sin configurar,
// el middleware corre en modo dev (X-Debug-User-ID).
package clinicsso

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-planboard/internal/platform/httpclient"
	"pet-planboard/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("clinicsso not configured")
	ErrUnauthorized  = errors.New("clinicsso unauthorized")
	ErrTokenEmpty    = errors.New("token is empty")
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Verifier implementa auth.AuthVerifier contra el endpoint de verificación
// del SSO.
type Verifier struct {
	http *httpclient.Client
}

func NewVerifier(cfg Config) (*Verifier, error) {
	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("clinicsso: %w", err)
	}
	if k := strings.TrimSpace(cfg.APIKey); k != "" {
		hc.Headers = map[string]string{"X-Api-Key": k}
	}
	return &Verifier{http: hc}, nil
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.http == nil || v.http.BaseURL == "" {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	var out struct {
		UserID string `json:"user_id"`
		Email  string `json:"email"`
	}

	err := v.http.Post(ctx, "/v1/tokens/verify", map[string]string{"token": token}, &out)
	if err != nil {
		if httpclient.IsStatus(err, 401) || httpclient.IsStatus(err, 403) {
			return auth.Claims{}, ErrUnauthorized
		}
		return auth.Claims{}, fmt.Errorf("clinicsso verify failed: %w", err)
	}

	out.UserID = strings.TrimSpace(out.UserID)
	if out.UserID == "" {
		return auth.Claims{}, errors.New("clinicsso claims missing user id")
	}

	return auth.Claims{
		UserID: out.UserID,
		Email:  strings.TrimSpace(out.Email),
	}, nil
}
