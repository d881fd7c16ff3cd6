// Package notify implementa el Notifier del scanner de recordatorios.
// Gateway empuja el aviso a un servicio de notificaciones (que hace el
// fan-out real a sonido/notificación de sistema); Log es el fallback de dev.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-planboard/internal/domain/events"
	"pet-planboard/internal/platform/httpclient"
	"pet-planboard/internal/platform/logger"
)

var (
	ErrNotConfigured = errors.New("notify gateway not configured")
)

type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: header de la API key. Vacío usa "X-Api-Key".
	APIKeyHeader string
	Timeout      time.Duration
}

type Gateway struct {
	http *httpclient.Client
}

func NewGateway(cfg Config) (*Gateway, error) {
	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("notify: %w", err)
	}

	header := strings.TrimSpace(cfg.APIKeyHeader)
	if header == "" {
		header = "X-Api-Key"
	}
	if k := strings.TrimSpace(cfg.APIKey); k != "" {
		hc.Headers = map[string]string{header: k}
	}

	return &Gateway{http: hc}, nil
}

func (g *Gateway) IsConfigured() bool {
	return g != nil && g.http != nil && g.http.BaseURL != ""
}

type alertRequest struct {
	EventID     string    `json:"event_id"`
	Title       string    `json:"title"`
	ScheduledAt time.Time `json:"scheduled_at"`
	// Channels que debe tocar el gateway. El core no sabe de audio ni de
	// permisos de notificación; eso es del otro lado.
	Channels []string `json:"channels"`
}

// Alert emite un aviso por un evento que entró en la ventana de recordatorio.
// El scanner ya trata cualquier error como best-effort.
func (g *Gateway) Alert(ctx context.Context, ev events.CareEvent) error {
	if !g.IsConfigured() {
		return ErrNotConfigured
	}

	return g.http.Post(ctx, "/v1/alerts", alertRequest{
		EventID:     ev.ID,
		Title:       ev.Title,
		ScheduledAt: ev.ScheduledAt,
		Channels:    []string{"sound", "system"},
	}, nil)
}

// Log es un Notifier que solo loguea; fallback cuando no hay gateway.
type Log struct {
	log logger.Logger
}

func NewLog(log logger.Logger) *Log {
	if log == nil {
		log = logger.Nop()
	}
	return &Log{log: log}
}

func (l *Log) Alert(_ context.Context, ev events.CareEvent) error {
	l.log.Info("reminder", map[string]any{
		"event_id":     ev.ID,
		"title":        ev.Title,
		"scheduled_at": ev.ScheduledAt.Format(time.RFC3339),
	})
	return nil
}
