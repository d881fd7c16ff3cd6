package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"pet-planboard/internal/adapters/eventstore"
	"pet-planboard/internal/adapters/notify"
	"pet-planboard/internal/planboard"
	"pet-planboard/internal/planboard/gesture"
	"pet-planboard/internal/planboard/reminder"
	"pet-planboard/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// boardd es el daemon de sesión del planboard: mantiene el estado de board de
// un usuario contra la API de persistencia y lo expone por HTTP a la capa de
// presentación. Una instancia = una sesión.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boardd",
		Short: "Daemon de sesión del planboard veterinario.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBoard(cmd.Context())
		},
	}

	cmd.Flags().String("api-url", "", "base URL de la API de eventos")
	cmd.Flags().String("user", "", "usuario de la sesión (modo dev)")
	cmd.Flags().String("modality", "", "modalidad de input: pointer o touch")
	_ = viper.BindPFlag("board.api_url", cmd.Flags().Lookup("api-url"))
	_ = viper.BindPFlag("board.user", cmd.Flags().Lookup("user"))
	_ = viper.BindPFlag("board.modality", cmd.Flags().Lookup("modality"))
	return cmd
}

func loadConfig() error {
	viper.SetDefault("board.port", "8090")
	viper.SetDefault("board.modality", string(gesture.ModalityPointer))

	viper.SetConfigName(".planboard")
	viper.SetEnvPrefix("PLANBOARD")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if override := os.Getenv("PLANBOARD_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}
	viper.AddConfigPath("./")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	return nil
}

func runBoard(ctx context.Context) error {
	if err := loadConfig(); err != nil {
		return err
	}
	log := logger.NewFromEnv().With(map[string]any{"component": "boardd"})

	userID := viper.GetString("board.user")
	if userID == "" && viper.GetString("board.token") == "" {
		return errors.New("board.user or board.token required")
	}

	store, err := eventstore.New(eventstore.Options{
		BaseURL: viper.GetString("board.api_url"),
		UserID:  userID,
		Token:   viper.GetString("board.token"),
	})
	if err != nil {
		return err
	}

	board := planboard.NewBoard(store, userID, log)

	refreshCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	err = board.Refresh(refreshCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("initial load: %w", err)
	}

	// El scanner corre toda la sesión; el NotifiedSet muere con el proceso.
	scanner := reminder.NewScanner(board.EventsSnapshot, buildNotifier(log), log)
	go scanner.Run(ctx, reminder.DefaultInterval)

	src := gesture.ForModality(gesture.Modality(viper.GetString("board.modality")))

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	planboard.RegisterRoutes(r, board, src)

	addr := ":" + viper.GetString("board.port")
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting board session", map[string]any{"addr": addr, "user": userID})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// buildNotifier usa el gateway de alertas si está configurado; si no, loguea.
func buildNotifier(log logger.Logger) reminder.Notifier {
	base := viper.GetString("board.notify_url")
	if base == "" {
		return notify.NewLog(log)
	}

	g, err := notify.NewGateway(notify.Config{
		BaseURL: base,
		APIKey:  viper.GetString("board.notify_api_key"),
	})
	if err != nil {
		log.Warn("notify gateway misconfigured, falling back to log", map[string]any{"err": err.Error()})
		return notify.NewLog(log)
	}
	return g
}
