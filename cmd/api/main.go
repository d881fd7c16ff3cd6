package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"pet-planboard/internal/adapters/auth/clinicsso"
	"pet-planboard/internal/adapters/storage/postgres"
	"pet-planboard/internal/platform/logger"
	"pet-planboard/internal/ports/auth"
	"pet-planboard/internal/router"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "planboard-api",
		Short: "API de persistencia de eventos y mascotas del planboard.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe()
		},
	}

	cmd.Flags().String("port", "", "puerto de escucha (default 8080)")
	_ = viper.BindPFlag("api.port", cmd.Flags().Lookup("port"))
	return cmd
}

// loadConfig arma la config con viper: flags > env (PLANBOARD_*) > archivo
// .planboard.yaml > defaults.
func loadConfig() error {
	viper.SetDefault("api.port", "8080")
	viper.SetDefault("api.attachments_dir", "./data/attachments")

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

func runServe() error {
	if err := loadConfig(); err != nil {
		return err
	}
	log := logger.NewFromEnv().With(map[string]any{"component": "api"})

	var db *sql.DB
	if dsn := viper.GetString("api.db_dsn"); dsn != "" {
		var err error
		db, err = postgres.Open(dsn)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()
		log.Info("using postgres storage", nil)
	} else {
		log.Info("no db_dsn set, using in-memory storage", nil)
	}

	var verifier auth.AuthVerifier
	if base := viper.GetString("api.sso_url"); base != "" {
		v, err := clinicsso.NewVerifier(clinicsso.Config{
			BaseURL: base,
			APIKey:  viper.GetString("api.sso_api_key"),
		})
		if err != nil {
			return fmt.Errorf("building sso verifier: %w", err)
		}
		verifier = v
	} else {
		log.Warn("no sso_url set, running in dev auth mode", nil)
	}

	h := router.NewRouter(router.Options{
		AuthVerifier:   verifier,
		DB:             db,
		AttachmentsDir: viper.GetString("api.attachments_dir"),
	})

	addr := ":" + viper.GetString("api.port")
	srv := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
