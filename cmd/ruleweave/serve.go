package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/ruleweave/ruleweave/internal/logging"
	"github.com/ruleweave/ruleweave/internal/server"
)

type serveConfig struct {
	listenAddr     string
	allowedOrigins []string
}

const defaultServeAddr = ":8080"

func newServeCmd() *cobra.Command {
	cfg := &serveConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP evaluation service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.listenAddr, "listen-addr", defaultServeAddr, "HTTP listen address")
	cmd.Flags().StringSliceVar(&cfg.allowedOrigins, "allowed-origins", []string{"*"}, "CORS allowed origins")

	return cmd
}

func runServe(cfg *serveConfig) error {
	logger := logging.Setup("ruleweave", version, logFormat, nil)

	router := server.NewRouter(server.Config{
		AllowedOrigins: cfg.allowedOrigins,
		Logger:         logger,
	})

	logger.Info("ruleweave serve starting", "addr", cfg.listenAddr, "commit", commit)
	if err := http.ListenAndServe(cfg.listenAddr, router); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
