package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mindbridge.app/companion/internal/api"
	"mindbridge.app/companion/internal/auth"
	"mindbridge.app/companion/internal/config"
	"mindbridge.app/companion/internal/core"
	"mindbridge.app/companion/internal/logging"
	"mindbridge.app/companion/internal/resources"
	"mindbridge.app/companion/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "mindbridge",
		Short:        "MindBridge mental health companion service",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newResourcesCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func newResourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "Print the resources directory and emergency contacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printDirectory(cmd.OutOrStdout(), resources.Catalog())
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	logger.Debug().Msg("Service starting in DEBUG mode")

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbStore.Close()

	// Initialize LLM service
	llmService, err := core.NewLLMService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	if err != nil {
		return err
	}
	defer llmService.Close()

	chatService := core.NewChatService(llmService, core.GenerationSettings{
		MaxOutputTokens: cfg.ChatMaxOutputTokens,
		Temperature:     cfg.ChatTemperature,
		IdleTTL:         cfg.ConversationIdleTTL,
	}, logger)

	identity := auth.NewLocalProvider(dbStore)
	registrationService := core.NewRegistrationService(identity, dbStore, logger)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	apiHandler := api.NewAPIHandler(chatService, registrationService, identity, tokens, dbStore)
	router := api.NewRouter(apiHandler, api.RouterOptions{
		Logger:         logger,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		TrustProxy:     cfg.TrustProxyHeaders,
	})

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	// No WriteTimeout: a chat reply is awaited for as long as the model takes.
	srv := &http.Server{
		Addr:        serverAddr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", serverAddr).Msg("Starting server. Press Ctrl+C to quit.")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("could not listen on %s: %w", serverAddr, err)
		}
		return nil
	case <-quit.Done():
	}
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info().Msg("Server exiting gracefully")
	return nil
}

func printDirectory(w io.Writer, dir resources.Directory) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n%s\n\n", dir.Title, dir.Intro)
	fmt.Fprintln(tw, "CATEGORY\tTITLE\tTYPE\tDETAIL")
	for _, r := range dir.Resources {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Category, r.Title, r.Type, r.Detail())
	}
	fmt.Fprintf(tw, "\n%s\n%s\n", dir.EmergencyTitle, dir.EmergencyIntro)
	for _, c := range dir.EmergencyContacts {
		fmt.Fprintf(tw, "%s\t%s\tAvailable %s\n", c.Name, c.Number, c.Available)
	}
	fmt.Fprintf(tw, "\nDisclaimer: %s\n", dir.Disclaimer)
	return tw.Flush()
}
