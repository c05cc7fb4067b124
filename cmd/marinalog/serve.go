package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marinalog/ledger/advisor"
	"github.com/marinalog/ledger/api"
	"github.com/marinalog/ledger/leave"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API, the Prometheus endpoint at /metrics and the
background recovery-deadline check. Stops gracefully on SIGINT/SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP server port (overrides server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	metrics := api.NewMetrics()

	a, err := openApp(cmd.Context(), leave.WithObserver(metrics))
	if err != nil {
		return err
	}
	defer a.close()

	if servePort != 0 {
		a.cfg.Server.Port = servePort
	}
	metrics.SetBalances(a.service.Balances())

	// Advisor is optional; without a key /api/advisor answers 503
	var completer advisor.Completer
	if key := a.cfg.Advisor.ResolveAPIKey(); key != "" {
		completer = advisor.NewGemini(key, a.cfg.Advisor.Model)
	} else {
		log.Printf("[Advisor] No API key in $%s, advisor disabled", a.cfg.Advisor.APIKeyEnv)
	}

	handler := api.NewHandler(a.service, advisor.New(completer, a.cfg.Advisor.Timeout))
	handler.ExpiryWindowDays = a.cfg.Expiry.WindowDays
	router := api.NewRouter(handler, metrics, a.cfg.Server.AllowedOrigins)

	scheduler := api.NewExpiryScheduler(a.service, metrics)
	scheduler.CheckInterval = a.cfg.Expiry.CheckInterval
	scheduler.WindowDays = a.cfg.Expiry.WindowDays
	scheduler.Enabled = a.cfg.Expiry.CheckInterval > 0
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         a.cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: a.cfg.Advisor.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on http://%s", server.Addr)
		log.Printf("[Server] API available at http://%s/api", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}

	log.Println("[Server] Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	log.Println("[Server] Stopped")
	return nil
}
