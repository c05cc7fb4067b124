/*
main.go - Application entry point

PURPOSE:
  The marinalog command. Starts the HTTP server and offers a few direct
  commands on the same ledger (balances, history, check, reset).
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (file, then MARINALOG_* environment)
  2. Open the store (SQLite, or memory with --ephemeral)
  3. Load the rule set (built-in, or TOML from rules.path)
  4. Build the ledger service
  5. Run the command

COMMANDS:
  serve       HTTP API with graceful shutdown
  balances    Print current balances
  history     Print recorded entries
  expiring    Print accruals close to their recovery deadline
  check       Replay the history and report drift
  reset       Back to the fresh-install state
  rules       Print the effective rule set as TOML

GLOBAL FLAGS:
  --db         SQLite database path (overrides database.path)
  --rules      Rule set TOML (overrides rules.path)
  --ephemeral  Keep everything in memory

EXAMPLES:
  # Run with the configured database
  marinalog serve

  # Try things out without touching the database
  marinalog serve --ephemeral --port 3000

  # Custom rules
  marinalog --rules ./rules.toml balances

ENVIRONMENT:
  MARINALOG_CONFIG    Config file path (default ~/.config/marinalog/config.toml)
  MARINALOG_*         Override any key, e.g. MARINALOG_SERVER_PORT
  GEMINI_API_KEY      Advisor key (name set by advisor.api_key_env)

SEE ALSO:
  - config/config.go: Configuration keys and defaults
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/marinalog/ledger/config"
	"github.com/marinalog/ledger/factory"
	"github.com/marinalog/ledger/leave"
	"github.com/marinalog/ledger/store/memory"
	"github.com/marinalog/ledger/store/sqlite"
	"github.com/spf13/cobra"
)

var (
	flagDB        string
	flagRules     string
	flagEphemeral bool
)

var rootCmd = &cobra.Command{
	Use:   "marinalog",
	Short: "Leave and overtime ledger for military personnel",
	Long: `marinalog keeps the leave, sick-day, overtime and compensatory-rest
balances of one person, together with the history of entries that produced
them. Every entry can be deleted and its effect is reversed exactly.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (overrides database.path)")
	rootCmd.PersistentFlags().StringVar(&flagRules, "rules", "", "Rule set TOML file (overrides rules.path)")
	rootCmd.PersistentFlags().BoolVar(&flagEphemeral, "ephemeral", false, "Keep the ledger in memory only")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// =============================================================================
// WIRING
// =============================================================================

// app is everything a command needs.
type app struct {
	cfg     config.Config
	service *leave.Service
	close   func() error
}

func openApp(ctx context.Context, opts ...leave.Option) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagDB != "" {
		cfg.Database.Path = flagDB
	}
	if flagRules != "" {
		cfg.Rules.Path = flagRules
	}

	rules, err := factory.LoadRuleSet(cfg.Rules.Path)
	if err != nil {
		return nil, err
	}

	var (
		store   leave.Store
		closeFn = func() error { return nil }
	)
	if flagEphemeral {
		store = memory.New()
		log.Println("[Store] Ephemeral mode, nothing will be saved")
	} else {
		if dir := filepath.Dir(cfg.Database.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data directory: %w", err)
			}
		}
		db, err := sqlite.New(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		store = db
		closeFn = db.Close
	}

	opts = append([]leave.Option{leave.WithFieldDeleteGuard(cfg.Ledger.BlockInUseFieldDelete)}, opts...)
	svc, err := leave.NewService(ctx, store, rules, opts...)
	if err != nil {
		closeFn()
		return nil, err
	}
	return &app{cfg: cfg, service: svc, close: closeFn}, nil
}
