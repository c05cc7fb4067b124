package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/marinalog/ledger/api"
	"github.com/marinalog/ledger/config"
	"github.com/marinalog/ledger/factory"
	"github.com/marinalog/ledger/generic"
	"github.com/spf13/cobra"
)

// ---------------------------------------------------------------------------
// Styles
// ---------------------------------------------------------------------------

const (
	colorNavy    lipgloss.Color = "#1e3a8a"
	colorSky     lipgloss.Color = "#89dceb"
	colorGreen   lipgloss.Color = "#a6e3a1"
	colorRed     lipgloss.Color = "#f38ba8"
	colorYellow  lipgloss.Color = "#f9e2af"
	colorSubtext lipgloss.Color = "#a6adc8"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSky)
	labelStyle = lipgloss.NewStyle().Width(24)
	valueStyle = lipgloss.NewStyle().Width(10).Align(lipgloss.Right).Bold(true)
	unitStyle  = lipgloss.NewStyle().Foreground(colorSubtext).PaddingLeft(1)
	okStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	errStyle   = lipgloss.NewStyle().Foreground(colorRed)
	warnStyle  = lipgloss.NewStyle().Foreground(colorYellow)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorNavy).
			Padding(0, 1)
)

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Print current balances",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		user := a.service.User()
		var b strings.Builder
		b.WriteString(titleStyle.Render(fmt.Sprintf("%s %s", user.Rank, user.Name)))
		b.WriteString("\n")
		for _, item := range api.BalanceItems(a.service.Balances(), a.service.CustomFields()) {
			value := valueStyle
			if item.Value.IsNegative() {
				value = value.Foreground(colorRed)
			}
			b.WriteString("\n")
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
				labelStyle.Render(item.Label),
				value.Render(item.Value.String()),
				unitStyle.Render(string(item.Unit)),
			))
		}
		fmt.Fprintln(cmd.OutOrStdout(), boxStyle.Render(b.String()))
		return nil
	},
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print recorded entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		entries := a.service.History()
		if historyLimit > 0 && historyLimit < len(entries) {
			entries = entries[:historyLimit]
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), unitStyle.Render("No entries"))
			return nil
		}
		out := cmd.OutOrStdout()
		for _, e := range entries {
			line := fmt.Sprintf("%s  %-14s %8s", e.Date, e.Type, e.Quantity)
			if e.TargetBalance != "" {
				line += "  → " + e.TargetBalance
			}
			if e.CustomFieldID != "" {
				line += "  → " + e.CustomFieldID
			}
			if e.Notes != "" {
				line += "  " + unitStyle.Render(e.Notes)
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

var expiringWindow int

var expiringCmd = &cobra.Command{
	Use:   "expiring",
	Short: "Print accruals close to their recovery deadline",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		window := expiringWindow
		if window <= 0 {
			window = a.cfg.Expiry.WindowDays
		}
		entries := a.service.Expiring(generic.Today(), window)
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(fmt.Sprintf("Nothing expires in the next %d days", window)))
			return nil
		}
		for _, e := range entries {
			fmt.Fprintln(cmd.OutOrStdout(), warnStyle.Render(fmt.Sprintf("%s %s %s: recover by %s (%d days)",
				e.Entry.Date, e.Entry.Type, e.Entry.Quantity, e.Deadline, e.DaysLeft)))
		}
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Replay the history and report balances that drifted",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		err = a.service.Check()
		var drift *generic.DriftError
		switch {
		case err == nil:
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Ledger consistent"))
			return nil
		case errors.As(err, &drift):
			for _, key := range drift.Keys {
				fmt.Fprintln(cmd.OutOrStdout(), errStyle.Render(fmt.Sprintf("%s: stored %s, replayed %s",
					key, drift.Actual.Get(key), drift.Expected.Get(key))))
			}
			return err
		default:
			return err
		}
	},
}

var resetConfirmed bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard every entry, field, work log and the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetConfirmed {
			return fmt.Errorf("reset discards the whole ledger: pass --yes to confirm")
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.service.Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Ledger reset"))
		return nil
	},
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective rule set as TOML",
	Long: `Print the rule set in use, as TOML. Save the output, edit it and point
rules.path (or --rules) at it to change rates and quantities.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := flagRules
		if path == "" {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			path = cfg.Rules.Path
		}
		rules, err := factory.LoadRuleSet(path)
		if err != nil {
			return err
		}
		out, err := factory.EncodeRuleSet(rules)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(balancesCmd, historyCmd, expiringCmd, checkCmd, resetCmd, rulesCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Show at most n entries")
	expiringCmd.Flags().IntVar(&expiringWindow, "window", 0, "Days to look ahead (default expiry.window_days)")
	resetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "Confirm the reset")
}
