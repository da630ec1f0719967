package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mochi/internal/config"
	"mochi/internal/core"
	"mochi/internal/log"
	"mochi/internal/services"
	"mochi/internal/storage"
	"mochi/internal/undo"
)

type app struct {
	cfg *config.Config
	svc *services.LedgerService
}

func main() {
	_ = godotenv.Load()

	// The CLI logs errors only; command output goes to stdout
	log.SetDefault(log.New(log.Config{
		Level:     slog.LevelError,
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}),
	}))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open ledger:", err)
		os.Exit(1)
	}
	defer repo.Close()

	a := &app{
		cfg: cfg,
		svc: services.NewLedgerService(repo, undo.NewManager(), nil, services.DefaultGracePeriods()),
	}
	defer a.svc.Close()

	if err := setupCommands(a).Execute(); err != nil {
		os.Exit(1)
	}
}

func setupCommands(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mochi",
		Short:         "A spend ledger for quick expense logging",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	logCmd := &cobra.Command{
		Use:   "log <amount> [note]",
		Short: "Log an expense",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := core.ParseDecimalToCents(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[0])
			}
			var note string
			if len(args) > 1 {
				note = args[1]
			}

			entry, err := a.svc.CreateEntry(cmd.Context(), time.Now(), core.Money{Cents: cents}, note, uuid.Nil)
			if err != nil {
				return err
			}
			fmt.Printf("Logged %s", entry.Amount.Format(a.cfg.CurrencySymbol))
			if entry.Note != "" {
				fmt.Printf(" (%s)", entry.Note)
			}
			fmt.Println()
			return nil
		},
	}

	todayCmd := &cobra.Command{
		Use:   "today",
		Short: "Show today's total against your usual spending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.summarize(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Today: %s\n", summary.TodayTotal.Format(a.cfg.CurrencySymbol))
			fmt.Printf("Usual: %s (%s)\n", summary.RollingAverage.Format(a.cfg.CurrencySymbol), summary.Band)
			return nil
		},
	}

	weekCmd := &cobra.Command{
		Use:   "week",
		Short: "Show this week's total and peak day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.summarize(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Week:    %s\n", summary.Week.Total.Format(a.cfg.CurrencySymbol))
			fmt.Printf("Per day: %s\n", summary.Week.DailyAverage.Format(a.cfg.CurrencySymbol))
			if summary.HasPeak {
				fmt.Printf("Peak:    %s (%s)\n", summary.PeakWeekday.Weekday, summary.PeakWeekday.Total.Format(a.cfg.CurrencySymbol))
			}
			return nil
		},
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show the ledger grouped by day, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := a.svc.History(cmd.Context())
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				fmt.Println("No entries logged yet.")
				return nil
			}
			for _, g := range groups {
				fmt.Printf("%s  %s\n", g.Day, g.Total.Format(a.cfg.CurrencySymbol))
				for _, e := range g.Entries {
					line := "  " + e.Amount.Format(a.cfg.CurrencySymbol)
					if e.Note != "" {
						line += "  " + e.Note
					}
					fmt.Println(line)
				}
			}
			return nil
		},
	}

	dayStartCmd := &cobra.Command{
		Use:   "day-start [hour] [minute]",
		Short: "Show or set when a ledger day begins",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cfg, err := a.svc.DayStart(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Printf("Day starts at %02d:%02d\n", cfg.Hour, cfg.Minute)
				return nil
			}

			hour, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid hour %q", args[0])
			}
			minute := 0
			if len(args) > 1 {
				if minute, err = strconv.Atoi(args[1]); err != nil {
					return fmt.Errorf("invalid minute %q", args[1])
				}
			}

			cfg := core.DayStartConfig{Hour: hour, Minute: minute}.Normalize()
			if err := a.svc.SetDayStart(cmd.Context(), cfg); err != nil {
				return err
			}
			fmt.Printf("Day starts at %02d:%02d\n", cfg.Hour, cfg.Minute)
			return nil
		},
	}

	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(dayStartCmd)

	return rootCmd
}

func (a *app) summarize(ctx context.Context) (services.Summary, error) {
	return a.svc.Summarize(ctx, time.Now(), a.cfg.WeekStart, a.cfg.RollingWindowDays)
}
