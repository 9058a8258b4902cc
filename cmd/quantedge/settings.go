package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/quantedge/quantedge/internal/app"
	"github.com/quantedge/quantedge/internal/logger"
	"github.com/quantedge/quantedge/internal/settings"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and edit the stored simulation settings",
	Long: `Commands that operate on the settings record in the configured store,
the same record the server restores on start.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored settings as JSON",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set field=value...",
	Short: "Update fields and apply the result",
	Long: `Update one or more fields of the stored settings, validate the result
and persist it. selectedStocks takes a comma separated list.

  quantedge settings set asset=10 selectedStocks=INFY,TCS`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSettingsSet,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report every problem with the stored settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsValidate,
}

var settingsUniverseCmd = &cobra.Command{
	Use:   "universe",
	Short: "List the selectable instruments",
	Args:  cobra.NoArgs,
	RunE:  runSettingsUniverse,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	settingsCmd.AddCommand(settingsUniverseCmd)
}

// withApp handles common config and store setup and teardown.
func withApp(fn func(ctx context.Context, a *app.App, log *zap.Logger) error) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if log, err = configuredLogger(cfg); err != nil {
		return err
	}
	defer log.Sync()

	ctx := context.Background()
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("opening settings: %w", err)
	}
	defer a.Close()

	return fn(ctx, a, log)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app.App, log *zap.Logger) error {
		s := a.Restore(ctx)
		return printJSON(map[string]any{
			"settings": s,
			"state":    a.Manager().State(),
		})
	})
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	updates := make([]settings.FieldUpdate, 0, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("expected field=value, got %q", arg)
		}
		u, err := settings.ParseFieldUpdate(name, value)
		if err != nil {
			return err
		}
		updates = append(updates, u)
	}

	return withApp(func(ctx context.Context, a *app.App, log *zap.Logger) error {
		m := a.Manager()
		m.Restore(ctx)
		for _, u := range updates {
			m.UpdateField(u)
		}

		saved, err := m.Apply(ctx)
		if err != nil {
			var verr *settings.ValidationError
			if errors.As(err, &verr) {
				return fmt.Errorf("settings not saved: %s", verr.Message)
			}
			return err
		}

		log.Info("settings applied", zap.Int("fields", len(updates)))
		return printJSON(saved)
	})
}

func runSettingsValidate(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app.App, log *zap.Logger) error {
		m := a.Manager()
		m.Restore(ctx)

		failures := m.AllFailures()
		if len(failures) == 0 {
			fmt.Println("Settings are valid.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FIELD\tPROBLEM\t")
		fmt.Fprintln(w, "-----\t-------\t")
		for _, f := range failures {
			fmt.Fprintf(w, "%s\t%s\t\n", f.Field, f.Message)
		}
		w.Flush()

		return fmt.Errorf("%d problem(s) found", len(failures))
	})
}

func runSettingsUniverse(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app.App, log *zap.Logger) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SYMBOL\tNAME\t")
		fmt.Fprintln(w, "------\t----\t")
		for _, inst := range a.Manager().Universe().Instruments() {
			fmt.Fprintf(w, "%s\t%s\t\n", inst.Symbol, inst.Name)
		}
		w.Flush()
		return nil
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
