package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"PerpScout/internal/di"
	"PerpScout/internal/domain/models"
	"PerpScout/pkg/config"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath, envFile string

	root := &cobra.Command{
		Use:          "perpscout",
		Short:        "Futures screener with sentiment scoring and AI trade plans",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "config file path")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, auto-scan and the Kafka signal consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}

	var asJSON bool
	scan := &cobra.Command{
		Use:   "scan",
		Short: "Run one scan cycle and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context(), configPath, asJSON, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	scan.Flags().BoolVar(&asJSON, "json", false, "print the raw scan result as JSON")

	root.AddCommand(serve, scan)
	root.RunE = serve.RunE
	return root
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	app, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}
	return app.Run(ctx)
}

func runScan(ctx context.Context, configPath string, asJSON bool, out, errOut io.Writer) error {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	app, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := app.Scans().Scan(ctx, func(status string) {
		if status != "" {
			fmt.Fprintln(errOut, status)
		}
	})
	if err != nil {
		return errors.New(models.FailureMessage(err))
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printScan(out, res)
	return nil
}

func printScan(out io.Writer, res *models.ScanResult) {
	ref := res.Snapshot.Reference
	fmt.Fprintf(out, "Trend: %s   %s $%s (%s%%)\n\n", res.Snapshot.Trend, ref.Symbol, ref.PriceDisplay, ref.ChangeDisplay)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ASSET\tSCORE\tSENTIMENT")
	for _, s := range res.Sentiment {
		fmt.Fprintf(w, "%s\t%.2f\t%s\n", s.Asset, s.Score, s.Status)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "SYMBOL\tPRICE\tCHANGE %\tVOLUME\tFUNDING")
	for _, c := range res.Snapshot.Candidates {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t$%s\t%.4f%%\n",
			c.Symbol, humanize.CommafWithDigits(c.LastPrice, 6), c.PriceChangePercent,
			humanize.Comma(int64(c.QuoteVolume)), c.FundingRate*100)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "ID\tSIDE\tENTRY\tTP\tSL\tGRID")
	for _, r := range res.Recommendations {
		grid := ""
		for i, g := range r.GridLevels {
			if i > 0 {
				grid += " / "
			}
			grid += humanize.CommafWithDigits(g.Price, 6) + " (" + g.Size + ")"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Recommendation,
			humanize.CommafWithDigits(r.EntryPrice, 6),
			humanize.CommafWithDigits(r.TakeProfit, 6),
			humanize.CommafWithDigits(r.StopLoss, 6),
			grid)
	}
	w.Flush()

	for _, r := range res.Recommendations {
		fmt.Fprintf(out, "\n%s: %s\n", r.Pair, r.Justification)
	}
}
