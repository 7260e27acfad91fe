// stockviz is the command line front end: it renders charts and calculator
// results from the local catalog and converts the JSON catalog into the
// parquet or sqlite stores.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"stockviz/internal/app"
	"stockviz/internal/chart"
	"stockviz/internal/config"
	"stockviz/internal/console"
	"stockviz/internal/domain"
	"stockviz/internal/rpc"
	"stockviz/internal/selection"
	"stockviz/internal/store"
	"stockviz/internal/summary"
	"stockviz/internal/util"
	"stockviz/pkg/stockviz"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "stockviz",
	Short:         "Stock charts and investment calculator",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = app.ConfigPath()
		}
		var err error
		if cfg, err = config.LoadOrDefault(path); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logger = util.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: $STOCKVIZ_CONFIG or config/stockviz.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	chartCmd.Flags().String("ticker", "", "ticker symbol")
	chartCmd.Flags().Int("year", 0, "calendar year")
	chartCmd.Flags().Bool("json", false, "print the chart as JSON")
	chartCmd.Flags().String("grpc", "", "build the chart on a remote server at this gRPC address")

	calcCmd.Flags().String("ticker", "", "ticker symbol")
	calcCmd.Flags().String("start", "", "purchase date (YYYY-MM-DD)")
	calcCmd.Flags().String("end", "", "valuation date (YYYY-MM-DD)")
	calcCmd.Flags().Float64("amount", 1000, "amount invested in USD")
	calcCmd.Flags().Bool("json", false, "print the result as JSON")

	importCmd.Flags().String("to", config.SourceParquet, "target store: parquet or sqlite")

	statusCmd.Flags().String("server", "", "stockviz-server base URL (default: from config)")

	rootCmd.AddCommand(versionCmd, chartCmd, calcCmd, datesCmd, tileCmd, importCmd, statusCmd)
}

func openCharts(ctx context.Context) (*chart.Builder, error) {
	return app.OpenCharts(ctx, cfg, logger)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// failure prefixes err with its taxonomy tag.
func failure(err error) error {
	return fmt.Errorf("[%s] %w", domain.Code(err), err)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stockviz %s (%s)\n", version, commit)
	},
}

// --- Chart Command ---

var chartCmd = &cobra.Command{
	Use:   "chart <regression|candlestick|pie|treemap>",
	Short: "Build a chart for a selection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker, _ := cmd.Flags().GetString("ticker")
		year, _ := cmd.Flags().GetInt("year")
		asJSON, _ := cmd.Flags().GetBool("json")
		addr, _ := cmd.Flags().GetString("grpc")

		sel := selection.Selection{}
		events := []selection.Event{
			{Type: selection.ChartChanged, Value: args[0]},
			{Type: selection.TickerChanged, Value: ticker},
		}
		if year != 0 {
			events = append(events, selection.Event{Type: selection.YearChanged, Value: fmt.Sprint(year)})
		}
		for _, e := range events {
			var err error
			if sel, err = selection.Apply(sel, e); err != nil {
				return failure(err)
			}
		}

		if addr != "" {
			return remoteChart(cmd.Context(), addr, sel)
		}

		charts, err := openCharts(cmd.Context())
		if err != nil {
			return err
		}
		res, err := charts.Build(sel)
		if err != nil {
			return failure(err)
		}
		if asJSON {
			return printJSON(res)
		}
		fmt.Print(console.RenderChart(res))
		return nil
	},
}

func remoteChart(ctx context.Context, addr string, sel selection.Selection) error {
	client, err := rpc.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	res, err := client.BuildChart(ctx, sel)
	if err != nil {
		return err
	}
	return printJSON(res)
}

// --- Calculator Command ---

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Compute what an investment would be worth",
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker, _ := cmd.Flags().GetString("ticker")
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		amount, _ := cmd.Flags().GetFloat64("amount")
		asJSON, _ := cmd.Flags().GetBool("json")

		sel := selection.Selection{}
		for _, e := range []selection.Event{
			{Type: selection.TickerChanged, Value: ticker},
			{Type: selection.StartDateChanged, Value: start},
			{Type: selection.EndDateChanged, Value: end},
		} {
			var err error
			if sel, err = selection.Apply(sel, e); err != nil {
				return failure(err)
			}
		}

		charts, err := openCharts(cmd.Context())
		if err != nil {
			return err
		}
		res, err := charts.Calculate(selection.CalculatorInput{
			Ticker:    sel.Ticker,
			StartDate: sel.StartDate,
			EndDate:   sel.EndDate,
			Amount:    amount,
		})
		if err != nil {
			return failure(err)
		}
		if asJSON {
			return printJSON(map[string]any{"result": res, "display": summary.FormatReturn(res)})
		}
		fmt.Print(console.RenderReturn(res))
		return nil
	},
}

// --- Dates Command ---

var datesCmd = &cobra.Command{
	Use:   "dates <ticker>",
	Short: "List the trading days of a ticker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		charts, err := openCharts(cmd.Context())
		if err != nil {
			return err
		}
		dates, err := charts.Dates(domain.NormalizeTicker(args[0]))
		if err != nil {
			return failure(err)
		}
		for _, d := range dates {
			fmt.Println(d)
		}
		return nil
	},
}

// --- Tile Command ---

var tileCmd = &cobra.Command{
	Use:   "tile <year> <ticker>",
	Short: "Show the treemap summary of one ticker",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := selection.Apply(selection.Selection{}, selection.Event{Type: selection.YearChanged, Value: args[0]})
		if err != nil {
			return failure(err)
		}
		charts, err := openCharts(cmd.Context())
		if err != nil {
			return err
		}
		tile, err := charts.Tile(sel.Year, args[1])
		if err != nil {
			return failure(err)
		}
		d := summary.FormatTile(sel.Year, tile)
		fmt.Println(d.Heading)
		fmt.Printf("  Market Cap:     %s\n", d.MarketCap)
		fmt.Printf("  First Close:    %s\n", d.FirstClose)
		fmt.Printf("  Last Close:     %s\n", d.LastClose)
		fmt.Printf("  Percent Change: %s\n", d.PercentChange)
		fmt.Printf("  News:           %s\n", d.NewsURL)
		return nil
	},
}

// --- Import Command ---

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy the JSON catalog into the parquet or sqlite store",
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _ := cmd.Flags().GetString("to")
		ctx := cmd.Context()

		src := store.NewJSONSource(cfg.Storage.CatalogFile, "")
		c, err := src.ReadCatalog(ctx)
		if err != nil {
			return err
		}

		w, closer, err := store.OpenWriter(cfg, target)
		if err != nil {
			return err
		}
		defer closer.Close()

		start := time.Now()
		if err := w.WriteCatalog(ctx, c); err != nil {
			return fmt.Errorf("writing %s store: %w", target, err)
		}
		logger.Info("catalog imported",
			"from", cfg.Storage.CatalogFile,
			"to", target,
			"tickers", len(c.Tickers()),
			"records", c.Len(),
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
		return nil
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stockviz-server status",
	RunE: func(cmd *cobra.Command, args []string) error {
		base, _ := cmd.Flags().GetString("server")
		if base == "" {
			base = "http://" + cfg.HTTPAddr()
		}
		client := stockviz.NewClient(base)
		ctx := cmd.Context()

		if err := client.Health(ctx); err != nil {
			return fmt.Errorf("server %s unhealthy: %w", base, err)
		}
		m, err := client.Manifest(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("server:  %s (ok)\n", base)
		fmt.Printf("tickers: %d\n", len(m.Stocks))
		if len(m.Years) > 0 {
			fmt.Printf("years:   %d-%d\n", m.Years[0], m.Years[len(m.Years)-1])
		}
		fmt.Printf("pie:     %d-%d\n", m.PieYears.From, m.PieYears.To)
		return nil
	},
}
