package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/mercator-lab/ohlcv-fetch/internal/logger"
	"github.com/mercator-lab/ohlcv-fetch/pkg/marketdata"
	"github.com/mercator-lab/ohlcv-fetch/pkg/marketdata/provider"
	"github.com/mercator-lab/ohlcv-fetch/pkg/marketdata/writer"
)

const separator = "============================================================"

// downloadAction validates arguments, resolves the asset selection, and
// runs the batch download. Date validation happens before any network
// activity; a bad date aborts the whole run.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	startDate, err := marketdata.ParseDate(cmd.String("start"))
	if err != nil {
		return err
	}

	endDate, err := marketdata.ParseDate(cmd.String("end"))
	if err != nil {
		return err
	}

	assets, err := resolveAssets(cmd.StringSlice("asset"))
	if err != nil {
		return err
	}

	routes := marketdata.DefaultRoutes()
	if routesPath := cmd.String("routes"); routesPath != "" {
		routes, err = marketdata.LoadRoutes(routesPath)
		if err != nil {
			return err
		}
	}

	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	client, err := marketdata.NewClient(marketdata.ClientConfig{
		Format:        marketdata.WriterFormat(cmd.String("format")),
		DataPath:      cmd.String("data"),
		Routes:        routes,
		PolygonAPIKey: os.Getenv("POLYGON_API_KEY"),
	}, log, progressPrinter())
	if err != nil {
		return err
	}

	fmt.Println(separator)
	fmt.Println("OHLCV Data Downloader")
	fmt.Printf("Period: %s to %s\n", cmd.String("start"), cmd.String("end"))
	fmt.Printf("Assets: %s\n", joinAssets(assets))
	fmt.Println(separator)

	summary := client.DownloadAll(ctx, assets, startDate, endDate)

	fmt.Println(separator)
	fmt.Printf("Download complete: %s\n", summary)
	fmt.Println(separator)

	if !summary.AllSucceeded() {
		return fmt.Errorf("%d of %d assets failed", summary.Total-summary.Succeeded, summary.Total)
	}

	return nil
}

// providersAction lists the supported providers, optionally with their
// download config schemas.
func providersAction(_ context.Context, cmd *cli.Command) error {
	for _, name := range marketdata.GetSupportedProviders() {
		info, err := marketdata.GetProviderInfo(name)
		if err != nil {
			return err
		}

		auth := "no auth"
		if info.RequiresAuth {
			auth = "requires auth"
		}

		fmt.Printf("%s (%s, %s): %s\n", info.Name, info.DisplayName, auth, info.Description)

		if cmd.Bool("schema") {
			schema, err := marketdata.GetDownloadConfigSchema(name)
			if err != nil {
				return err
			}

			fmt.Println(schema)
		}
	}

	return nil
}

// statsAction prints row count and date range of a Parquet export.
func statsAction(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: stats <file.parquet>")
	}

	stats, err := writer.ReadParquetStats(path)
	if err != nil {
		return err
	}

	fmt.Printf("Total rows: %d\n", stats.TotalRows)
	fmt.Printf("Date range: %s to %s\n",
		stats.StartTime.Format("2006-01-02"), stats.EndTime.Format("2006-01-02"))

	return nil
}

// resolveAssets maps the repeatable --asset flag to the validated asset
// list, defaulting to all supported assets in canonical order.
func resolveAssets(names []string) ([]marketdata.Asset, error) {
	if len(names) == 0 {
		return marketdata.SupportedAssets(), nil
	}

	assets := make([]marketdata.Asset, 0, len(names))

	for _, name := range names {
		asset, err := marketdata.ParseAsset(name)
		if err != nil {
			return nil, err
		}

		assets = append(assets, asset)
	}

	return assets, nil
}

// progressPrinter adapts provider progress callbacks to a terminal
// progress bar, starting a fresh bar whenever the label changes.
func progressPrinter() provider.OnDownloadProgress {
	var (
		bar   *progressbar.ProgressBar
		label string
	)

	return func(current float64, total float64, message string) {
		if bar == nil || message != label {
			label = message
			bar = progressbar.NewOptions(int(total),
				progressbar.OptionSetDescription(message),
				progressbar.OptionShowCount(),
			)
		}

		bar.Set(int(current))
	}
}

func joinAssets(assets []marketdata.Asset) string {
	names := make([]string, len(assets))
	for i, a := range assets {
		names[i] = string(a)
	}

	return strings.Join(names, ", ")
}

func main() {
	cmd := &cli.Command{
		Name:  "download",
		Usage: "Download daily OHLCV history for btcusdt, ethusdt and xauusd",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "asset",
				Aliases: []string{"a"},
				Usage:   "Asset to download (repeatable). Omit to download all supported assets.",
			},
			&cli.StringFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
				Value:   marketdata.DefaultStartDate,
			},
			&cli.StringFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now().Format(marketdata.DateLayout),
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (csv or parquet)",
				Value:   string(marketdata.FormatCSV),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Output directory",
				Value:   ".",
			},
			&cli.StringFlag{
				Name:  "routes",
				Usage: "Path to a YAML file overriding the asset routing table",
			},
		},
		Action: downloadAction,
		Commands: []*cli.Command{
			{
				Name:  "providers",
				Usage: "List supported market data providers",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "schema",
						Usage: "Also print each provider's download config schema",
					},
				},
				Action: providersAction,
			},
			{
				Name:      "stats",
				Usage:     "Print statistics for a Parquet export",
				ArgsUsage: "<file.parquet>",
				Action:    statsAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
