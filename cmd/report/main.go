package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pnl-dashboard/internal/config"
	"pnl-dashboard/internal/domain"
	"pnl-dashboard/internal/normalization"
	"pnl-dashboard/internal/persist"
	"pnl-dashboard/internal/reporting"
	"pnl-dashboard/internal/storage/backend"
)

func main() {
	format := flag.String("format", "md", "Output format: md, csv or yaml")
	output := flag.String("output", "", "Output file (default stdout)")
	plType := flag.String("pl-type", string(domain.PLTypeNet), "P&L type: NET or GROSS")
	capital := flag.Float64("capital", domain.DefaultCapital, "Capital for CSV inputs")
	window := flag.Int("window", reporting.DefaultWindowWeeks, "Best/worst window in weeks")
	dateCol := flag.Int("date-col", -1, "Date column index (auto-detect when unset)")
	plCol := flag.Int("pl-col", -1, "P&L column index (auto-detect when unset)")
	chargesCol := flag.Int("charges-col", -1, "Charges column index")
	lotsCol := flag.Int("lots-col", -1, "Lots column index")
	stored := flag.Bool("stored", false, "Report on strategies in the configured storage instead of CSV files")
	configPath := flag.String("config", envOr("PNL_CONFIG", "config.yaml"), "Config file used with --stored")
	flag.Parse()

	pt := domain.PLType(strings.ToUpper(*plType))
	if !pt.IsValid() {
		fmt.Fprintf(os.Stderr, "Error: unknown --pl-type %q\n", *plType)
		os.Exit(1)
	}

	var (
		inputs []reporting.Input
		err    error
	)
	if *stored {
		inputs, err = storedInputs(context.Background(), *configPath)
	} else {
		if flag.NArg() == 0 {
			fmt.Fprintln(os.Stderr, "Error: at least one CSV file is required")
			fmt.Fprintln(os.Stderr, "Usage: report [flags] trades.csv [more.csv ...]")
			fmt.Fprintln(os.Stderr, "Use --stored to report on saved strategies instead")
			os.Exit(1)
		}
		mapping := flagMapping(*dateCol, *plCol, *chargesCol, *lotsCol)
		inputs, err = csvInputs(flag.Args(), mapping, *capital)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	report, err := reporting.NewGenerator(pt, *window).Generate(inputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	var content string
	switch strings.ToLower(*format) {
	case "md", "markdown":
		content = reporting.RenderMarkdown(report)
	case "csv":
		content, err = reporting.RenderCSV(report.StrategyMetrics)
	case "yaml", "yml":
		content, err = reporting.RenderYAML(report)
	default:
		err = fmt.Errorf("unknown --format %q", *format)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
		os.Exit(1)
	}

	if *output == "" {
		fmt.Print(content)
		return
	}
	if dir := filepath.Dir(*output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
			os.Exit(1)
		}
	}
	if err := os.WriteFile(*output, []byte(content), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("Generated: %s\n", *output)
}

// flagMapping returns nil when neither mandatory column is given, selecting auto-detection.
func flagMapping(date, pl, charges, lots int) *domain.ColumnMapping {
	if date < 0 && pl < 0 {
		return nil
	}
	m := domain.ColumnMapping{}
	if date >= 0 {
		m.Date = domain.Column(date)
	}
	if pl >= 0 {
		m.PL = domain.Column(pl)
	}
	if charges >= 0 {
		m.Charges = domain.Column(charges)
	}
	if lots >= 0 {
		m.Lots = domain.Column(lots)
	}
	return &m
}

func csvInputs(paths []string, mapping *domain.ColumnMapping, capital float64) ([]reporting.Input, error) {
	inputs := make([]reporting.Input, 0, len(paths))
	for _, path := range paths {
		rows, err := readCSVFile(path)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("%s: %w", path, normalization.ErrNoData)
		}

		m := mapping
		if m == nil {
			detected := normalization.DetectColumns(rows[0])
			m = &detected
		}
		res, err := normalization.Normalize(rows, *m)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		inputs = append(inputs, reporting.Input{
			Name:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Trades:  res.Trades,
			Capital: capital,
			Rows:    res.Total,
			Skipped: res.Skipped,
		})
	}
	return inputs, nil
}

func readCSVFile(path string) ([][]domain.Cell, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := normalization.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func storedInputs(ctx context.Context, path string) ([]reporting.Input, error) {
	cfg, err := config.Load(path, os.Getenv("PNL_ENV_ONLY") == "1")
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	kv, err := backend.Open(ctx, cfg.Storage, nil)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	defer kv.Close()

	codec, err := persist.NewCodec(cfg.Storage.Codec)
	if err != nil {
		return nil, err
	}
	state, err := persist.NewRepository(kv, codec, persist.Options{}).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if len(state.Strategies) == 0 {
		return nil, errors.New("no stored strategies")
	}

	inputs := make([]reporting.Input, 0, len(state.Strategies))
	for _, st := range state.Strategies {
		inputs = append(inputs, reporting.Input{
			Name:    st.Name,
			Trades:  st.AllTrades,
			Capital: st.Capital,
		})
	}
	return inputs, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
