package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theflipapp/intake/internal/catalog"
	"github.com/theflipapp/intake/internal/logger"
	"github.com/theflipapp/intake/internal/parse"
)

// newEvaluateCommand runs the classifier over a CSV of historical messages
// and writes per-message verdicts to an output CSV for review in a
// spreadsheet. No database is involved: assets come from a CSV fixture and
// record lookups always miss.
func newEvaluateCommand() *cobra.Command {
	var (
		assetsPath   string
		inputPath    string
		outputPath   string
		keywordsPath string
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate the classifier against historical messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Init("warn", "text")
			return runEvaluate(cmd.Context(), assetsPath, inputPath, outputPath, keywordsPath)
		},
	}
	cmd.Flags().StringVar(&assetsPath, "assets", "assets.csv", "assets fixture CSV (slug,display_name)")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "messages.csv", "input messages CSV")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "classification_results.csv", "output CSV path")
	cmd.Flags().StringVar(&keywordsPath, "keywords", "", "optional YAML keyword override file")
	return cmd
}

func runEvaluate(ctx context.Context, assetsPath, inputPath, outputPath, keywordsPath string) error {
	assets, err := loadAssetsCSV(assetsPath)
	if err != nil {
		return err
	}

	kw := parse.DefaultKeywords()
	if keywordsPath != "" {
		if kw, err = parse.LoadKeywords(keywordsPath); err != nil {
			return err
		}
	}

	cache := catalog.NewCache(logger.L, catalog.NewStaticStore(assets))
	parser := parse.NewParser(logger.L, parse.NewLinks(""), parse.NewClassifier(kw), cache, missLookup{}, missLookup{})

	rows, err := classifyMessagesCSV(ctx, parser, inputPath)
	if err != nil {
		return err
	}
	if err := writeResultsCSV(outputPath, rows); err != nil {
		return err
	}

	fmt.Printf("Wrote %d classifications to %s\n", len(rows), outputPath)
	return nil
}

func loadAssetsCSV(path string) ([]catalog.Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open assets fixture: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read assets fixture: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("assets fixture %s is empty", path)
	}

	cols := columnIndex(records[0])
	var assets []catalog.Asset
	for _, rec := range records[1:] {
		slug := field(rec, cols, "slug")
		name := field(rec, cols, "display_name")
		if slug == "" || name == "" {
			continue
		}
		assets = append(assets, catalog.Asset{Slug: slug, DisplayName: name})
	}
	return assets, nil
}

func classifyMessagesCSV(ctx context.Context, parser *parse.Parser, path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open messages: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("messages file %s is empty", path)
	}

	cols := columnIndex(records[0])
	var rows [][]string
	for _, rec := range records[1:] {
		content := field(rec, cols, "content")
		if content == "" {
			continue
		}
		result, err := parser.Parse(ctx, parse.Message{Text: content})
		if err != nil {
			return nil, fmt.Errorf("classify %q: %w", content, err)
		}
		assetName := ""
		if result.Asset != nil {
			assetName = result.Asset.DisplayName
		}
		rows = append(rows, []string{
			result.Verdict.String(),
			assetName,
			result.Reason,
			field(rec, cols, "author"),
			field(rec, cols, "date"),
			content,
		})
	}
	return rows, nil
}

func writeResultsCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"classification", "asset", "reason", "author", "date", "content"}); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	return cols
}

func field(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// missLookup treats every reference as stale and every asset as ticketless,
// which keeps offline evaluation on the keyword and name-matching paths.
type missLookup struct{}

func (missLookup) OpenTicket(context.Context, string) (*parse.Ticket, error) { return nil, nil }
func (missLookup) Ticket(context.Context, int64) (*parse.Ticket, error)      { return nil, nil }
func (missLookup) PartsRequest(context.Context, int64) (*parse.PartsRequest, error) {
	return nil, nil
}
func (missLookup) LogEntry(context.Context, int64) (*parse.LogEntry, error) { return nil, nil }
func (missLookup) PartsRequestUpdate(context.Context, int64) (*parse.PartsRequestUpdate, error) {
	return nil, nil
}
