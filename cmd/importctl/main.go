// Package main provides a command-line import tool for the Inkwell server.
//
// It walks the same wizard flow the desktop client uses: upload a
// spreadsheet for validation, review the suggested column mapping, then run
// the import and print the per-row log.
//
// Usage:
//
//	go run ./cmd/importctl catalog.xlsx
//	go run ./cmd/importctl --template tpl_abc123 catalog.csv
//	go run ./cmd/importctl --map "Book Name=title" --map "Price=rate" catalog.csv
//	INKWELL_SERVER=http://10.0.0.5:8080 go run ./cmd/importctl --dry-run catalog.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/inkwellapp/inkwell-server/internal/client"
	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/wizard"
)

var (
	templateID   = flag.String("template", "", "Template ID to replay against the file")
	dryRun       = flag.Bool("dry-run", false, "Validate and show the mapping without importing")
	saveTemplate = flag.String("save-template", "", "Save the final mapping as a template with this name")
	overrides    = make(mapOverrides)
)

// mapOverrides collects repeated --map "Header=field" flags.
type mapOverrides map[string]domain.CatalogField

func (m mapOverrides) String() string {
	pairs := make([]string, 0, len(m))
	for h, f := range m {
		pairs = append(pairs, fmt.Sprintf("%s=%s", h, f))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func (m mapOverrides) Set(value string) error {
	header, field, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("expected Header=field, got %q", value)
	}
	target := domain.CatalogField(field)
	if target != domain.FieldSkip && !domain.IsCatalogField(target) {
		return fmt.Errorf("unknown field %q", field)
	}
	m[header] = target
	return nil
}

func main() {
	flag.Var(overrides, "map", "Override one column mapping as Header=field (repeatable)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: importctl [flags] <spreadsheet>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	serverURL := os.Getenv("INKWELL_SERVER")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	c := client.New(serverURL, logger)
	w := wizard.New(c, logger, nil)
	ctx := context.Background()

	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open file: %v", err)
	}
	defer file.Close()

	fmt.Printf("Validating %s against %s\n", path, serverURL)
	if err := w.SelectFile(ctx, file.Name(), file, *templateID); err != nil {
		log.Fatalf("Validation failed: %v", err)
	}

	v := w.Validation()
	fmt.Printf("\n=== File ===\n")
	fmt.Printf("Rows:    %d\n", v.RowCount)
	fmt.Printf("Columns: %s\n", strings.Join(v.Headers, ", "))
	if *templateID != "" {
		if v.TemplateMatch {
			fmt.Printf("Template %s matches\n", *templateID)
		} else {
			fmt.Printf("Template %s does NOT match, falling back to suggested mapping\n", *templateID)
			if d := v.TemplateMatchDetails; d != nil {
				if len(d.MissingHeaders) > 0 {
					fmt.Printf("  missing headers: %s\n", strings.Join(d.MissingHeaders, ", "))
				}
				if len(d.ExtraHeaders) > 0 {
					fmt.Printf("  extra headers:   %s\n", strings.Join(d.ExtraHeaders, ", "))
				}
			}
		}
	}

	// A matching template parks the wizard in review; any edit request drops
	// back to manual mapping. A mismatched template must be acknowledged
	// before the heuristic fallback is usable.
	switch w.State() {
	case wizard.StateReview:
		if len(overrides) > 0 || *saveTemplate != "" {
			if err := w.RequestEdit(); err != nil {
				log.Fatalf("Failed to edit template mapping: %v", err)
			}
		}
	case wizard.StateNoMatch:
		if err := w.Acknowledge(); err != nil {
			log.Fatalf("Failed to acknowledge template mismatch: %v", err)
		}
	}

	for header, field := range overrides {
		if err := w.SetTarget(header, field); err != nil {
			log.Fatalf("Failed to map %q to %q: %v", header, field, err)
		}
	}

	printMapping(w.Mapping(), v.Headers)

	cov := w.Coverage()
	if !cov.Importable() {
		fmt.Printf("\nMapping cannot drive an import:\n")
		for _, f := range cov.MissingBook {
			fmt.Printf("  missing book field:    %s\n", f)
		}
		for _, f := range cov.MissingPricing {
			fmt.Printf("  missing pricing field: %s\n", f)
		}
		for field, headers := range cov.DuplicateFields {
			fmt.Printf("  %s fed by several columns: %s\n", field, strings.Join(headers, ", "))
		}
		fmt.Println("\nUse --map \"Header=field\" to fix it.")
		os.Exit(1)
	}

	if *saveTemplate != "" {
		tpl, err := w.SaveTemplate(ctx, *saveTemplate, "")
		if err != nil {
			log.Fatalf("Failed to save template: %v", err)
		}
		fmt.Printf("\nSaved template %s (%s)\n", tpl.Name, tpl.ID)
	}

	if *dryRun {
		fmt.Println("\nDry run, skipping import.")
		return
	}

	fmt.Printf("\nImporting %d rows...\n", v.RowCount)
	var runErr error
	if w.State() == wizard.StateReview {
		runErr = w.Confirm(ctx)
	} else {
		runErr = w.StartImport(ctx)
	}
	if runErr != nil {
		log.Fatalf("Import failed: %v", runErr)
	}

	printResult(w.Result())
	w.Finish()
}

func printMapping(m domain.ImportMapping, headers []string) {
	fmt.Printf("\n=== Mapping ===\n")
	for _, h := range headers {
		if field, ok := m[h]; ok {
			fmt.Printf("  %-24s -> %s\n", h, field)
		} else {
			fmt.Printf("  %-24s -> (skipped)\n", h)
		}
	}
}

func printResult(r *domain.ImportResult) {
	fmt.Printf("\n=== Result (%s) ===\n", r.ImportID)
	fmt.Printf("Rows read:          %d\n", r.RowsRead)
	fmt.Printf("Books inserted:     %d\n", r.BooksInserted)
	fmt.Printf("Prices added:       %d\n", r.PricesAdded)
	fmt.Printf("Prices updated:     %d\n", r.PricesUpdated)
	fmt.Printf("Skipped duplicates: %d\n", r.SkippedDuplicate)
	fmt.Printf("Skipped conflicts:  %d\n", r.SkippedConflict)
	fmt.Printf("Rows errored:       %d\n", r.RowsErrored)

	if r.RowsErrored > 0 || r.SkippedConflict > 0 {
		fmt.Printf("\nRows needing attention:\n")
		for _, entry := range r.RowLog {
			if entry.Outcome == domain.RowErrored || entry.Outcome == domain.RowSkippedConflict {
				fmt.Printf("  row %d: %s (%s)\n", entry.Row, entry.Outcome, entry.Detail)
			}
		}
	}
}
