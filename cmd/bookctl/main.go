// Package main provides a command-line single-book entry tool for the
// Inkwell server.
//
// It walks the reconciliation flow a catalog operator would: classify the
// draft against the catalog, pick one of the legal actions for the verdict,
// commit it, then show either the affected book or the catalog list.
//
// Usage:
//
//	go run ./cmd/bookctl -title "Pale Fire" -author "Nabokov" -isbn 9780679723424 -source ingram -rate 24.99
//	go run ./cmd/bookctl -title "Pale Fire" -author "Nabokov" -isbn 9780679723424 -source ingram -rate 21.50 -action UPDATE_PRICE
//	INKWELL_SERVER=http://10.0.0.5:8080 go run ./cmd/bookctl -title ... -check-only
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/inkwellapp/inkwell-server/internal/client"
	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/reconcile"
)

var (
	title     = flag.String("title", "", "Book title (required)")
	author    = flag.String("author", "", "Book author (required)")
	year      = flag.Int("year", 0, "Publication year (0 = unknown)")
	isbn      = flag.String("isbn", "", "ISBN-10 or ISBN-13")
	otherCode = flag.String("code", "", "Opaque identity code for books without an ISBN")
	edition   = flag.String("edition", "", "Edition")
	publisher = flag.String("publisher", "", "Publisher name")

	source   = flag.String("source", "", "Price source (required)")
	rate     = flag.Float64("rate", 0, "Rate")
	discount = flag.Float64("discount", 0, "Discount percent")
	currency = flag.String("currency", "", "Currency code")

	action    = flag.String("action", "", "Action to take after classification (default: the first legal one)")
	checkOnly = flag.Bool("check-only", false, "Classify and show the legal actions without committing")
)

func main() {
	flag.Parse()

	serverURL := os.Getenv("INKWELL_SERVER")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	c := client.New(serverURL, logger)
	ctx := context.Background()

	book := domain.BookDraft{
		Title:     *title,
		Author:    *author,
		Year:      *year,
		ISBN:      *isbn,
		OtherCode: *otherCode,
		Edition:   *edition,
	}
	pricing := domain.PricingDraft{
		Source:   *source,
		Rate:     *rate,
		Discount: *discount,
		Currency: *currency,
	}
	pub := domain.PublisherDraft{PublisherName: *publisher}

	// The server validates the draft before classifying, so a bad draft
	// fails here rather than at commit time.
	result, err := c.CheckDuplicate(ctx, &book, &pricing, &pub)
	if err != nil {
		log.Fatalf("Classification failed: %v", err)
	}

	machine := reconcile.New(book, pricing, pub, *result)
	printClassification(result, machine)

	if *checkOnly {
		return
	}

	picked, err := pickAction(machine, *action)
	if err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Printf("\nTaking action: %s\n", picked)

	payload, err := machine.Payload(picked)
	if err != nil {
		log.Fatalf("Failed to build commit: %v", err)
	}

	// DISCARD and ACKNOWLEDGE write nothing; only navigation remains.
	bookID := result.Details.BookID
	if payload != nil {
		committed, err := c.Commit(ctx, payload)
		if err != nil {
			log.Fatalf("Commit failed: %v", err)
		}
		bookID = committed.BookID
	}

	// Land on the affected book when the flow identified one, on the
	// catalog list otherwise.
	if bookID != "" {
		showBook(ctx, c, bookID)
	} else {
		showList(ctx, c)
	}
}

// pickAction resolves the requested action against the legal set, defaulting
// to the first legal action.
func pickAction(machine *reconcile.Machine, requested string) (domain.PricingAction, error) {
	legal := machine.Actions()
	if requested == "" {
		return legal[0], nil
	}
	picked := domain.PricingAction(strings.ToUpper(requested))
	if !machine.Allows(picked) {
		return "", fmt.Errorf("action %s is not available here; legal actions: %s", picked, joinActions(legal))
	}
	return picked, nil
}

func printClassification(result *domain.ClassificationResult, machine *reconcile.Machine) {
	fmt.Printf("=== Classification ===\n")
	fmt.Printf("Book:    %s\n", result.BookStatus)
	if result.PricingStatus != "" {
		fmt.Printf("Pricing: %s\n", result.PricingStatus)
	}
	if result.Message != "" {
		fmt.Printf("Note:    %s\n", result.Message)
	}
	if len(result.Details.ConflictFields) > 0 {
		fmt.Printf("\nConflicting fields (edit the draft and resubmit):\n")
		for field, change := range result.Details.ConflictFields {
			fmt.Printf("  %-16s catalog=%q draft=%q\n", field, change.Old, change.New)
		}
	}
	fmt.Printf("\nLegal actions: %s\n", joinActions(machine.Actions()))
}

func joinActions(actions []domain.PricingAction) string {
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = string(a)
	}
	return strings.Join(parts, ", ")
}

func showBook(ctx context.Context, c *client.Client, bookID string) {
	book, err := c.GetBook(ctx, bookID)
	if err != nil {
		log.Fatalf("Failed to fetch book: %v", err)
	}

	fmt.Printf("\n=== Book (%s) ===\n", book.ID)
	fmt.Printf("Title:      %s\n", book.Title)
	fmt.Printf("Author:     %s\n", book.Author)
	if book.Identifier() != "" {
		fmt.Printf("Identifier: %s\n", book.Identifier())
	}
	if book.Publisher != "" {
		fmt.Printf("Publisher:  %s\n", book.Publisher)
	}
	for _, p := range book.Pricings {
		fmt.Printf("Price:      %-16s rate=%.2f discount=%.0f%%\n", p.Source, p.Rate, p.Discount)
	}
}

func showList(ctx context.Context, c *client.Client) {
	page, err := c.ListBooks(ctx, "", 20)
	if err != nil {
		log.Fatalf("Failed to list books: %v", err)
	}

	fmt.Printf("\n=== Catalog ===\n")
	for _, b := range page.Books {
		fmt.Printf("  %-24s %s — %s\n", b.ID, b.Title, b.Author)
	}
	if page.HasMore {
		fmt.Println("  ...")
	}
}
