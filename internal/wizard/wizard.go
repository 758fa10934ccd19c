// Package wizard drives the multi-step bulk import flow against a catalog
// server: pick a file, confirm or fix the header mapping, run the sweep,
// review the result.
package wizard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/inkwellapp/inkwell-server/internal/client"
	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/mapping"
	"github.com/inkwellapp/inkwell-server/internal/spreadsheet"
)

// State is the wizard's current step.
type State string

const (
	// StateInitial is before any file has been chosen.
	StateInitial State = "initial"
	// StateReview is after validation with a perfectly matching template:
	// the user confirms the template mapping as-is or requests to edit it.
	StateReview State = "review"
	// StateNoMatch is after validation with an incompatible template: the
	// user must acknowledge the mismatch before mapping by hand.
	StateNoMatch State = "no-match"
	// StateMapping is the manual step: the mapping can be reviewed and
	// edited until it covers the required fields.
	StateMapping State = "mapping"
	// StateComplete is after the sweep: the result is ready for review.
	StateComplete State = "complete"
)

// Controller owns the wizard's state. All methods are safe for concurrent
// use; long-running steps reject overlapping calls instead of queueing them.
type Controller struct {
	client *client.Client
	logger *slog.Logger

	// onComplete fires when the user dismisses the result, not when the
	// import finishes: the result stays on screen until then.
	onComplete func(*domain.ImportResult)

	mu         sync.Mutex
	state      State
	busy       bool
	filename   string
	fileData   []byte
	templateID string
	validation *domain.ImportValidation
	mapping    domain.ImportMapping
	result     *domain.ImportResult
}

// New creates a wizard controller. onComplete may be nil.
func New(c *client.Client, logger *slog.Logger, onComplete func(*domain.ImportResult)) *Controller {
	return &Controller{
		client:     c,
		logger:     logger,
		onComplete: onComplete,
		state:      StateInitial,
	}
}

// State returns the current step.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a long-running step is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// beginStep marks the controller busy for a long-running step, enforcing the
// expected state.
func (c *Controller) beginStep(want State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return errors.Conflict("another operation is already running")
	}
	if c.state != want {
		return errors.Validationf("not available in the %s step", c.state)
	}
	c.busy = true
	return nil
}

func (c *Controller) endStep() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

// SelectFile uploads the chosen spreadsheet for validation. Without a
// template the wizard lands in the mapping step with the heuristic
// suggestion. With one, a perfect header match lands in review with the
// template's mapping adopted as-is; a mismatch lands in no-match and the
// user must acknowledge before mapping by hand.
func (c *Controller) SelectFile(ctx context.Context, filename string, file io.Reader, templateID string) error {
	if err := c.beginStep(StateInitial); err != nil {
		return err
	}
	defer c.endStep()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	// Reject obviously wrong files before the upload round-trip.
	if err := spreadsheet.CheckFile(filename, int64(len(data)), spreadsheet.MaxUploadBytes); err != nil {
		return err
	}

	validation, err := c.client.ValidateImport(ctx, filename, bytes.NewReader(data), templateID)
	if err != nil {
		return fmt.Errorf("validate upload: %w", err)
	}

	c.mu.Lock()
	c.filename = filename
	c.fileData = data
	c.validation = validation
	c.templateID = ""
	switch {
	case templateID != "" && validation.TemplateMatch:
		c.templateID = templateID
		c.mapping = validation.SuggestedMapping.Clone()
		c.state = StateReview
	case templateID != "":
		// Incompatible template. The mapping is seeded from the heuristic
		// only once the user acknowledges the mismatch.
		c.mapping = nil
		c.state = StateNoMatch
	default:
		c.mapping = validation.SuggestedMapping.Clone()
		c.state = StateMapping
	}
	state := c.state
	c.mu.Unlock()

	c.logger.Info("file validated",
		"filename", filename,
		"rows", validation.RowCount,
		"state", state)

	return nil
}

// RequestEdit leaves template review for manual mapping. The working
// mapping stays pre-seeded from the template.
func (c *Controller) RequestEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return errors.Conflict("another operation is already running")
	}
	if c.state != StateReview {
		return errors.Validationf("not available in the %s step", c.state)
	}
	c.state = StateMapping
	return nil
}

// Acknowledge accepts the template mismatch and moves to manual mapping,
// seeded from the heuristic suggestion rather than the incompatible
// template.
func (c *Controller) Acknowledge() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return errors.Conflict("another operation is already running")
	}
	if c.state != StateNoMatch {
		return errors.Validationf("not available in the %s step", c.state)
	}
	c.mapping = c.validation.SuggestedMapping.Clone()
	c.state = StateMapping
	return nil
}

// Validation returns the server's verdict on the chosen file.
func (c *Controller) Validation() *domain.ImportValidation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validation
}

// Mapping returns a copy of the working mapping.
func (c *Controller) Mapping() domain.ImportMapping {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mapping.Clone()
}

// SetTarget points a header at a catalog field, or clears it with FieldSkip.
// Later assignments overwrite earlier ones.
func (c *Controller) SetTarget(header string, field domain.CatalogField) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateMapping {
		return errors.Validationf("not available in the %s step", c.state)
	}
	mapping.SetTarget(c.mapping, header, field)
	return nil
}

// Coverage reports whether the working mapping can drive an import.
func (c *Controller) Coverage() mapping.CoverageReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return mapping.Coverage(c.mapping)
}

// SaveTemplate saves the working mapping for replay on future files. A side
// action of the mapping step; the wizard stays where it is.
func (c *Controller) SaveTemplate(ctx context.Context, name, description string) (*domain.ImportTemplate, error) {
	c.mu.Lock()
	if c.state != StateMapping {
		c.mu.Unlock()
		return nil, errors.Validationf("not available in the %s step", c.state)
	}
	m := c.mapping.Clone()
	headers := append([]string(nil), c.validation.Headers...)
	c.mu.Unlock()

	return c.client.CreateTemplate(ctx, name, description, m, headers)
}

// StartImport runs the sweep with the working mapping from the manual
// mapping step.
func (c *Controller) StartImport(ctx context.Context) error {
	return c.runImport(ctx, StateMapping)
}

// Confirm accepts a matched template's mapping during review and runs the
// sweep with it unchanged.
func (c *Controller) Confirm(ctx context.Context) error {
	return c.runImport(ctx, StateReview)
}

// runImport runs the sweep. The mapping must cover the required fields,
// with no field fed by more than one header. A server failure drops back to
// the mapping step with the draft mapping preserved, so the user can
// correct and retry without re-uploading.
func (c *Controller) runImport(ctx context.Context, from State) error {
	if err := c.beginStep(from); err != nil {
		return err
	}
	defer c.endStep()

	c.mu.Lock()
	report := mapping.Coverage(c.mapping)
	m := c.mapping.Clone()
	filename := c.filename
	data := c.fileData
	templateID := c.templateID
	c.mu.Unlock()

	if !report.Complete() {
		return errors.Validation("mapping does not cover the required fields yet")
	}
	if len(report.DuplicateFields) > 0 {
		return errors.Validationf("multiple columns target the same field: %s", joinDuplicates(report))
	}

	result, err := c.client.RunImport(ctx, filename, bytes.NewReader(data), m, templateID)
	if err != nil {
		c.mu.Lock()
		c.state = StateMapping
		c.mu.Unlock()
		return fmt.Errorf("run import: %w", err)
	}

	c.mu.Lock()
	c.result = result
	c.state = StateComplete
	c.mu.Unlock()

	c.logger.Info("import complete",
		"import_id", result.ImportID,
		"inserted", result.BooksInserted,
		"errored", result.RowsErrored)

	return nil
}

func joinDuplicates(report mapping.CoverageReport) string {
	fields := make([]string, 0, len(report.DuplicateFields))
	for field := range report.DuplicateFields {
		fields = append(fields, string(field))
	}
	sort.Strings(fields)
	return strings.Join(fields, ", ")
}

// Result returns the finished import's result, or nil before completion.
func (c *Controller) Result() *domain.ImportResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Finish dismisses the result, fires the completion callback and resets the
// wizard for the next file.
func (c *Controller) Finish() {
	c.mu.Lock()
	result := c.result
	state := c.state
	c.mu.Unlock()

	if state == StateComplete && result != nil && c.onComplete != nil {
		c.onComplete(result)
	}

	c.Reset()
}

// Reset abandons the current flow and returns to the initial step.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateInitial
	c.busy = false
	c.filename = ""
	c.fileData = nil
	c.templateID = ""
	c.validation = nil
	c.mapping = nil
	c.result = nil
}
