package importer

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/edunest/school-back/internal/logger"
)

// Creator is the slice of the entity store the importer needs.
type Creator interface {
	Create(ctx context.Context, model any) error
}

// Result summarizes one import batch. Partial success is a first-class
// outcome: every row is accounted for as either processed or listed in
// Errors, never both.
type Result struct {
	TotalRecords     int      `json:"totalRecords"`
	ProcessedRecords int      `json:"processedRecords"`
	ProgressPercent  int      `json:"progressPercent"`
	Errors           []string `json:"errors,omitempty"`
	Message          string   `json:"message"`
}

// Status reports how the batch should be recorded in the activity log.
func (r Result) Status() string {
	if len(r.Errors) > 0 {
		return "partial_success"
	}
	return "success"
}

type Importer struct {
	store Creator
	log   zerolog.Logger
}

func New(store Creator) *Importer {
	return &Importer{store: store, log: logger.With("importer")}
}

// Run drives one batch: parse the file, coerce and persist each row in
// file order, and tally the outcome. A row failure never aborts the
// batch; a parse failure aborts the whole call with nothing created.
func (imp *Importer) Run(ctx context.Context, entity, path string) (Result, error) {
	spec, ok := Specs[entity]
	if !ok {
		return Result{}, fmt.Errorf("unknown entity type %q", entity)
	}

	rows, err := Parse(path)
	if err != nil {
		return Result{}, err
	}

	total := len(rows)
	if total == 0 {
		return Result{
			TotalRecords:    0,
			ProgressPercent: 100,
			Message:         "No records found in file",
		}, nil
	}

	processed := 0
	var rowErrors []string
	for i, row := range rows {
		model, err := coerceAndBuild(spec, row)
		if err == nil {
			err = imp.store.Create(ctx, model)
		}
		if err != nil {
			rowErrors = append(rowErrors, rowErrorMessage(spec, row, i, err))
			continue
		}
		processed++
	}

	res := Result{
		TotalRecords:     total,
		ProcessedRecords: processed,
		ProgressPercent:  int(math.Round(float64(processed) / float64(total) * 100)),
		Errors:           rowErrors,
		Message: fmt.Sprintf("Import completed: %d processed, %d failed out of %d records",
			processed, len(rowErrors), total),
	}

	imp.log.Info().
		Str("entity", spec.Name).
		Int("total", res.TotalRecords).
		Int("processed", res.ProcessedRecords).
		Int("failed", len(res.Errors)).
		Msg("import batch finished")

	return res, nil
}

func coerceAndBuild(spec Spec, row Row) (any, error) {
	rec, err := Coerce(spec, row)
	if err != nil {
		return nil, err
	}
	return spec.New(rec)
}

// rowErrorMessage names the row by its label column when it has one,
// and always carries the original (1-based, header-excluded) row index.
func rowErrorMessage(spec Spec, row Row, index int, err error) string {
	if label := row[spec.Label]; label != "" {
		return fmt.Sprintf("Error processing %s %s (row %d): %v", spec.Name, label, index+1, err)
	}
	return fmt.Sprintf("Error processing %s (row %d): %v", spec.Name, index+1, err)
}
