package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Submission outcomes
const (
	OutcomeSuccess           = "success"
	OutcomeValidationFailed  = "validation_failed"
	OutcomePersistenceFailed = "persistence_failed"
	OutcomeConflict          = "conflict"
	OutcomeBusy              = "busy"
)

// Metric attribute keys
var (
	AttrField   = attribute.Key("field")
	AttrOutcome = attribute.Key("outcome")
	AttrAction  = attribute.Key("action")
)

// EditorMetrics counts tax invoice editing activity.
// A nil *EditorMetrics records nothing.
type EditorMetrics struct {
	sessionsOpened  *Counter
	fieldEdits      *Counter
	fieldResets     *Counter
	submissions     *Counter
	submitDuration  *Histogram
	invoicesCreated *Counter
}

// NewEditorMetrics registers the editor instruments on meter.
func NewEditorMetrics(meter metric.Meter) (*EditorMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	em := &EditorMetrics{}
	var err error

	em.sessionsOpened, err = NewCounter(meter,
		"taxinvoice_sessions_opened_total",
		"Total number of edit sessions opened",
		"{sessions}",
	)
	if err != nil {
		return nil, err
	}

	em.fieldEdits, err = NewCounter(meter,
		"taxinvoice_field_edits_total",
		"Total number of direct field edits",
		"{edits}",
	)
	if err != nil {
		return nil, err
	}

	em.fieldResets, err = NewCounter(meter,
		"taxinvoice_field_resets_total",
		"Total number of touched flag resets and recalculations",
		"{resets}",
	)
	if err != nil {
		return nil, err
	}

	em.submissions, err = NewCounter(meter,
		"taxinvoice_submissions_total",
		"Total number of submissions by outcome",
		"{submissions}",
	)
	if err != nil {
		return nil, err
	}

	em.submitDuration, err = NewHistogram(meter,
		"taxinvoice_submit_duration_seconds",
		"Time spent submitting a tax invoice",
		"s",
		0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5,
	)
	if err != nil {
		return nil, err
	}

	em.invoicesCreated, err = NewCounter(meter,
		"taxinvoice_created_total",
		"Total number of tax invoices created",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	return em, nil
}

// RecordSessionOpened counts an opened session
func (m *EditorMetrics) RecordSessionOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.sessionsOpened.Inc(ctx)
}

// RecordFieldEdit counts a direct edit of field
func (m *EditorMetrics) RecordFieldEdit(ctx context.Context, field string) {
	if m == nil {
		return
	}
	m.fieldEdits.Inc(ctx, AttrField.String(field))
}

// RecordFieldReset counts a reset of field; action is "reset" or "recalculate"
func (m *EditorMetrics) RecordFieldReset(ctx context.Context, field, action string) {
	if m == nil {
		return
	}
	m.fieldResets.Inc(ctx, AttrField.String(field), AttrAction.String(action))
}

// RecordSubmission counts a submission and its duration
func (m *EditorMetrics) RecordSubmission(ctx context.Context, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.submissions.Inc(ctx, AttrOutcome.String(outcome))
	m.submitDuration.RecordDuration(ctx, d, AttrOutcome.String(outcome))
}

// RecordInvoiceCreated counts a created tax invoice
func (m *EditorMetrics) RecordInvoiceCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.invoicesCreated.Inc(ctx)
}
