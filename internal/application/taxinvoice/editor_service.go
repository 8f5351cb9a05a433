package taxinvoice

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/erp/taxinvoice/internal/domain/shared"
	"github.com/erp/taxinvoice/internal/domain/taxinvoice"
	"github.com/erp/taxinvoice/internal/infrastructure/logger"
	"github.com/erp/taxinvoice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned when no edit session is open for a tax invoice
var ErrSessionNotFound = shared.NewDomainError("NOT_FOUND", "No edit session is open for this tax invoice")

type sessionKey struct {
	tenantID     uuid.UUID
	taxInvoiceID uuid.UUID
}

// EditorService manages the edit sessions of tax invoices.
// At most one session is open per tax invoice. Sessions that are being
// edited are written to the draft store after every change.
type EditorService struct {
	repo           taxinvoice.TaxInvoiceRepository
	drafts         taxinvoice.DraftStore
	draftTTL       time.Duration
	schema         *taxinvoice.Schema
	graph          *taxinvoice.DependencyGraph
	logger         *zap.Logger
	metrics        *telemetry.EditorMetrics
	eventPublisher shared.EventPublisher

	mu       sync.Mutex
	sessions map[sessionKey]*taxinvoice.Session
}

// NewEditorService creates a new EditorService
func NewEditorService(
	repo taxinvoice.TaxInvoiceRepository,
	drafts taxinvoice.DraftStore,
	draftTTL time.Duration,
	logger *zap.Logger,
) *EditorService {
	return &EditorService{
		repo:     repo,
		drafts:   drafts,
		draftTTL: draftTTL,
		schema:   taxinvoice.DefaultSchema(),
		graph:    taxinvoice.NewDependencyGraph(taxinvoice.DefaultRules()...),
		logger:   logger,
		sessions: make(map[sessionKey]*taxinvoice.Session),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *EditorService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the editor metrics recorder
func (s *EditorService) SetMetrics(metrics *telemetry.EditorMetrics) {
	s.metrics = metrics
}

// Open opens an edit session for a tax invoice, or returns the one already open.
// A draft left by an earlier process is restored with its edits.
func (s *EditorService) Open(ctx context.Context, tenantID, taxInvoiceID uuid.UUID) (*SessionResponse, error) {
	ctx, span := s.startSpan(ctx, "open", taxInvoiceID)
	defer span.End()

	sess, err := s.lookup(ctx, tenantID, taxInvoiceID)
	if err == nil {
		telemetry.SetOK(span)
		return s.respond(sess), nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		telemetry.RecordError(span, err)
		return nil, err
	}

	doc, err := s.repo.FindByIDForTenant(ctx, tenantID, taxInvoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	sess = s.register(sessionKey{tenantID, taxInvoiceID}, taxinvoice.NewSession(doc))
	s.metrics.RecordSessionOpened(ctx)
	s.log(ctx).Info("edit session opened",
		zap.String("tax_invoice_id", taxInvoiceID.String()),
		zap.String("session_id", sess.ID().String()),
		zap.Int("version", doc.Version),
	)

	telemetry.SetOK(span)
	return s.respond(sess), nil
}

// Get returns the open session of a tax invoice
func (s *EditorService) Get(ctx context.Context, tenantID, taxInvoiceID uuid.UUID) (*SessionResponse, error) {
	sess, err := s.lookup(ctx, tenantID, taxInvoiceID)
	if err != nil {
		return nil, err
	}
	return s.respond(sess), nil
}

// Edit sets a field directly. Untouched derived fields that depend on it
// are recomputed before Edit returns.
func (s *EditorService) Edit(ctx context.Context, tenantID, taxInvoiceID uuid.UUID, req EditFieldRequest) (*SessionResponse, error) {
	name, err := s.schema.Lookup(req.Field)
	if err != nil {
		return nil, err
	}

	resp, err := s.mutate(ctx, tenantID, taxInvoiceID, "edit", name, func(sess *taxinvoice.Session) error {
		return sess.Edit(name, req.Value)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordFieldEdit(ctx, name.String())
	return resp, nil
}

// ResetTouched clears the touched flag of a field, keeping its value.
// The field follows its inputs again from the next change onwards.
func (s *EditorService) ResetTouched(ctx context.Context, tenantID, taxInvoiceID uuid.UUID, field string) (*SessionResponse, error) {
	name, err := s.schema.Lookup(field)
	if err != nil {
		return nil, err
	}

	resp, err := s.mutate(ctx, tenantID, taxInvoiceID, "reset_touched", name, func(sess *taxinvoice.Session) error {
		return sess.ResetTouched(name)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordFieldReset(ctx, name.String(), "reset")
	return resp, nil
}

// Recalculate clears the touched flag of a field and recomputes it from its
// current inputs
func (s *EditorService) Recalculate(ctx context.Context, tenantID, taxInvoiceID uuid.UUID, field string) (*SessionResponse, error) {
	name, err := s.schema.Lookup(field)
	if err != nil {
		return nil, err
	}

	resp, err := s.mutate(ctx, tenantID, taxInvoiceID, "recalculate", name, func(sess *taxinvoice.Session) error {
		return sess.Recalculate(name)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordFieldReset(ctx, name.String(), "recalculate")
	return resp, nil
}

// ResetAll reloads every field from the stored record and clears every touched flag
func (s *EditorService) ResetAll(ctx context.Context, tenantID, taxInvoiceID uuid.UUID) (*SessionResponse, error) {
	return s.mutate(ctx, tenantID, taxInvoiceID, "reset_all", "", func(sess *taxinvoice.Session) error {
		return sess.ResetToServer()
	})
}

// Cancel discards every edit and closes the session. Nothing is saved.
func (s *EditorService) Cancel(ctx context.Context, tenantID, taxInvoiceID uuid.UUID) (*SessionResponse, error) {
	ctx, span := s.startSpan(ctx, "cancel", taxInvoiceID)
	defer span.End()

	sess, err := s.lookup(ctx, tenantID, taxInvoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := sess.Cancel(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := s.respond(sess)
	s.close(ctx, sessionKey{tenantID, taxInvoiceID}, sess)
	s.log(ctx).Info("edit session cancelled",
		zap.String("tax_invoice_id", taxInvoiceID.String()),
		zap.String("session_id", sess.ID().String()),
	)

	telemetry.SetOK(span)
	return resp, nil
}

// Submit validates the session and saves it to the repository.
// On success the session is closed and the saved record is returned in
// Viewing state. On failure the session stays open in Editing with every
// edit retained.
func (s *EditorService) Submit(ctx context.Context, tenantID, taxInvoiceID uuid.UUID) (*SessionResponse, error) {
	ctx, span := s.startSpan(ctx, "submit", taxInvoiceID)
	defer span.End()
	start := time.Now()

	sess, err := s.lookup(ctx, tenantID, taxInvoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrSessionID, sess.ID().String())

	saved, err := sess.Submit(ctx, NewRepositorySaver(s.repo, tenantID))
	if err != nil {
		outcome := submitOutcome(err)
		s.metrics.RecordSubmission(ctx, outcome, time.Since(start))
		s.persist(ctx, sessionKey{tenantID, taxInvoiceID}, sess)
		telemetry.RecordError(span, err)
		s.log(ctx).Warn("tax invoice submit failed",
			zap.String("tax_invoice_id", taxInvoiceID.String()),
			zap.String("session_id", sess.ID().String()),
			zap.String("outcome", outcome),
			zap.Error(err),
		)
		return nil, err
	}

	s.publishDomainEvents(ctx, saved)
	resp := s.respond(sess)
	s.close(ctx, sessionKey{tenantID, taxInvoiceID}, sess)
	s.metrics.RecordSubmission(ctx, telemetry.OutcomeSuccess, time.Since(start))
	s.log(ctx).Info("tax invoice submitted",
		zap.String("tax_invoice_id", taxInvoiceID.String()),
		zap.String("session_id", sess.ID().String()),
		zap.String("nomor_faktur", saved.DocumentNumber),
		zap.Int("version", saved.Version),
	)

	telemetry.SetAttributes(span, telemetry.SpanAttrVersion, saved.Version)
	telemetry.SetOK(span)
	return resp, nil
}

func (s *EditorService) mutate(
	ctx context.Context,
	tenantID, taxInvoiceID uuid.UUID,
	method string,
	field taxinvoice.FieldName,
	fn func(*taxinvoice.Session) error,
) (*SessionResponse, error) {
	ctx, span := s.startSpan(ctx, method, taxInvoiceID)
	defer span.End()
	if field != "" {
		telemetry.SetAttributes(span, telemetry.SpanAttrField, field.String())
	}

	sess, err := s.lookup(ctx, tenantID, taxInvoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.WithProfilingLabels(ctx, map[string]string{
		telemetry.ProfilingLabelOperation: method,
		telemetry.ProfilingLabelField:     field.String(),
	}, func(context.Context) {
		err = fn(sess)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.persist(ctx, sessionKey{tenantID, taxInvoiceID}, sess)
	telemetry.SetOK(span)
	return s.respond(sess), nil
}

// lookup finds the open session of a tax invoice, restoring it from the
// draft store when this process has not seen it yet
func (s *EditorService) lookup(ctx context.Context, tenantID, taxInvoiceID uuid.UUID) (*taxinvoice.Session, error) {
	key := sessionKey{tenantID, taxInvoiceID}

	s.mu.Lock()
	sess, ok := s.sessions[key]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}

	snap, err := s.drafts.Load(ctx, tenantID, taxInvoiceID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if snap.Document == nil || snap.Document.TenantID != tenantID || snap.Document.ID != taxInvoiceID {
		s.log(ctx).Warn("discarding draft that does not match its key",
			zap.String("tax_invoice_id", taxInvoiceID.String()),
		)
		_ = s.drafts.Delete(ctx, tenantID, taxInvoiceID)
		return nil, ErrSessionNotFound
	}

	sess = s.register(key, taxinvoice.RestoreSession(*snap))
	s.log(ctx).Info("edit session restored from draft",
		zap.String("tax_invoice_id", taxInvoiceID.String()),
		zap.String("session_id", sess.ID().String()),
		zap.String("state", sess.State().String()),
	)
	return sess, nil
}

// register stores sess under key unless another caller got there first
func (s *EditorService) register(key sessionKey, sess *taxinvoice.Session) *taxinvoice.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[key]; ok {
		return existing
	}
	s.pruneLocked(time.Now())
	s.sessions[key] = sess
	return sess
}

// pruneLocked drops sessions idle for longer than the draft TTL.
// Their drafts have expired from the draft store by then. s.mu must be held.
func (s *EditorService) pruneLocked(now time.Time) {
	if s.draftTTL <= 0 {
		return
	}
	for key, sess := range s.sessions {
		if sess.State() != taxinvoice.SessionStateSubmitting && now.Sub(sess.UpdatedAt()) > s.draftTTL {
			delete(s.sessions, key)
		}
	}
}

// persist writes an editing session to the draft store.
// Draft store failures are logged; the session in memory stays authoritative.
func (s *EditorService) persist(ctx context.Context, key sessionKey, sess *taxinvoice.Session) {
	snap := sess.Snapshot()
	if snap.State == taxinvoice.SessionStateViewing {
		return
	}
	if err := s.drafts.Save(ctx, key.tenantID, key.taxInvoiceID, snap, s.draftTTL); err != nil {
		s.log(ctx).Error("failed to save edit session draft",
			zap.String("tax_invoice_id", key.taxInvoiceID.String()),
			zap.String("session_id", snap.ID.String()),
			zap.Error(err),
		)
	}
}

// close forgets a session and its draft
func (s *EditorService) close(ctx context.Context, key sessionKey, sess *taxinvoice.Session) {
	s.mu.Lock()
	if s.sessions[key] == sess {
		delete(s.sessions, key)
	}
	s.mu.Unlock()

	if err := s.drafts.Delete(ctx, key.tenantID, key.taxInvoiceID); err != nil {
		s.log(ctx).Error("failed to delete edit session draft",
			zap.String("tax_invoice_id", key.taxInvoiceID.String()),
			zap.Error(err),
		)
	}
}

func (s *EditorService) respond(sess *taxinvoice.Session) *SessionResponse {
	resp := toSessionResponse(s.schema, s.graph, sess.Snapshot())
	return &resp
}

func (s *EditorService) startSpan(ctx context.Context, method string, taxInvoiceID uuid.UUID) (context.Context, trace.Span) {
	return telemetry.StartServiceSpan(ctx, "tax_invoice_editor", method,
		telemetry.WithAttribute(telemetry.SpanAttrTaxInvoiceID, taxInvoiceID.String()),
	)
}

func (s *EditorService) log(ctx context.Context) *zap.Logger {
	return logger.L(logger.WithContext(ctx, s.logger))
}

// publishDomainEvents publishes and clears the aggregate's pending events
func (s *EditorService) publishDomainEvents(ctx context.Context, ti *taxinvoice.TaxInvoice) {
	events := ti.PullDomainEvents()
	if len(events) == 0 || s.eventPublisher == nil {
		return
	}
	// Errors are logged by the event bus, not propagated
	_ = s.eventPublisher.Publish(ctx, events...)
}

// submitOutcome classifies a failed submission for metrics
func submitOutcome(err error) string {
	var verr *taxinvoice.ValidationError
	switch {
	case errors.As(err, &verr):
		return telemetry.OutcomeValidationFailed
	case errors.Is(err, shared.ErrConcurrencyConflict):
		return telemetry.OutcomeConflict
	case errors.Is(err, shared.ErrPersistenceFailed):
		return telemetry.OutcomePersistenceFailed
	case errors.Is(err, shared.ErrInvalidState):
		return telemetry.OutcomeBusy
	default:
		return telemetry.OutcomeValidationFailed
	}
}
