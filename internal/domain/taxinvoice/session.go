package taxinvoice

import (
	"context"
	"sync"
	"time"

	"github.com/erp/taxinvoice/internal/domain/shared"
	"github.com/google/uuid"
)

// SessionState represents the state of an edit session
type SessionState string

const (
	SessionStateViewing    SessionState = "VIEWING"
	SessionStateEditing    SessionState = "EDITING"
	SessionStateSubmitting SessionState = "SUBMITTING"
)

// IsValid checks if the state is a valid SessionState
func (s SessionState) IsValid() bool {
	switch s {
	case SessionStateViewing, SessionStateEditing, SessionStateSubmitting:
		return true
	}
	return false
}

// String returns the string representation of SessionState
func (s SessionState) String() string {
	return string(s)
}

// Saver is the persistence collaborator a session submits to
type Saver interface {
	Save(ctx context.Context, payload Payload) (*TaxInvoice, error)
}

// SaverFunc adapts a function to the Saver interface
type SaverFunc func(ctx context.Context, payload Payload) (*TaxInvoice, error)

// Save calls f(ctx, payload)
func (f SaverFunc) Save(ctx context.Context, payload Payload) (*TaxInvoice, error) {
	return f(ctx, payload)
}

// ErrSessionBusy is returned when a session is asked to change while a submission is outstanding
var ErrSessionBusy = shared.NewDomainError("INVALID_STATE", "Tax invoice is being submitted")

// Session is an edit session over one tax invoice.
//
// Viewing -> Editing on the first edit. Editing -> Viewing on cancel.
// Editing -> Submitting on submit, then Viewing on success or back to
// Editing on validation or persistence failure with every edit retained.
type Session struct {
	mu        sync.Mutex
	id        uuid.UUID
	doc       *TaxInvoice
	store     *FieldStore
	validator *Validator
	state     SessionState
	updatedAt time.Time
}

// NewSession opens a session in Viewing state seeded from doc
func NewSession(doc *TaxInvoice) *Session {
	store := NewDefaultFieldStore()
	store.Load(doc.FieldValues())
	return &Session{
		id:        uuid.New(),
		doc:       doc,
		store:     store,
		validator: NewValidator(store.Schema()),
		state:     SessionStateViewing,
		updatedAt: time.Now(),
	}
}

// ID returns the session identifier
func (s *Session) ID() uuid.UUID {
	return s.id
}

// State returns the current state
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Document returns the authoritative record the session was seeded from
func (s *Session) Document() *TaxInvoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Fields returns every field in schema order
func (s *Session) Fields() []Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Fields()
}

// Get returns the raw value of name
func (s *Session) Get(name FieldName) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get(name)
}

// IsTouched reports whether name was set directly
func (s *Session) IsTouched(name FieldName) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.IsTouched(name)
}

// UpdatedAt returns when the session last changed
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// BeginEdit moves a Viewing session to Editing
func (s *Session) BeginEdit() error {
	return s.mutate(func() {})
}

// Edit sets a field directly and recomputes its untouched dependents
func (s *Session) Edit(name FieldName, raw string) error {
	return s.mutate(func() { s.store.SetDirect(name, raw) })
}

// ResetTouched clears the touched flag of name, keeping its value
func (s *Session) ResetTouched(name FieldName) error {
	return s.mutate(func() { s.store.ResetTouched(name) })
}

// Recalculate clears the touched flag of name and recomputes it now
func (s *Session) Recalculate(name FieldName) error {
	return s.mutate(func() { s.store.Recalculate(name) })
}

// ResetToServer reloads every field from the authoritative record and
// clears every touched flag
func (s *Session) ResetToServer() error {
	return s.mutate(func() { s.store.Load(s.doc.FieldValues()) })
}

func (s *Session) mutate(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SessionStateSubmitting {
		return ErrSessionBusy
	}
	fn()
	s.state = SessionStateEditing
	s.updatedAt = time.Now()
	return nil
}

// Cancel discards every edit and returns to Viewing.
// The persistence collaborator is never called.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SessionStateSubmitting {
		return ErrSessionBusy
	}
	s.store.Load(s.doc.FieldValues())
	s.state = SessionStateViewing
	s.updatedAt = time.Now()
	return nil
}

// Submit validates the fields and hands the normalized payload to saver.
// On success the session reloads from the saved record and returns to
// Viewing. On any failure it returns to Editing with every edit retained.
func (s *Session) Submit(ctx context.Context, saver Saver) (*TaxInvoice, error) {
	payload, err := s.beginSubmit()
	if err != nil {
		return nil, err
	}

	saved, err := saver.Save(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatedAt = time.Now()
	if err != nil {
		s.state = SessionStateEditing
		return nil, shared.WrapDomainError(shared.ErrPersistenceFailed.Code, shared.ErrPersistenceFailed.Message, err)
	}

	s.doc = saved
	s.store.Load(saved.FieldValues())
	s.state = SessionStateViewing
	return saved, nil
}

func (s *Session) beginSubmit() (Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case SessionStateSubmitting:
		return Payload{}, ErrSessionBusy
	case SessionStateViewing:
		return Payload{}, shared.NewDomainError("INVALID_STATE", "Tax invoice is not being edited")
	}

	snap := s.store.Snapshot()
	if err := s.validator.Validate(snap); err != nil {
		return Payload{}, err
	}
	payload, err := BuildPayload(s.doc, snap)
	if err != nil {
		return Payload{}, err
	}

	s.state = SessionStateSubmitting
	return payload, nil
}

// SessionSnapshot is the serializable state of a session
type SessionSnapshot struct {
	ID        uuid.UUID    `json:"id"`
	State     SessionState `json:"state"`
	Fields    Snapshot     `json:"fields"`
	Document  *TaxInvoice  `json:"document"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Snapshot returns the serializable state of the session
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionSnapshot{
		ID:        s.id,
		State:     s.state,
		Fields:    s.store.Snapshot(),
		Document:  s.doc,
		UpdatedAt: s.updatedAt,
	}
}

// RestoreSession rebuilds a session from a snapshot.
// A snapshot taken mid-submission comes back as Editing.
func RestoreSession(snap SessionSnapshot) *Session {
	s := NewSession(snap.Document)
	s.id = snap.ID
	s.store.Restore(snap.Fields)
	s.state = snap.State
	if s.state == SessionStateSubmitting || !s.state.IsValid() {
		s.state = SessionStateEditing
	}
	if !snap.UpdatedAt.IsZero() {
		s.updatedAt = snap.UpdatedAt
	}
	return s
}
