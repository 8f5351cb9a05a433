package taxinvoice

import (
	"fmt"
)

// Snapshot is a serializable copy of a FieldStore's state
type Snapshot struct {
	Values  map[FieldName]string `json:"values"`
	Touched map[FieldName]bool   `json:"touched"`
}

// Value returns the raw value of name, or "" when absent
func (s Snapshot) Value(name FieldName) string {
	return s.Values[name]
}

// FieldStore holds the current raw value and touched flag of every field.
//
// It is owned by a single edit session and is not safe for concurrent use.
// Every mutation, including the recomputation cascade, completes before the
// call returns.
type FieldStore struct {
	schema *Schema
	graph  *DependencyGraph
	fields map[FieldName]*Field
}

// NewFieldStore creates an empty store for schema and graph.
// A graph referencing fields absent from schema is a programming error.
func NewFieldStore(schema *Schema, graph *DependencyGraph) *FieldStore {
	for _, name := range graph.Fields() {
		if !schema.Has(name) {
			panic(fmt.Sprintf("taxinvoice: derivation rule references unknown field %q", name))
		}
	}
	s := &FieldStore{
		schema: schema,
		graph:  graph,
		fields: make(map[FieldName]*Field, len(schema.specs)),
	}
	for _, spec := range schema.specs {
		s.fields[spec.Name] = &Field{Name: spec.Name}
	}
	return s
}

// NewDefaultFieldStore creates a store with the Faktur Pajak schema and rules
func NewDefaultFieldStore() *FieldStore {
	return NewFieldStore(DefaultSchema(), NewDependencyGraph(DefaultRules()...))
}

// Schema returns the store's schema
func (s *FieldStore) Schema() *Schema {
	return s.schema
}

// Graph returns the store's dependency graph
func (s *FieldStore) Graph() *DependencyGraph {
	return s.graph
}

func (s *FieldStore) field(name FieldName) *Field {
	f, ok := s.fields[name]
	if !ok {
		panic(fmt.Sprintf("taxinvoice: unknown field %q", name))
	}
	return f
}

// Get returns the raw value of name
func (s *FieldStore) Get(name FieldName) string {
	return s.field(name).Value
}

// IsTouched reports whether name was set directly
func (s *FieldStore) IsTouched(name FieldName) bool {
	return s.field(name).Touched
}

// Fields returns a copy of every field in schema order
func (s *FieldStore) Fields() []Field {
	out := make([]Field, 0, len(s.schema.specs))
	for _, spec := range s.schema.specs {
		out = append(out, *s.fields[spec.Name])
	}
	return out
}

// SetDirect records a user edit: the value is stored, the field is marked
// touched, and every untouched derived field downstream is recomputed.
func (s *FieldStore) SetDirect(name FieldName, raw string) {
	f := s.field(name)
	f.Value = raw
	f.Touched = true
	s.propagate(name)
}

// setComputed writes a value produced by a formula; the touched flag is left as is
func (s *FieldStore) setComputed(name FieldName, raw string) {
	s.field(name).Value = raw
}

// ResetTouched clears the touched flag of name so the next recomputation pass
// may overwrite it again. The current value is kept.
func (s *FieldStore) ResetTouched(name FieldName) {
	s.field(name).Touched = false
}

// ResetAllTouched clears every touched flag
func (s *FieldStore) ResetAllTouched() {
	for _, f := range s.fields {
		f.Touched = false
	}
}

// Recalculate clears the touched flag of name and, when name is derived,
// recomputes it from its current inputs right away, propagating downstream.
func (s *FieldStore) Recalculate(name FieldName) {
	s.ResetTouched(name)
	if rule, ok := s.graph.Rule(name); ok {
		s.apply(rule)
	}
}

// Load replaces every value and clears every touched flag.
// Fields absent from values become blank; unknown keys panic.
func (s *FieldStore) Load(values map[FieldName]string) {
	for name := range values {
		s.field(name)
	}
	for name, f := range s.fields {
		f.Value = values[name]
		f.Touched = false
	}
}

// Snapshot returns a copy of the current state
func (s *FieldStore) Snapshot() Snapshot {
	snap := Snapshot{
		Values:  make(map[FieldName]string, len(s.fields)),
		Touched: make(map[FieldName]bool, len(s.fields)),
	}
	for name, f := range s.fields {
		snap.Values[name] = f.Value
		if f.Touched {
			snap.Touched[name] = true
		}
	}
	return snap
}

// Restore replaces the state with snap, touched flags included
func (s *FieldStore) Restore(snap Snapshot) {
	s.Load(snap.Values)
	for name, touched := range snap.Touched {
		s.field(name).Touched = touched
	}
}
