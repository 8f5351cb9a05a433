package taxinvoice

// propagate re-evaluates every rule reading changed, in declared order.
// A touched target is skipped and the cascade stops there; its own
// dependents are still reached from any other untouched path.
func (s *FieldStore) propagate(changed FieldName) {
	for _, rule := range s.graph.Dependents(changed) {
		if s.field(rule.Target).Touched {
			continue
		}
		s.apply(rule)
	}
}

// apply evaluates rule, writes the result into its target and cascades.
// Termination follows from the graph being acyclic.
func (s *FieldStore) apply(rule DerivationRule) {
	operands := make([]Operand, len(rule.Inputs))
	for i, in := range rule.Inputs {
		v, ok := ParseAmount(s.field(in).Value)
		operands[i] = Operand{Value: v, Present: ok}
	}

	value, ok := rule.Formula(operands)
	if ok {
		s.setComputed(rule.Target, value.Round(0).String())
	} else {
		s.setComputed(rule.Target, "")
	}
	s.propagate(rule.Target)
}

// RecomputeAll re-evaluates every untouched derived field in declared order.
// Running it twice without an intervening edit leaves every value unchanged.
func (s *FieldStore) RecomputeAll() {
	for _, rule := range s.graph.rules {
		if s.field(rule.Target).Touched {
			continue
		}
		s.apply(rule)
	}
}
