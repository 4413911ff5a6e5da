package grok

// Match is the result of Expression.Match. It is always non-nil; check Found
// before reading offsets or fields.
type Match struct {
	// Subject is the text that was searched.
	Subject string

	// Found reports whether the expression matched.
	Found bool

	// Start and End are the byte offsets of the matched substring.
	// Valid only when Found is true.
	Start, End int

	expr *Expression
	loc  []int
}

// Text returns the matched substring, or "" when nothing matched.
func (m *Match) Text() string {
	if !m.Found {
		return ""
	}
	return m.Subject[m.Start:m.End]
}

// Expression returns the expression that produced the match.
func (m *Match) Expression() *Expression {
	return m.expr
}

// Slot returns the text captured by slot. ok is false when nothing matched,
// the slot does not exist, or its group did not participate in the match.
func (m *Match) Slot(slot int) (value string, ok bool) {
	if !m.Found || slot < 0 || slot >= len(m.expr.groups) {
		return "", false
	}
	g := m.expr.groups[slot]
	if g < 0 || 2*g+1 >= len(m.loc) || m.loc[2*g] < 0 {
		return "", false
	}
	return m.Subject[m.loc[2*g]:m.loc[2*g+1]], true
}

// Get returns the value of the first participating slot recorded under field.
func (m *Match) Get(field string) (string, bool) {
	for _, slot := range m.expr.captures.Slots(field) {
		if v, ok := m.Slot(slot); ok {
			return v, true
		}
	}
	return "", false
}

// Values returns the values of every participating slot recorded under
// field, in slot order.
func (m *Match) Values(field string) []string {
	var values []string
	for _, slot := range m.expr.captures.Slots(field) {
		if v, ok := m.Slot(slot); ok {
			values = append(values, v)
		}
	}
	return values
}

// Fields returns each field's first participating value.
// It returns nil when nothing matched.
func (m *Match) Fields() map[string]string {
	if !m.Found {
		return nil
	}
	fields := make(map[string]string, len(m.expr.captures))
	for slot, name := range m.expr.captures {
		if _, seen := fields[name]; seen {
			continue
		}
		if v, ok := m.Slot(slot); ok {
			fields[name] = v
		}
	}
	return fields
}

// Captures returns every participating value grouped by field, in slot order.
// It returns nil when nothing matched.
func (m *Match) Captures() map[string][]string {
	if !m.Found {
		return nil
	}
	captures := make(map[string][]string, len(m.expr.captures))
	for slot, name := range m.expr.captures {
		if v, ok := m.Slot(slot); ok {
			captures[name] = append(captures[name], v)
		}
	}
	return captures
}
