// Package form turns a rendered authorization page into the url-encoded body
// posted back to the authorization endpoint.
package form

// Absent is the literal a server-templated model field carries when the
// underlying request parameter was not supplied.
const Absent = "None"

// Field is a single model field in page order.
type Field struct {
	Name  string
	Value string
}

// Model is the ordered set of authorization request fields read from a page.
// The zero value is an empty model.
type Model struct {
	fields []Field
}

// NewModel builds a model from fields, keeping their order.
// A repeated name overwrites the earlier value in its original position.
func NewModel(fields ...Field) Model {
	var m Model
	for _, f := range fields {
		m.Set(f.Name, f.Value)
	}
	return m
}

// Get returns the value of name and whether it is present.
func (m Model) Get(name string) (string, bool) {
	for _, f := range m.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Set replaces the value of name in place, or appends it.
func (m *Model) Set(name, value string) {
	for i := range m.fields {
		if m.fields[i].Name == name {
			m.fields[i].Value = value
			return
		}
	}
	m.fields = append(m.fields, Field{Name: name, Value: value})
}

// Fields returns a copy of the fields in page order.
func (m Model) Fields() []Field {
	out := make([]Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// Len returns the number of fields.
func (m Model) Len() int {
	return len(m.fields)
}

// Clone returns an independent copy of m.
func (m Model) Clone() Model {
	return Model{fields: m.Fields()}
}

// Normalize maps the Absent sentinel to an empty string.
func Normalize(value string) string {
	if value == Absent {
		return ""
	}
	return value
}
