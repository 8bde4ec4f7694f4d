package form

import (
	"net/url"
	"strings"

	"github.com/godel-oidc/authflow/internal/config"
)

// Pair is one key/value of an encoded body.
type Pair struct {
	Key   string
	Value string
}

// Body is an immutable ordered key/value sequence ready for url-encoding.
type Body struct {
	pairs []Pair
}

// NewBody builds a body from pairs, normalizing the Absent sentinel.
func NewBody(pairs ...Pair) Body {
	out := make([]Pair, len(pairs))
	for i, p := range pairs {
		out[i] = Pair{Key: p.Key, Value: Normalize(p.Value)}
	}
	return Body{pairs: out}
}

// Pairs returns a copy of the pairs in insertion order.
func (b Body) Pairs() []Pair {
	out := make([]Pair, len(b.pairs))
	copy(out, b.pairs)
	return out
}

// Get returns the first value for key.
func (b Body) Get(key string) (string, bool) {
	for _, p := range b.pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Len returns the number of pairs.
func (b Body) Len() int {
	return len(b.pairs)
}

// Encode returns the application/x-www-form-urlencoded form of b in insertion order.
func (b Body) Encode() string {
	var sb strings.Builder
	for i, p := range b.pairs {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
	}
	return sb.String()
}

// Values converts b to url.Values. Key order is lost.
func (b Body) Values() url.Values {
	v := url.Values{}
	for _, p := range b.pairs {
		v.Add(p.Key, p.Value)
	}
	return v
}

// Builder merges a page model with the entered credentials.
// The zero value uses config.ScopeBoth.
type Builder struct {
	Policy config.ScopePolicy
}

// Build produces the authorize body. Model fields keep page order with Absent
// values sent empty; the merged scope and the discrete credential fields are
// added according to the policy.
func (b Builder) Build(m Model, username, password string) Body {
	policy := b.Policy
	if policy == "" {
		policy = config.ScopeBoth
	}
	explicit := policy == config.ScopeExplicit || policy == config.ScopeBoth
	merged := policy == config.ScopeMerged || policy == config.ScopeBoth

	details := m.Clone()

	if merged {
		fragment := "&username=" + username + "&password=" + password
		if scope, ok := details.Get("scope"); !ok || scope == Absent {
			details.Set("scope", fragment[1:])
		} else {
			details.Set("scope", scope+fragment)
		}
	}

	pairs := make([]Pair, 0, details.Len()+2)
	for _, f := range details.Fields() {
		if explicit && (f.Name == "username" || f.Name == "password") {
			continue
		}
		pairs = append(pairs, Pair{Key: f.Name, Value: Normalize(f.Value)})
	}
	if explicit {
		pairs = append(pairs,
			Pair{Key: "username", Value: username},
			Pair{Key: "password", Value: password},
		)
	}
	return Body{pairs: pairs}
}
