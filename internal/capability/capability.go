// Package capability defines the fixed set of grantable scripts and the
// codec between the stored authorization value and its canonical in-memory
// form.  The stored value has accumulated three shapes over the project's
// life: a bare "1" meaning everything is granted, 0/NULL meaning nothing is,
// and the current JSON object mapping script name to a boolean.  Decode
// accepts all three; Encode only ever emits the JSON object.
package capability

import (
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
)

// Script identifiers.  Adding a script means adding a constant here and
// extending Known; nothing else in the engine enumerates them.
const (
	Mine    = "mine"
	Oskolki = "oskolki"
)

// Known returns the full list of script names, in stable order.
func Known() []string {
	return []string{Mine, Oskolki}
}

// IsKnown reports whether name is a recognized script.
func IsKnown(name string) bool {
	for _, k := range Known() {
		if k == name {
			return true
		}
	}
	return false
}

// Set maps script name to granted.  Absence of a key means false.  A nil Set
// means "no access at all" and is the decode result for every stored value
// that does not grant anything.
type Set map[string]bool

// Decode normalizes a stored authorization value.  Rules, in order:
//  1. NULL, "0", empty, or structurally broken JSON -> nil.
//  2. the legacy marker "1" -> every known script granted.
//  3. a JSON object -> taken as-is.
// A decoded set with nothing granted collapses to nil: a cleared grant is
// indistinguishable from one that never existed, so ambiguous state fails
// closed.
func Decode(raw sql.NullString) Set {
	if !raw.Valid {
		return nil
	}
	v := strings.TrimSpace(raw.String)
	switch v {
	case "", "0":
		return nil
	case "1":
		all := Set{}
		for _, name := range Known() {
			all[name] = true
		}
		return all
	}
	if !strings.HasPrefix(v, "{") {
		return nil
	}
	var s Set
	if err := json.Unmarshal([]byte(v), &s); err != nil {
		return nil
	}
	if !s.Any() {
		return nil
	}
	return s
}

// Encode serializes a Set in canonical form.  Keys are emitted in sorted
// order so encoded values are stable across runs; legacy markers are never
// re-emitted.
func Encode(s Set) string {
	if s == nil {
		s = Set{}
	}
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kj, _ := json.Marshal(k)
		b.Write(kj)
		b.WriteByte(':')
		if s[k] {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	}
	b.WriteByte('}')
	return b.String()
}

// Any reports whether at least one script is granted.
func (s Set) Any() bool {
	for _, v := range s {
		if v {
			return true
		}
	}
	return false
}

// Has reports whether the named script is granted.
func (s Set) Has(name string) bool {
	return s[name]
}

// Merge returns a copy of s with every granted entry of grant set to true.
// It never turns an existing grant off, so it is safe as the decision step
// of both the initial and the additional-access flows.
func (s Set) Merge(grant Set) Set {
	out := Set{}
	for k, v := range s {
		out[k] = v
	}
	for k, v := range grant {
		if v {
			out[k] = true
		}
	}
	return out
}

// Granted returns the granted script names in Known order.
func (s Set) Granted() []string {
	var out []string
	for _, name := range Known() {
		if s[name] {
			out = append(out, name)
		}
	}
	return out
}

// Missing returns the known scripts not granted in s, in Known order.
func (s Set) Missing() []string {
	var out []string
	for _, name := range Known() {
		if !s[name] {
			out = append(out, name)
		}
	}
	return out
}

// FromNames builds a Set granting exactly the given script names.
func FromNames(names []string) Set {
	s := Set{}
	for _, n := range names {
		s[n] = true
	}
	return s
}

// Flags collapses a Set into a compact present/absent string such as "m1o0".
// It rides inside reviewer notifications so a decision can be correlated with
// the request without a database round-trip.
func Flags(s Set) string {
	var b strings.Builder
	for _, name := range Known() {
		b.WriteByte(name[0])
		if s[name] {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
