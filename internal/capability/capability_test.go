package capability

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func raw(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func TestDecodeLegacyAll(t *testing.T) {
	for _, v := range []string{"1", " 1 "} {
		s := Decode(raw(v))
		assert.NotNil(t, s, "raw=%q", v)
		for _, name := range Known() {
			assert.True(t, s.Has(name), "raw=%q cap=%s", v, name)
		}
	}
}

func TestDecodeNoAccess(t *testing.T) {
	cases := []sql.NullString{
		{},          // NULL
		raw("0"),
		raw(""),
		raw("2"),
		raw("garbage"),
		raw("{not json"),
		raw(`{"mine": "yes"}`), // non-boolean value
		raw(`[true]`),
	}
	for _, c := range cases {
		assert.Nil(t, Decode(c), "raw=%q valid=%v", c.String, c.Valid)
	}
}

func TestDecodeStructured(t *testing.T) {
	s := Decode(raw(`{"mine": true, "oskolki": false}`))
	assert.True(t, s.Has(Mine))
	assert.False(t, s.Has(Oskolki))
}

func TestDecodeAllFalseFailsClosed(t *testing.T) {
	// A grant with nothing set is the same as no grant at all.
	assert.Nil(t, Decode(raw(`{"mine": false, "oskolki": false}`)))
	assert.Nil(t, Decode(raw(`{}`)))
}

func TestEncodeCanonical(t *testing.T) {
	s := Set{Oskolki: true, Mine: false}
	assert.Equal(t, `{"mine":false,"oskolki":true}`, Encode(s))
	assert.Equal(t, `{}`, Encode(nil))

	// Round trip keeps the grant.
	back := Decode(raw(Encode(s)))
	assert.True(t, back.Has(Oskolki))
	assert.False(t, back.Has(Mine))
}

func TestMergeNeverRevokes(t *testing.T) {
	current := Set{Mine: true}
	merged := current.Merge(Set{Oskolki: true, Mine: false})
	assert.True(t, merged.Has(Mine), "merge must not drop an existing grant")
	assert.True(t, merged.Has(Oskolki))
	// Merge returns a copy.
	assert.False(t, current.Has(Oskolki))
}

func TestMissing(t *testing.T) {
	assert.Equal(t, []string{Oskolki}, Set{Mine: true}.Missing())
	assert.Equal(t, Known(), Set{}.Missing())
	assert.Empty(t, Set{Mine: true, Oskolki: true}.Missing())
}

func TestFlags(t *testing.T) {
	assert.Equal(t, "m1o0", Flags(Set{Mine: true}))
	assert.Equal(t, "m0o1", Flags(Set{Oskolki: true}))
	assert.Equal(t, "m0o0", Flags(nil))
}
