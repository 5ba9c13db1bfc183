package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_SetKeepsPositionOnOverwrite(t *testing.T) {
	d := NewDocument(F("a", Int32(1)), F("b", Int32(2)), F("c", Int32(3)))
	d.Set("b", String("two"))

	assert.Equal(t, []string{"a", "b", "c"}, d.Keys())
	v, ok := d.Get("b")
	require.True(t, ok)
	assert.Equal(t, String("two"), v)
}

func TestDocument_NewDocumentRepeatedKey(t *testing.T) {
	d := NewDocument(F("x", Int32(1)), F("y", Int32(2)), F("x", Int32(3)))

	assert.Equal(t, 2, d.Len())
	assert.Equal(t, []string{"x", "y"}, d.Keys())
	v, _ := d.Get("x")
	assert.Equal(t, Int32(3), v)
}

func TestDocument_SetNilStoresNull(t *testing.T) {
	d := NewDocument()
	d.Set("k", nil)

	v, ok := d.Get("k")
	require.True(t, ok)
	assert.Equal(t, Null{}, v)
}

func TestDocument_Prepend(t *testing.T) {
	d := NewDocument(F("name", String("a")), F("_id", Int32(9)))
	d.Prepend("_id", Int32(1))

	assert.Equal(t, []string{"_id", "name"}, d.Keys())
	v, _ := d.Get("_id")
	assert.Equal(t, Int32(1), v)

	empty := &Document{}
	empty.Prepend("_id", String("x"))
	assert.Equal(t, []string{"_id"}, empty.Keys())
}

func TestDocument_Delete(t *testing.T) {
	d := NewDocument(F("a", Int32(1)), F("b", Int32(2)))

	assert.True(t, d.Delete("a"))
	assert.False(t, d.Delete("a"))
	assert.Equal(t, []string{"b"}, d.Keys())
	assert.False(t, d.Has("a"))
}

func TestDocument_Lookup(t *testing.T) {
	d := NewDocument(
		F("name", String("ada")),
		F("address", NewDocument(
			F("city", String("London")),
			F("geo", NewDocument(F("lat", Double(51.5)))),
		)),
		F("tags", Array{String("x")}),
	)

	tests := []struct {
		path  string
		want  Value
		found bool
	}{
		{"name", String("ada"), true},
		{"address.city", String("London"), true},
		{"address.geo.lat", Double(51.5), true},
		{"address.zip", nil, false},
		{"name.first", nil, false},
		{"tags.0", nil, false},
		{"missing.deep", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := d.Lookup(tt.path)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDocument_NilIsEmpty(t *testing.T) {
	var d *Document

	assert.Equal(t, 0, d.Len())
	assert.Empty(t, d.Keys())
	assert.Empty(t, d.Fields())
	_, ok := d.Get("x")
	assert.False(t, ok)
	assert.Nil(t, d.Clone())
}

func TestDocument_CloneIsDeep(t *testing.T) {
	inner := NewDocument(F("n", Int32(1)))
	d := NewDocument(F("inner", inner), F("bin", Binary{1, 2}), F("arr", Array{inner}))

	c := d.Clone()
	require.True(t, Equal(d, c))

	inner.Set("n", Int32(2))
	cv, _ := c.Lookup("inner.n")
	assert.Equal(t, Int32(1), cv)
	assert.False(t, Equal(d, c))
}

func TestDocument_Fields(t *testing.T) {
	d := NewDocument(F("a", Int32(1)), F("b", Null{}))

	assert.Equal(t, []Field{
		{Key: "a", Value: Int32(1)},
		{Key: "b", Value: Null{}},
	}, d.Fields())
}
