package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestParseRemovedRefs(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{"json array", []string{`["/uploads/a.jpg","b.jpg"]`}, []string{"/uploads/a.jpg", "b.jpg"}},
		{"comma fallback", []string{"a.jpg,b.jpg"}, []string{"a.jpg", "b.jpg"}},
		{"comma with spaces and blanks", []string{" a.jpg , ,b.jpg,"}, []string{"a.jpg", "b.jpg"}},
		{"single json string", []string{`"a.jpg"`}, []string{"a.jpg"}},
		{"several form values", []string{"a.jpg", `["b.jpg"]`}, []string{"a.jpg", "b.jpg"}},
		{"non-string entries skipped", []string{`[1,"a.jpg",null,{"x":1}]`}, []string{"a.jpg"}},
		{"only non-string entries", []string{`[1,2]`}, nil},
		{"empty", []string{""}, nil},
		{"none", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRemovedRefs(tt.values...))
		})
	}
}

func TestJSONAndCommaFormsAreEquivalent(t *testing.T) {
	assert.Equal(t, ParseRemovedRefs(`["a.jpg","b.jpg"]`), ParseRemovedRefs("a.jpg,b.jpg"))
}

func TestFullCategory(t *testing.T) {
	assert.Equal(t, "Men", FullCategory(strPtr("Men"), nil, nil))
	assert.Equal(t, "Men > Shirts > Formal", FullCategory(strPtr("Men"), strPtr("Shirts"), strPtr("Formal")))
	assert.Equal(t, "Men > Formal", FullCategory(strPtr("Men"), strPtr(" "), strPtr("Formal")))
	assert.Equal(t, "", FullCategory(nil, nil, nil))
}

func TestNumericParsing(t *testing.T) {
	assert.Equal(t, 0, IntOrZero("abc"))
	assert.Equal(t, 7, IntOrZero(" 7 "))
	assert.True(t, DecimalOrZero("").Equal(decimal.Zero))
	assert.True(t, DecimalOrZero("19.99").Equal(decimal.RequireFromString("19.99")))

	assert.Nil(t, OptionalInt(""))
	assert.False(t, OptionalDecimal("n/a").Valid)
	assert.Nil(t, OptionalString("   "))
	assert.Equal(t, "x", *OptionalString(" x "))
}

func TestParseAttributes(t *testing.T) {
	attrs, ok := ParseAttributes(`{"size":"M","color":"red"}`)
	assert.True(t, ok)
	assert.Equal(t, map[string]any{"size": "M", "color": "red"}, attrs)

	attrs, ok = ParseAttributes("")
	assert.True(t, ok)
	assert.Empty(t, attrs)

	attrs, ok = ParseAttributes("not json")
	assert.False(t, ok)
	assert.Empty(t, attrs)
}
