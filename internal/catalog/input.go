package catalog

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CreateInput carries the optional product fields of a new record.
// Nil or invalid values are stored as NULL.
type CreateInput struct {
	Name        *string
	Department  *string
	Category    *string
	Subcategory *string
	Brand       *string
	ActualPrice decimal.NullDecimal
	Discount    *int
	FinalPrice  decimal.NullDecimal
	Stock       *int
	Description *string
	Attributes  map[string]string
}

// UpdateInput carries the field overrides of an edit. Numeric fields that
// could not be parsed are already 0, strings that were absent are nil.
type UpdateInput struct {
	Name        *string
	Category    *string
	Brand       *string
	ActualPrice decimal.Decimal
	Discount    int
	FinalPrice  decimal.Decimal
	Stock       int
	Description *string
	Attributes  map[string]any
}

// OptionalString returns nil for blank input.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func OptionalInt(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

func OptionalDecimal(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// IntOrZero parses s, falling back to 0.
func IntOrZero(s string) int {
	if n := OptionalInt(s); n != nil {
		return *n
	}
	return 0
}

// DecimalOrZero parses s, falling back to 0.
func DecimalOrZero(s string) decimal.Decimal {
	if d := OptionalDecimal(s); d.Valid {
		return d.Decimal
	}
	return decimal.Zero
}

// ParseAttributes decodes a JSON object. Anything else yields an empty map
// and ok == false.
func ParseAttributes(raw string) (attrs map[string]any, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, true
	}
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil || attrs == nil {
		return map[string]any{}, false
	}
	return attrs, true
}

// ParseRemovedRefs accepts the removedImages form value as a JSON array or
// a comma separated list. Several form values are merged. Blank entries
// are dropped.
func ParseRemovedRefs(values ...string) []string {
	var refs []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		var decoded []any
		if err := json.Unmarshal([]byte(v), &decoded); err == nil {
			for _, item := range decoded {
				if s, ok := item.(string); ok {
					refs = appendNonBlank(refs, s)
				}
			}
			continue
		}
		var single string
		if err := json.Unmarshal([]byte(v), &single); err == nil {
			refs = appendNonBlank(refs, single)
			continue
		}
		refs = appendNonBlank(refs, strings.Split(v, ",")...)
	}
	return refs
}

func appendNonBlank(dst []string, values ...string) []string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			dst = append(dst, v)
		}
	}
	return dst
}

// FullCategory joins the non-empty hierarchy levels with " > ".
func FullCategory(levels ...*string) string {
	parts := make([]string, 0, len(levels))
	for _, l := range levels {
		if l != nil && strings.TrimSpace(*l) != "" {
			parts = append(parts, strings.TrimSpace(*l))
		}
	}
	return strings.Join(parts, " > ")
}
