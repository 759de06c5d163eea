package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ImageList is the ordered list of image references stored in a JSON
// column. Rows written before the column held JSON may contain a single
// bare path; Scan turns those into a one-element list.
type ImageList []string

// ParseImageList decodes a stored images value. It never fails: anything
// that is not a JSON array of strings is treated as one bare reference.
func ParseImageList(raw []byte) ImageList {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ImageList{}
	}

	switch raw[0] {
	case '[':
		var items []any
		if err := json.Unmarshal(raw, &items); err != nil {
			return ImageList{string(raw)}
		}
		out := make(ImageList, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s == "" {
				return ImageList{}
			}
			return ImageList{s}
		}
	}
	return ImageList{string(raw)}
}

func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		l = ImageList{}
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *ImageList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = ImageList{}
	case []byte:
		*l = ParseImageList(v)
	case string:
		*l = ParseImageList([]byte(v))
	default:
		return fmt.Errorf("models: cannot scan %T into ImageList", value)
	}
	return nil
}

// GormDataType stores the list in a JSON column on every dialect.
func (ImageList) GormDataType() string {
	return "json"
}

// MarshalJSON renders a nil list as [] rather than null.
func (l ImageList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}
