package uploads

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"   ", ""},
		{"abc.jpg", "/uploads/abc.jpg"},
		{"uploads/abc.jpg", "/uploads/abc.jpg"},
		{"/uploads/abc.jpg", "/uploads/abc.jpg"},
		{" /uploads/abc.jpg ", "/uploads/abc.jpg"},
		{"/abc.jpg", "/uploads/abc.jpg"},
		{"some/dir/abc.jpg", "/uploads/abc.jpg"},
		{"../../etc/passwd", "/uploads/passwd"},
		{"/../etc/passwd", "/uploads/../etc/passwd"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Canonical(tt.in), "Canonical(%q)", tt.in)
	}
}

func TestMatchesAllForms(t *testing.T) {
	for _, removal := range []string{"abc.jpg", "/uploads/abc.jpg", "uploads/abc.jpg"} {
		assert.True(t, Matches("/uploads/abc.jpg", removal), removal)
		assert.True(t, Matches("abc.jpg", removal), "legacy bare entry vs %s", removal)
	}
	assert.False(t, Matches("/uploads/abc.jpg", "abd.jpg"))
	assert.False(t, Matches("/uploads/abc.jpg", ""))
	assert.False(t, Matches("", "abc.jpg"))
}

func TestFilterPreservesOrder(t *testing.T) {
	images := []string{"/uploads/A.jpg", "/uploads/B.jpg", "/uploads/C.jpg"}
	assert.Equal(t, []string{"/uploads/A.jpg", "/uploads/C.jpg"}, Filter(images, []string{"B.jpg"}))
	assert.Equal(t, images, Filter(images, nil))
	assert.Empty(t, Filter(images, []string{"A.jpg", "uploads/B.jpg", "/uploads/C.jpg"}))
}
