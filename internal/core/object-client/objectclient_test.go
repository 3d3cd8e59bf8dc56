package objectclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix, name, want string
	}{
		{"", "a.pdf", "a.pdf"},
		{"resumes", "a.pdf", "resumes/a.pdf"},
		{"/resumes/", "a.pdf", "resumes/a.pdf"},
		{"resumes", "../../etc/a.pdf", "resumes/etc/a.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, objectKey(tt.prefix, tt.name), "%q + %q", tt.prefix, tt.name)
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", contentType("x.PDF"))
	assert.Equal(t, "application/octet-stream", contentType("x.bin"))
}
