package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey(42, "foodHandlerCert", "My Cert.PDF")
	assert.True(t, strings.HasPrefix(key, "applications/42/foodHandlerCert/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"), "extension is kept and lowercased")

	// the random segment makes repeat uploads collision free
	assert.NotEqual(t, key, ObjectKey(42, "foodHandlerCert", "My Cert.PDF"))

	assert.False(t, strings.Contains(ObjectKey(1, "kitchenPhoto", "photo"), "."),
		"no extension when the filename has none")
}

func TestKeyFromURL(t *testing.T) {
	u := &Uploader{Bucket: "localcooks-docs", Region: "us-east-1", PublicBaseURL: "https://cdn.localcooks.example"}

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"bucket url",
			"https://localcooks-docs.s3.us-east-1.amazonaws.com/applications/1/insurance/abc.pdf",
			"applications/1/insurance/abc.pdf",
		},
		{
			"public base url",
			"https://cdn.localcooks.example/applications/1/insurance/abc.pdf",
			"applications/1/insurance/abc.pdf",
		},
		{
			"already a key",
			"applications/1/insurance/abc.pdf",
			"applications/1/insurance/abc.pdf",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, u.KeyFromURL(tt.raw))
		})
	}
}
