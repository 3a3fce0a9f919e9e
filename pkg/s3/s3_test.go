package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name       string
		endpoint   string
		disableSSL bool
		region     string
		want       string
	}{
		{"aws default region", "", false, "", "https://media.s3.us-east-1.amazonaws.com/avatars/u1/a.png"},
		{"aws region", "", false, "eu-west-3", "https://media.s3.eu-west-3.amazonaws.com/avatars/u1/a.png"},
		{"minio http", "http://localhost:9000", true, "us-east-1", "http://localhost:9000/media/avatars/u1/a.png"},
		{"minio https", "https://minio.internal/", false, "us-east-1", "https://minio.internal/media/avatars/u1/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publicURL(tt.endpoint, tt.disableSSL, tt.region, "media", "avatars/u1/a.png"))
		})
	}
}
