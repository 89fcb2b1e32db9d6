package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/transfer/errors"
)

func TestValidateGroupID(t *testing.T) {
	tests := []struct {
		name    string
		group   string
		wantErr bool
	}{
		{"empty means no group", "", false},
		{"simple", "batch1", false},
		{"uuid", "2b1f4a8e-7c44-4a0e-9f59-1f0c7f8a1a52", false},
		{"too long", strings.Repeat("g", MaxGroupIDLength+1), true},
		{"control character", "batch\n1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGroupID(tt.group)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalidInput(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateRequestURL(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		schemes     []string
		wantErr     bool
		wantErrType error
	}{
		{"http", "http://example.com/file", []string{"http", "https"}, false, nil},
		{"https upper-case scheme", "HTTPS://example.com/file", []string{"http", "https"}, false, nil},
		{"any scheme", "ftp://example.com/file", nil, false, nil},
		{"empty", "", nil, true, errors.ErrInvalidInput},
		{"unsupported scheme", "ftp://example.com/file", []string{"http"}, true, errors.ErrUnsupported},
		{"missing host", "http:///file", []string{"http"}, true, errors.ErrInvalidInput},
		{"unparseable", "http://[::1", nil, true, errors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := ValidateRequestURL(tt.raw, tt.schemes...)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErrType)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, u)
		})
	}
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantBucket string
		wantKey    string
		wantErr    error
	}{
		{"valid", "s3://my-bucket/path/to/file.txt", "my-bucket", "path/to/file.txt", nil},
		{"wrong scheme", "https://my-bucket/file", "", "", errors.ErrUnsupported},
		{"missing key", "s3://my-bucket/", "", "", errors.ErrInvalidObjectKey},
		{"bad bucket", "s3://My_Bucket/file", "", "", errors.ErrInvalidBucketName},
		{"traversal", "s3://my-bucket/a/../../etc/passwd", "", "", errors.ErrInvalidObjectKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, err := ParseS3URL(tt.raw)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestValidateBucketName(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		wantErr bool
	}{
		{"valid", "my-bucket", false},
		{"valid with dots", "my.bucket.name", false},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", 64), true},
		{"uppercase", "MyBucket", true},
		{"starts with hyphen", "-bucket", true},
		{"ends with dot", "bucket.", true},
		{"ip address", "192.168.1.1", true},
		{"adjacent dots", "my..bucket", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBucketName(tt.bucket)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidBucketName)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateObjectKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"simple", "file.txt", false},
		{"nested", "a/b/c.bin", false},
		{"unicode", "données/été.txt", false},
		{"empty", "", true},
		{"traversal", "../secret", true},
		{"absolute", "/etc/passwd", true},
		{"windows absolute", "C:/windows", true},
		{"control char", "file\x00.txt", true},
		{"too long", strings.Repeat("k", 1025), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateObjectKey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidObjectKey)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateMetadata(t *testing.T) {
	assert.NoError(t, ValidateMetadata(nil))
	assert.NoError(t, ValidateMetadata(map[string]string{"owner": "forge"}))
	assert.Error(t, ValidateMetadata(map[string]string{"": "v"}))
	assert.Error(t, ValidateMetadata(map[string]string{"x-amz-meta": "v"}))
	assert.Error(t, ValidateMetadata(map[string]string{"key with\ttab": "v"}))
	assert.Error(t, ValidateMetadata(map[string]string{"k": strings.Repeat("v", 2049)}))
}

func TestValidateContentType(t *testing.T) {
	assert.NoError(t, ValidateContentType(""))
	assert.NoError(t, ValidateContentType("application/json"))
	assert.NoError(t, ValidateContentType("text/plain; charset=utf-8"))
	assert.NoError(t, ValidateContentType("application/vnd.api+json"))
	assert.Error(t, ValidateContentType("not a mime type"))
}
