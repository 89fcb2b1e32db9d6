package validation

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/input-output-hk/catalyst-forge-libs/transfer/errors"
)

// MaxGroupIDLength bounds the size of group identifiers.
const MaxGroupIDLength = 256

var mimePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-+.]*\/[a-zA-Z0-9][a-zA-Z0-9\-+.]*(\s*;.*)?$`)

// ValidateGroupID validates a group identifier. The empty id is valid and
// means "no group".
func ValidateGroupID(group string) error {
	if group == "" {
		return nil
	}
	if len(group) > MaxGroupIDLength {
		return errors.NewError("validateGroup", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("group id cannot exceed %d characters", MaxGroupIDLength))
	}
	if hasControlCharacters(group) {
		return errors.NewError("validateGroup", errors.ErrInvalidInput).
			WithMessage("group id cannot contain control characters")
	}
	return nil
}

// ValidateRequestURL parses raw and checks that its scheme is one of schemes.
func ValidateRequestURL(raw string, schemes ...string) (*url.URL, error) {
	if raw == "" {
		return nil, errors.NewError("validateURL", errors.ErrInvalidInput).
			WithMessage("url cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.NewError("validateURL", errors.ErrInvalidInput).WithMessage(err.Error())
	}

	if len(schemes) > 0 {
		ok := false
		for _, s := range schemes {
			if strings.EqualFold(u.Scheme, s) {
				ok = true
				break
			}
		}
		if !ok {
			return nil, errors.NewError("validateURL", errors.ErrUnsupported).
				WithMessage(fmt.Sprintf("scheme %q is not supported", u.Scheme))
		}
	}

	if u.Host == "" {
		return nil, errors.NewError("validateURL", errors.ErrInvalidInput).
			WithMessage("url must have a host")
	}

	return u, nil
}

// ParseS3URL splits an s3://bucket/key URL and validates both parts.
func ParseS3URL(raw string) (bucket, key string, err error) {
	u, err := ValidateRequestURL(raw, "s3")
	if err != nil {
		return "", "", err
	}

	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")

	if err := ValidateBucketName(bucket); err != nil {
		return "", "", err
	}
	if err := ValidateObjectKey(key); err != nil {
		return "", "", err
	}
	return bucket, key, nil
}

// ValidateBucketName validates that a bucket name is DNS-compliant according to AWS S3 rules.
// Returns ErrInvalidBucketName if the bucket name is invalid.
func ValidateBucketName(bucket string) error {
	invalid := func(msg string) error {
		return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
			WithMessage(fmt.Sprintf("%s: %q", msg, bucket))
	}

	// Bucket names must be between 3 and 63 characters long
	if len(bucket) < 3 || len(bucket) > 63 {
		return invalid("bucket name must be between 3 and 63 characters long")
	}

	for _, char := range bucket {
		if !isValidBucketChar(char) {
			return invalid("bucket name can only contain lowercase letters, numbers, dots, and hyphens")
		}
	}

	first, last := bucket[0], bucket[len(bucket)-1]
	if first == '-' || first == '.' || last == '-' || last == '.' {
		return invalid("bucket name cannot start or end with a hyphen or dot")
	}

	if isIPAddress(bucket) {
		return invalid("bucket name cannot be formatted as an IP address")
	}

	if strings.Contains(bucket, "..") || strings.Contains(bucket, "--") {
		return invalid("bucket name cannot contain two adjacent periods or hyphens")
	}

	return nil
}

// ValidateObjectKey validates that an object key is valid according to AWS S3 rules.
// This includes preventing path traversal attacks and ensuring valid characters.
func ValidateObjectKey(key string) error {
	if key == "" {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithMessage("object key cannot be empty")
	}

	if hasPathTraversal(key) {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithMessage("object key cannot contain path traversal sequences")
	}

	// S3 supports keys up to 1024 bytes
	if len(key) > 1024 {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithMessage("object key cannot exceed 1024 characters")
	}

	if hasControlCharacters(key) {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithMessage("object key cannot contain control characters")
	}

	return nil
}

// ValidateMetadata validates user metadata keys and values according to S3 rules.
func ValidateMetadata(metadata map[string]string) error {
	for key, value := range metadata {
		if key == "" || len(key) > 128 {
			return errors.NewError("validateMetadata", errors.ErrInvalidInput).
				WithMessage("metadata key must be between 1 and 128 characters")
		}

		lower := strings.ToLower(key)
		if strings.HasPrefix(lower, "aws:") || strings.HasPrefix(lower, "x-amz-") {
			return errors.NewError("validateMetadata", errors.ErrInvalidInput).
				WithMessage(fmt.Sprintf("metadata key %q uses a reserved prefix", key))
		}

		for _, char := range key {
			if char < 32 || char > 126 {
				return errors.NewError("validateMetadata", errors.ErrInvalidInput).
					WithMessage("metadata key can only contain printable ASCII characters")
			}
		}

		// S3 metadata values can be up to 2KB
		if len(value) > 2048 {
			return errors.NewError("validateMetadata", errors.ErrInvalidInput).
				WithMessage("metadata value cannot exceed 2048 characters")
		}
	}

	return nil
}

// ValidateContentType validates that a content type is a well-formed MIME type.
func ValidateContentType(contentType string) error {
	if contentType == "" {
		return nil
	}
	if !mimePattern.MatchString(contentType) {
		return errors.NewError("validateContentType", errors.ErrInvalidInput).
			WithMessage("content type must be a valid MIME type")
	}
	return nil
}

// isValidBucketChar checks if a character is valid in a bucket name
func isValidBucketChar(char rune) bool {
	return (char >= '0' && char <= '9') || (char >= 'a' && char <= 'z') || char == '.' || char == '-'
}

// isIPAddress checks if a string is formatted as an IP address
func isIPAddress(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}

	for _, part := range parts {
		if part == "" || len(part) > 3 {
			return false
		}
		num := 0
		for _, char := range part {
			if char < '0' || char > '9' {
				return false
			}
			num = num*10 + int(char-'0')
		}
		if num > 255 {
			return false
		}
	}

	return true
}

// hasPathTraversal checks for path traversal attempts in object keys
func hasPathTraversal(key string) bool {
	if strings.Contains(key, "..") {
		return true
	}

	cleaned := filepath.Clean(key)
	if strings.HasPrefix(cleaned, "/") {
		return true
	}

	// Windows-style absolute paths
	if len(cleaned) >= 3 && cleaned[1] == ':' && (cleaned[2] == '\\' || cleaned[2] == '/') {
		return true
	}

	return false
}

// hasControlCharacters checks for control characters in s
func hasControlCharacters(s string) bool {
	for _, char := range s {
		if unicode.IsControl(char) {
			return true
		}
	}
	return false
}
