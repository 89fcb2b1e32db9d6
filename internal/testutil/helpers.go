// Package testutil provides test helper functions.
package testutil

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// GenerateRandomData generates random bytes of the specified size.
func GenerateRandomData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(rand.Intn(256))
	}
	return data
}

// GenerateTestKey generates a test S3 object key with optional prefix.
func GenerateTestKey(prefix string) string {
	timestamp := time.Now().UnixNano()
	random := rand.Int63n(100000)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return fmt.Sprintf("%stest-object-%d-%d", prefix, timestamp, random)
}

// GenerateTestBucketName generates a valid test bucket name.
// Bucket names must be DNS-compliant and globally unique.
func GenerateTestBucketName(prefix string) string {
	if prefix == "" {
		prefix = "test"
	}
	return strings.ToLower(fmt.Sprintf("%s-bucket-%d", prefix, time.Now().UnixNano()%1_000_000_000))
}

// CalculateETag returns the quoted MD5 ETag S3 reports for a single-part object.
func CalculateETag(data []byte) string {
	sum := md5.Sum(data)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// CreateGetObjectOutput creates a GetObjectOutput serving data.
func CreateGetObjectOutput(data []byte, contentType string) *s3.GetObjectOutput {
	out := &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
		ETag:          aws.String(CalculateETag(data)),
	}
	if contentType != "" {
		out.ContentType = aws.String(contentType)
	}
	return out
}

// CreatePutObjectOutput creates a PutObjectOutput for the uploaded data.
func CreatePutObjectOutput(data []byte) *s3.PutObjectOutput {
	return &s3.PutObjectOutput{
		ETag: aws.String(CalculateETag(data)),
	}
}

// CreateHeadObjectOutput creates a HeadObjectOutput for an object of the given size.
func CreateHeadObjectOutput(size int64, contentType string) *s3.HeadObjectOutput {
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		ETag:          aws.String(`"head"`),
		Metadata:      map[string]string{},
	}
}
