// Package validation provides centralized input validation logic.
// This includes group id validation, request URL validation, and the
// bucket/key rules the S3 transport enforces before calling AWS.
package validation
