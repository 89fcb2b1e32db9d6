// Package dispatch provides the execution contexts used to run transfer handlers.
//
// A Serial executor runs functions one at a time in submission order without
// blocking the submitter. Inline runs them on the calling goroutine.
package dispatch
