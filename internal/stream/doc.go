// Package stream holds the body plumbing shared by transports: opening an
// upload payload (possibly more than once), counting upload progress, and
// pumping a response body to an event sink in pooled chunks.
package stream
