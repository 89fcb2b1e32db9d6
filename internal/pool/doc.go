// Package pool provides reusable read buffers for transports.
//
// Transports read response bodies in fixed-size chunks and hand each chunk
// to the event sink. The sink copies what it keeps, so the chunk buffer can
// go straight back to the pool once the callback returns.
package pool
