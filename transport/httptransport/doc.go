// Package httptransport implements transfertypes.Transport over net/http.
//
// Each transfer runs on its own goroutine. Uploads report progress as the
// request body is read; downloads are streamed to the event sink in chunks.
// A 401 response that carries a WWW-Authenticate header is turned into a
// *Challenge and offered to the sink before the response is delivered.
package httptransport
