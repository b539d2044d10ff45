// Package httputil provides HTTP helpers shared by the tracetube API.
//
// # Overview
//
//   - [WriteJSON]: encode a response body with a status code
//   - [WriteError]: encode a structured error, with the status picked by
//     [StatusFor] from the error code
//   - [DecodeJSON]: decode a bounded request body, rejecting unknown fields
//
// # Error Responses
//
// Every error body has the same shape:
//
//	{"error": {"code": "CYCLE_DETECTED", "message": "the graph contains undirected cycles"}, "request_id": "..."}
//
// Trace validation failures map to 422 Unprocessable Entity, malformed
// requests to 400, unknown resources to 404 and everything else to 500.
package httputil
