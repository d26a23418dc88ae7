// Package remote is the shared HTTP client used by every proxy command that
// talks to the OCR, translation, and inpainting services.
//
// One Client wraps one *http.Client for the life of the daemon. Requests are
// single-attempt. Error text follows the format the front end matches on:
//
//	API Error: Status 500 Internal Server Error, Body: boom
//	Failed to parse JSON response: invalid character ...
//
// Every error unwraps to a services marker so transports can classify it.
package remote
