// Package httputil provides the JSON response helpers shared by the
// controllers and handlers so every endpoint writes the same error envelope.
package httputil
