// Package errors defines error types for the backend shell.
//
// This package provides structured error types for the failure points of a
// supervised backend: spawning it, reading its output, waiting for it and
// terminating it. All error types support error unwrapping and can be checked
// using errors.Is, errors.As, and errors.AsType.
package errors
