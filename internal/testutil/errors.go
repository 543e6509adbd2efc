// Package testutil provides testing utilities for the task pool.
//
// This package contains mock errors used across test files. It should only
// be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for simulating failure scenarios in tests.
var (
	// ErrMockJob indicates a mock scheduled job failure.
	ErrMockJob = errors.New("job failed")
)
