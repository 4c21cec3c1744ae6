// Package collect resolves a source descriptor into an ordered list of
// local file paths.
//
// This file defines sentinel errors and the classified wrapper for
// collection failures. Callers use errors.Is/errors.As for typed
// assertions rather than string matching. Every error surfaced by this
// package aborts the run; per-file read failures during processing are
// not collection failures and never appear here.
package collect

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for collection failure classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrInvalidSource indicates the descriptor does not name a usable
	// source (missing JSONL input, vanished directory, empty S3 bucket).
	ErrInvalidSource = errors.New("invalid source")

	// ErrArchiveRead indicates a zip archive could not be opened or an
	// entry could not be extracted.
	ErrArchiveRead = errors.New("archive read failed")

	// ErrCredentialsMissing indicates the AWS credential chain produced
	// no usable credentials.
	ErrCredentialsMissing = errors.New("credentials missing")

	// ErrRemoteList indicates S3 listing or object download failed.
	ErrRemoteList = errors.New("remote listing failed")

	// ErrMalformedRecord indicates a JSONL line could not be decoded.
	ErrMalformedRecord = errors.New("malformed record")
)

// Error wraps an underlying error with collection classification.
// It preserves the original error in the chain for inspection via errors.As.
type Error struct {
	// Kind is the sentinel error for classification (e.g., ErrArchiveRead).
	Kind error
	// Op is the operation that failed (e.g., "extract", "list", "download").
	Op string
	// Path is the descriptor, file, or object key involved, if any.
	Path string
	// Err is the underlying error.
	Err error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target sentinel.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// newError creates a classified collection error.
func newError(kind error, op, path string, err error) *Error {
	return &Error{
		Kind: kind,
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// classifyS3Error separates credential-chain failures from listing and
// download failures. Classification is based on message patterns because
// the SDK reports both through opaque wrapped errors.
func classifyS3Error(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()
	if containsAny(errStr,
		"NoCredentialProviders", "credentials",
		"InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken",
		"401", "Unauthorized", "no EC2 IMDS role found",
	) {
		return ErrCredentialsMissing
	}
	return ErrRemoteList
}

// containsAny checks if s contains any of the substrings (case-insensitive).
func containsAny(s string, substrs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrs {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
