// Package apperr defines the closed set of user-facing failure kinds and the
// pure functions that classify errors, map them to exit codes and render them.
package apperr

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind classifies a failure for the user
type Kind int

const (
	KindUnexpected Kind = iota
	KindLocalConfig
	KindRemoteConfig
	KindNetwork
	KindAuthentication
	KindValidation
	KindStageAggregate
	KindPartialDeployment
)

// String returns the one-line classification shown to users
func (k Kind) String() string {
	switch k {
	case KindLocalConfig:
		return "Local configuration error"
	case KindRemoteConfig:
		return "Remote configuration error"
	case KindNetwork:
		return "Network error"
	case KindAuthentication:
		return "Authentication error"
	case KindValidation:
		return "Validation error"
	case KindStageAggregate:
		return "Stage partially failed"
	case KindPartialDeployment:
		return "Deployment partially completed"
	default:
		return "Unexpected error"
	}
}

// Detail is one key/value line of context
type Detail struct {
	Key   string
	Value string
}

// Error is a classified failure
type Error struct {
	Kind        Kind
	Message     string
	Details     []Detail
	Suggestions []string
	Timeout     bool // remote retrieval exceeded its deadline
	Err         error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// With appends a detail and returns the error for chaining
func (e *Error) With(key string, value interface{}) *Error {
	e.Details = append(e.Details, Detail{Key: key, Value: fmt.Sprint(value)})
	return e
}

// Kinded is implemented by structured errors defined outside this package
// (stage aggregates, partial deployments) so they classify without an import cycle.
type Kinded interface {
	ErrorKind() Kind
}

// LocalConfig wraps a failure to load or parse the local configuration file
func LocalConfig(path string, err error) *Error {
	e := &Error{Kind: KindLocalConfig, Message: "failed to load local configuration", Err: err}
	if path != "" {
		e.With("file", path)
	}
	return e
}

// RemoteConfig wraps a failure to retrieve the remote configuration
func RemoteConfig(err error) *Error {
	return &Error{Kind: KindRemoteConfig, Message: "failed to retrieve remote configuration", Err: err}
}

// RemoteTimeout reports that remote retrieval exceeded its deadline
func RemoteTimeout(after time.Duration) *Error {
	return &Error{
		Kind:    KindRemoteConfig,
		Message: fmt.Sprintf("timed out retrieving remote configuration after %s", after),
		Timeout: true,
	}
}

// Validation reports invalid user input
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Validationf is Validation with formatting
func Validationf(format string, args ...interface{}) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// Network wraps a transport failure
func Network(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "could not reach the remote instance", Err: err}
}

// Authentication wraps a rejected credential
func Authentication(err error) *Error {
	return &Error{Kind: KindAuthentication, Message: "the remote instance rejected the credentials", Err: err}
}

// Is reports whether err is classified as kind
func Is(err error, kind Kind) bool {
	return err != nil && Classify(err) == kind
}

// Classify maps any error to a Kind. Typed errors win; plain errors fall back
// to message heuristics.
func Classify(err error) Kind {
	if err == nil {
		return KindUnexpected
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	var k Kinded
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	return classifyMessage(err.Error())
}

var (
	authPatterns = []string{
		"unauthorized", "unauthenticated", "forbidden", "401", "403",
		"authentication", "invalid token", "token is invalid", "expired token",
		"permission denied", "you do not have permission",
	}
	networkPatterns = []string{
		"econnrefused", "connection refused", "enotfound", "no such host",
		"etimedout", "timeout", "deadline exceeded", "connection reset",
		"dial tcp", "network is unreachable", "unexpected eof",
	}
	validationPatterns = []string{
		"validation", "invalid", "is required", "must be", "duplicate",
	}
)

func classifyMessage(msg string) Kind {
	lower := strings.ToLower(msg)
	switch {
	case containsAny(lower, authPatterns):
		return KindAuthentication
	case containsAny(lower, networkPatterns):
		return KindNetwork
	case containsAny(lower, validationPatterns):
		return KindValidation
	default:
		return KindUnexpected
	}
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
