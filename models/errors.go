package models

import (
	"errors"
	"fmt"
)

// InvalidEntityError marks a data-integrity problem on an ERP record that no
// amount of retrying will fix (e.g. a customer without a display name). It
// aborts only the entity it belongs to.
type InvalidEntityError struct {
	Doctype string
	Name    string
	Reason  string
}

func (e *InvalidEntityError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Doctype, e.Name, e.Reason)
}

func IsInvalidEntity(err error) bool {
	var target *InvalidEntityError
	return errors.As(err, &target)
}

// MissingConfigurationError affects every entity in a run identically, so the
// batch must refuse to start rather than skip entities one by one.
type MissingConfigurationError struct {
	Field  string
	Reason string
}

func (e *MissingConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("missing configuration %s: %s", e.Field, e.Reason)
	}
	return "missing configuration: " + e.Reason
}

func IsMissingConfiguration(err error) bool {
	var target *MissingConfigurationError
	return errors.As(err, &target)
}

// RemoteCallError wraps a failed call against either side's REST API,
// keeping the provider's structured error detail when one was returned.
type RemoteCallError struct {
	System     string // "qbo" or "frappe"
	Op         string
	StatusCode int
	Detail     string
	Err        error
}

func (e *RemoteCallError) Error() string {
	msg := fmt.Sprintf("%s %s failed", e.System, e.Op)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Detail != "" {
		msg = msg + ": " + e.Detail
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

func IsRemoteCall(err error) bool {
	var target *RemoteCallError
	return errors.As(err, &target)
}
