package usecase

import (
	"errors"
	"fmt"
)

// Store sentinels. Backends must return these, wrapped or not.
var (
	ErrDuplicateLead = errors.New("lead already exists")
	ErrLeadNotFound  = errors.New("lead not found")
)

// ValidationError rejects malformed intake input. Never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigError means a provider credential or identifier is missing. The
// dispatcher fails fast on it: retrying cannot make configuration appear.
type ConfigError struct {
	Provider string
	Key      string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s is not configured", e.Provider, e.Key)
}

// ProviderError is a transport or API failure talking to the provider.
// Retryable up to the dispatcher's ceiling.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("failed to create %s call: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// StorageError wraps a persistence backend failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// DispatchError carries the lead that was already persisted when the call
// could not be placed, so handlers can report 502 with the lead on file.
type DispatchError struct {
	LeadID string
	Err    error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch failed for lead %s: %v", e.LeadID, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}
