package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrFiltered indicates a document is excluded from backup by
	// container/tag-page rules. Treated as a skip, never a failure.
	ErrFiltered = errors.New("document filtered")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoCollection indicates no vault collection is open.
	// Aborts the current backup or sync pass entirely.
	ErrNoCollection = errors.New("no collection open")

	// ErrNoProviders indicates no storage provider is enabled and initialized.
	ErrNoProviders = errors.New("no storage providers enabled")

	// ErrProviderNotReady indicates a provider was asked to operate
	// before successful initialization.
	ErrProviderNotReady = errors.New("provider not initialized")

	// ErrUnsupportedType indicates an unknown provider type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrCoalescerClosed indicates the change coalescer has been shut down
	// and no longer accepts events.
	ErrCoalescerClosed = errors.New("coalescer closed")
)
