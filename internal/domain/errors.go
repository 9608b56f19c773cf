package domain

import "errors"

// Domain errors represent error conditions in the proxy domain.
// They are returned wrapped and can be checked with errors.Is.
var (
	// ErrSpawn is returned when a group's lazymc process cannot be started.
	ErrSpawn = errors.New("lazymc-docker-proxy: spawn failed")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("lazymc-docker-proxy: invalid configuration")

	// ErrUnsupported is returned by a backend for an operation it cannot perform.
	ErrUnsupported = errors.New("lazymc-docker-proxy: operation not supported by backend")

	// ErrDuplicateGroup is returned when two configurations name the same group.
	ErrDuplicateGroup = errors.New("lazymc-docker-proxy: duplicate group")

	// ErrNoGroupConfig is returned when no group configuration could be resolved.
	ErrNoGroupConfig = errors.New("lazymc-docker-proxy: no group configuration")
)
