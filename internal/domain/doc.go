// Package domain contains the core types of lazymc-docker-proxy.
//
// Types defined here have no dependencies on infrastructure and are
// shared by the application layer (internal/app), the ports and the
// adapters.
//
// # Types
//
//   - [Group]: name of one supervised server
//   - [GroupConfig]: resolved launch configuration of a group
//   - [LogEvent]: a structured line parsed from lazymc output
//   - [BackendAction]: the backend operations, used as log and metric labels
package domain
