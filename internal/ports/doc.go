// Package ports defines the interfaces that connect the application layer
// to infrastructure adapters.
//
// # Port Interfaces
//
//   - [Backend]: lifecycle of the compute resource behind a group
//   - [HealthReporter]: the process-wide health flag
//   - [Metrics]: counters recorded by the control loop
//   - [Logger]: structured logging abstraction
//
// The application layer (internal/app) depends only on these interfaces.
// Adapters in internal/adapters implement them for Docker, Kubernetes and
// the file system.
package ports
