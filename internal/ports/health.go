package ports

// HealthReporter flips the process-wide health flag read by --health.
type HealthReporter interface {
	Healthy() error
	Unhealthy() error
}
