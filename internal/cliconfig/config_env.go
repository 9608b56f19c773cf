package cliconfig

import "os"

// Environment variables read by ApplyEnvConfig. The group of command mode is
// only ever passed as a flag: LAZYMC_GROUP configures the fallback group.
const (
	EnvBackend        = "LAZYMC_BACKEND"
	EnvLogLevel       = "LAZYMC_LOG_LEVEL"
	EnvHealthFile     = "LAZYMC_HEALTH_FILE"
	EnvLazymcPath     = "LAZYMC_BINARY"
	EnvConfigDir      = "LAZYMC_CONFIG_DIR"
	EnvMetricsAddr    = "LAZYMC_METRICS_ADDR"
	EnvK8sNamespace   = "LAZYMC_K8S_NAMESPACE"
	EnvK8sStatefulSet = "LAZYMC_K8S_STATEFULSET"
)

// ApplyEnvConfig applies configuration from environment variables (LAZYMC_*).
// It respects flags that have been explicitly set (changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) {
	s := newConfigSetter(changed)

	s.setString("backend", os.Getenv(EnvBackend), &cfg.Backend)
	s.setString("log-level", os.Getenv(EnvLogLevel), &cfg.LogLevel)
	s.setString("health-file", os.Getenv(EnvHealthFile), &cfg.HealthFile)
	s.setString("lazymc-path", os.Getenv(EnvLazymcPath), &cfg.LazymcPath)
	s.setString("config-dir", os.Getenv(EnvConfigDir), &cfg.ConfigDir)
	s.setString("metrics-addr", os.Getenv(EnvMetricsAddr), &cfg.MetricsAddr)
	s.setString("k8s-namespace", os.Getenv(EnvK8sNamespace), &cfg.K8sNamespace)
	s.setString("k8s-statefulset", os.Getenv(EnvK8sStatefulSet), &cfg.K8sStatefulSet)
}
