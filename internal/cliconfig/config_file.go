package cliconfig

import (
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultConfigPath is read when present and --config is not given.
const DefaultConfigPath = "/app/lazymc-docker-proxy.toml"

// FileConfig mirrors the settable parts of Config in TOML.
type FileConfig struct {
	Backend        string `toml:"backend"`
	LogLevel       string `toml:"log_level"`
	HealthFile     string `toml:"health_file"`
	LazymcPath     string `toml:"lazymc_path"`
	ConfigDir      string `toml:"config_dir"`
	MetricsAddr    string `toml:"metrics_addr"`
	K8sNamespace   string `toml:"k8s_namespace"`
	K8sStatefulSet string `toml:"k8s_statefulset"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) {
	s := newConfigSetter(changed)

	s.setString("backend", fc.Backend, &cfg.Backend)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("health-file", fc.HealthFile, &cfg.HealthFile)
	s.setString("lazymc-path", fc.LazymcPath, &cfg.LazymcPath)
	s.setString("config-dir", fc.ConfigDir, &cfg.ConfigDir)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)
	s.setString("k8s-namespace", fc.K8sNamespace, &cfg.K8sNamespace)
	s.setString("k8s-statefulset", fc.K8sStatefulSet, &cfg.K8sStatefulSet)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
