package cliconfig

import (
	"fmt"
	"strings"

	"github.com/bft-labs/lazymc-docker-proxy/internal/adapters/fs"
	"github.com/bft-labs/lazymc-docker-proxy/internal/groupconfig"
	"github.com/bft-labs/lazymc-docker-proxy/pkg/log"
)

// Backend names accepted by --backend.
const (
	BackendDocker     = "docker"
	BackendKubernetes = "kubernetes"
)

// DefaultStatefulSet is used for both the namespace and the StatefulSet name.
const DefaultStatefulSet = "minecraft"

// Config holds CLI configuration for lazymc-docker-proxy.
type Config struct {
	// Mode selection. Neither set means daemon mode.
	Command bool
	Group   string
	Health  bool

	Backend  string
	LogLevel string

	HealthFile  string
	LazymcPath  string
	ConfigDir   string
	MetricsAddr string

	K8sNamespace   string
	K8sStatefulSet string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Backend:        BackendDocker,
		LogLevel:       "info",
		HealthFile:     fs.DefaultHealthPath,
		LazymcPath:     groupconfig.DefaultLazymcPath,
		ConfigDir:      groupconfig.DefaultConfigDir,
		K8sNamespace:   DefaultStatefulSet,
		K8sStatefulSet: DefaultStatefulSet,
	}
}

// Validate checks the configuration for errors and normalizes values.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = BackendDocker
	}
	switch c.Backend {
	case BackendDocker:
	case BackendKubernetes:
		if c.K8sNamespace == "" || c.K8sStatefulSet == "" {
			return fmt.Errorf("k8s-namespace and k8s-statefulset are required for the kubernetes backend")
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendDocker, BackendKubernetes)
	}

	if _, err := log.ParseConfigLevel(c.LogLevel); err != nil {
		return err
	}

	if c.Command && c.Health {
		return fmt.Errorf("--command and --health are mutually exclusive")
	}
	if c.Command && c.Group == "" {
		return fmt.Errorf("--group is required with --command")
	}

	if c.HealthFile == "" {
		c.HealthFile = fs.DefaultHealthPath
	}
	if c.LazymcPath == "" {
		c.LazymcPath = groupconfig.DefaultLazymcPath
	}
	if c.ConfigDir == "" {
		c.ConfigDir = groupconfig.DefaultConfigDir
	}

	return nil
}

// Level returns the parsed log level. Only valid after Validate.
func (c Config) Level() log.Level {
	l, _ := log.ParseConfigLevel(c.LogLevel)
	return l
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}
