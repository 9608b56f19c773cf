package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/lazymc-docker-proxy/internal/adapters/docker"
	"github.com/bft-labs/lazymc-docker-proxy/internal/adapters/fs"
	"github.com/bft-labs/lazymc-docker-proxy/internal/adapters/kubernetes"
	"github.com/bft-labs/lazymc-docker-proxy/internal/app"
	"github.com/bft-labs/lazymc-docker-proxy/internal/cliconfig"
	"github.com/bft-labs/lazymc-docker-proxy/internal/domain"
	"github.com/bft-labs/lazymc-docker-proxy/internal/groupconfig"
	"github.com/bft-labs/lazymc-docker-proxy/internal/metrics"
	"github.com/bft-labs/lazymc-docker-proxy/internal/ports"
	"github.com/bft-labs/lazymc-docker-proxy/pkg/log"
)

const longHelp = `Run one lazymc process per Minecraft server group and keep the backing
servers in sync with it.

Without a mode flag the proxy runs as the container entrypoint: it stops every
managed server, writes a lazymc configuration per group (from container labels,
or from LAZYMC_* environment variables), starts lazymc for each group and
forwards its logs. lazymc itself invokes the proxy with --command to start a
group's server, and the container health check invokes it with --health.`

var exampleUsage = strings.TrimSpace(`
  lazymc-docker-proxy
  lazymc-docker-proxy --backend kubernetes --k8s-namespace games --k8s-statefulset mc
  lazymc-docker-proxy --command --group survival
  lazymc-docker-proxy --health
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	logger := log.NewZerologAdapter()

	root := &cobra.Command{
		Use:           "lazymc-docker-proxy",
		Short:         "Supervise lazymc and start or stop Minecraft servers on demand",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath
			}
			fileLoaded := false
			if cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cliconfig.ApplyFileConfig(&cfg, fc, changed)
				fileLoaded = true
			} else if cfgPath != "" {
				return fmt.Errorf("config file %s does not exist", cfgPath)
			}

			// Environment overrides the file, flags override both.
			cliconfig.ApplyEnvConfig(&cfg, changed)

			if err := cfg.Validate(); err != nil {
				return err
			}
			log.SetLevel(cfg.Level())

			if cfg.Health {
				return fs.NewHealthFile(cfg.HealthFile).Check()
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			backend, err := newBackend(cfg, logger)
			if err != nil {
				return err
			}

			if cfg.Command {
				return app.RunCommand(ctx, app.CommandConfig{
					Group:   domain.Group(cfg.Group),
					Backend: backend,
					Logger:  logger,
				})
			}

			logger.Debug("configuration",
				ports.String("backend", cfg.Backend),
				ports.String("log_level", cfg.LogLevel),
				ports.String("config_dir", cfg.ConfigDir),
				ports.String("health_file", cfg.HealthFile))

			var collector ports.Metrics = ports.NoopMetrics{}
			if cfg.MetricsAddr != "" {
				c := metrics.NewCollector("")
				collector = c
				go func() {
					if err := c.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
						logger.Error("metrics server failed", ports.Err(err))
					}
				}()
			}

			if fileLoaded && !changed["log-level"] && os.Getenv(cliconfig.EnvLogLevel) == "" {
				w := cliconfig.NewLevelWatcher(cfgFile, log.SetLevel, logger)
				go func() {
					if err := w.Run(ctx); err != nil {
						logger.Warn("config watcher disabled", ports.Err(err))
					}
				}()
			}

			// Command mode runs as a child of lazymc and must target the same
			// backend resources as the daemon.
			groupOpts := groupconfig.Options{
				LazymcPath: cfg.LazymcPath,
				ConfigDir:  cfg.ConfigDir,
				Backend:    cfg.Backend,
			}
			if cfg.Backend == cliconfig.BackendKubernetes {
				groupOpts.K8sNamespace = cfg.K8sNamespace
				groupOpts.K8sStatefulSet = cfg.K8sStatefulSet
			}
			if fileLoaded {
				if abs, err := filepath.Abs(cfgFile); err == nil {
					groupOpts.ConfigPath = abs
				} else {
					groupOpts.ConfigPath = cfgFile
				}
			}

			return app.RunDaemon(ctx, app.DaemonConfig{
				Backend:      backend,
				Logger:       logger,
				Metrics:      collector,
				Health:       fs.NewHealthFile(cfg.HealthFile),
				GroupOptions: groupOpts,
			})
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", fmt.Sprintf("path to config file (default: %s)", cliconfig.DefaultConfigPath))
	root.Flags().BoolVar(&cfg.Command, "command", cfg.Command, "start a group's server and stop it on SIGTERM (invoked by lazymc)")
	root.Flags().StringVar(&cfg.Group, "group", cfg.Group, "group to start in command mode")
	root.Flags().BoolVar(&cfg.Health, "health", cfg.Health, "exit 0 if the proxy is healthy, 1 otherwise")
	root.Flags().StringVar(&cfg.Backend, "backend", cfg.Backend, "server backend: docker or kubernetes")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: error, warn, info, debug or trace")

	root.Flags().StringVar(&cfg.HealthFile, "health-file", cfg.HealthFile, "health flag file")
	root.Flags().StringVar(&cfg.LazymcPath, "lazymc-path", cfg.LazymcPath, "lazymc binary")
	root.Flags().StringVar(&cfg.ConfigDir, "config-dir", cfg.ConfigDir, "directory for generated lazymc configuration files")
	root.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address (disabled if empty)")

	root.Flags().StringVar(&cfg.K8sNamespace, "k8s-namespace", cfg.K8sNamespace, "namespace of the server StatefulSet")
	root.Flags().StringVar(&cfg.K8sStatefulSet, "k8s-statefulset", cfg.K8sStatefulSet, "name of the server StatefulSet")

	if err := root.Execute(); err != nil {
		logger.Error("lazymc-docker-proxy", ports.Err(err))
		os.Exit(1)
	}
}

func newBackend(cfg cliconfig.Config, logger ports.Logger) (ports.Backend, error) {
	switch cfg.Backend {
	case cliconfig.BackendKubernetes:
		return kubernetes.NewFromEnv(kubernetes.Config{
			Namespace:   cfg.K8sNamespace,
			StatefulSet: cfg.K8sStatefulSet,
		}, logger)
	default:
		return docker.New(logger)
	}
}
