// Package groupconfig resolves the configuration of each lazymc group,
// either from the labels of a managed container or from the environment,
// and renders the lazymc configuration file the group is started with.
package groupconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/bft-labs/lazymc-docker-proxy/internal/domain"
)

// Label keys. Environment variables use the same keys with the "lazymc."
// prefix replaced by "LAZYMC_", dots replaced by underscores, upper-cased.
const (
	LabelEnabled       = "lazymc.enabled"
	LabelGroup         = "lazymc.group"
	LabelServerAddress = "lazymc.server.address"
	LabelPort          = "lazymc.port"
)

const (
	DefaultPort              = 25565
	DefaultServerDirectory   = "/server"
	DefaultSleepAfter        = 60
	DefaultMinimumOnlineTime = 60
	DefaultLazymcPath        = "lazymc"
	DefaultConfigDir         = "/app/config"
)

// Options holds process-wide values every group configuration needs.
type Options struct {
	// LazymcPath is the lazymc binary to launch.
	LazymcPath string

	// ConfigDir receives the generated <group>.toml files.
	ConfigDir string

	// SelfPath is this binary, used as lazymc's server start command.
	SelfPath string

	// Backend is passed to the start command.
	Backend string

	// K8sNamespace and K8sStatefulSet are passed to the start command when
	// set, so command mode scales the same StatefulSet as the daemon.
	K8sNamespace   string
	K8sStatefulSet string

	// ConfigPath is the proxy's own config file, passed on when set.
	ConfigPath string
}

// startCommand returns the server start command lazymc runs for group.
func (o Options) startCommand(group string) string {
	args := []string{o.SelfPath, "--command", "--group", group, "--backend", o.Backend}
	if o.K8sNamespace != "" {
		args = append(args, "--k8s-namespace", o.K8sNamespace)
	}
	if o.K8sStatefulSet != "" {
		args = append(args, "--k8s-statefulset", o.K8sStatefulSet)
	}
	if o.ConfigPath != "" {
		args = append(args, "--config", o.ConfigPath)
	}
	return strings.Join(args, " ")
}

func (o Options) withDefaults() Options {
	if o.LazymcPath == "" {
		o.LazymcPath = DefaultLazymcPath
	}
	if o.ConfigDir == "" {
		o.ConfigDir = DefaultConfigDir
	}
	if o.SelfPath == "" {
		if exe, err := os.Executable(); err == nil {
			o.SelfPath = exe
		} else {
			o.SelfPath = os.Args[0]
		}
	}
	return o
}

// Config is the resolved configuration of one group.
type Config struct {
	Group    domain.Group
	Settings Settings
}

// FromLabels builds a group configuration from container labels.
func FromLabels(labels map[string]string, opts Options) (Config, error) {
	return build(func(key string) (string, bool) {
		v, ok := labels[key]
		return v, ok
	}, opts)
}

// FromEnv builds the single fallback group configuration from environment
// variables, read through lookup (os.LookupEnv in production).
func FromEnv(lookup func(string) (string, bool), opts Options) (Config, error) {
	return build(func(key string) (string, bool) {
		if v, ok := lookup(EnvKey(key)); ok {
			return v, ok
		}
		// older deployments set the server address without prefix
		if key == LabelServerAddress {
			return lookup("SERVER_ADDRESS")
		}
		return "", false
	}, opts)
}

// EnvKey returns the environment variable name of a label key.
func EnvKey(label string) string {
	k := strings.TrimPrefix(label, "lazymc.")
	k = strings.NewReplacer(".", "_", "-", "_").Replace(k)
	return "LAZYMC_" + strings.ToUpper(k)
}

func build(get func(string) (string, bool), opts Options) (Config, error) {
	opts = opts.withDefaults()
	r := &reader{get: get}

	group := r.required(LabelGroup)
	if group != "" && !validGroup(group) {
		r.fail(LabelGroup, fmt.Errorf("invalid group name %q", group))
	}

	s := Settings{}
	port := r.integer(LabelPort, DefaultPort)
	s.Public.Address = "0.0.0.0:" + strconv.Itoa(port)
	s.Public.Version = r.str("lazymc.public.version")
	s.Public.Protocol = r.integer("lazymc.public.protocol", 0)

	s.Server.Address = r.required(LabelServerAddress)
	s.Server.Directory = r.stringOr("lazymc.server.directory", DefaultServerDirectory)
	s.Server.Command = opts.startCommand(group)
	s.Server.FreezeProcess = false
	s.Server.WakeOnStart = r.boolean("lazymc.server.wake_on_start")
	s.Server.WakeOnCrash = r.boolean("lazymc.server.wake_on_crash")
	s.Server.ProbeOnStart = r.boolean("lazymc.server.probe_on_start")
	s.Server.Forge = r.boolean("lazymc.server.forge")
	s.Server.StartTimeout = r.integer("lazymc.server.start_timeout", 0)
	s.Server.StopTimeout = r.integer("lazymc.server.stop_timeout", 0)
	s.Server.WakeWhitelist = r.boolean("lazymc.server.wake_whitelist")
	s.Server.BlockBannedIPs = r.boolean("lazymc.server.block_banned_ips")
	s.Server.DropBannedIPs = r.boolean("lazymc.server.drop_banned_ips")
	s.Server.SendProxyV2 = r.boolean("lazymc.server.send_proxy_v2")

	s.Time.SleepAfter = r.integer("lazymc.time.sleep_after", DefaultSleepAfter)
	s.Time.MinimumOnlineTime = r.integer("lazymc.time.minimum_online_time", DefaultMinimumOnlineTime)

	s.Motd.Sleeping = r.str("lazymc.motd.sleeping")
	s.Motd.Starting = r.str("lazymc.motd.starting")
	s.Motd.Stopping = r.str("lazymc.motd.stopping")

	if methods := r.str("lazymc.join.methods"); methods != "" {
		for _, m := range strings.Split(methods, ",") {
			if m = strings.TrimSpace(m); m != "" {
				s.Join.Methods = append(s.Join.Methods, m)
			}
		}
	}

	s.Rcon.Enabled = r.boolean("lazymc.rcon.enabled")
	s.Rcon.Port = r.integer("lazymc.rcon.port", 0)
	s.Rcon.Password = r.str("lazymc.rcon.password")
	s.Rcon.RandomizePassword = r.boolean("lazymc.rcon.randomize_password")

	s.Advanced.RewriteServerProperties = r.boolean("lazymc.advanced.rewrite_server_properties")

	if r.err != nil {
		return Config{}, r.err
	}
	return Config{Group: domain.Group(group), Settings: s}, nil
}

// Render returns the lazymc configuration file contents.
func (c Config) Render() ([]byte, error) {
	return toml.Marshal(c.Settings)
}

// Path returns the configuration file path of the group inside dir.
func (c Config) Path(dir string) string {
	return filepath.Join(dir, c.Group.String()+".toml")
}

// Resolve writes the group's lazymc configuration file into opts.ConfigDir
// and returns the launch configuration for it.
func (c Config) Resolve(opts Options) (domain.GroupConfig, error) {
	opts = opts.withDefaults()

	data, err := c.Render()
	if err != nil {
		return domain.GroupConfig{}, fmt.Errorf("render config for group %s: %w", c.Group, err)
	}
	if err := os.MkdirAll(opts.ConfigDir, 0o755); err != nil {
		return domain.GroupConfig{}, fmt.Errorf("create config dir: %w", err)
	}
	path := c.Path(opts.ConfigDir)
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return domain.GroupConfig{}, fmt.Errorf("write config for group %s: %w", c.Group, err)
	}

	return domain.GroupConfig{
		Group: c.Group,
		Launch: domain.CommandSpec{
			Path: opts.LazymcPath,
			Args: []string{"start", "--config", path},
			Dir:  opts.ConfigDir,
		},
		ConfigFile: path,
	}, nil
}

func validGroup(g string) bool {
	for i := 0; i < len(g); i++ {
		c := g[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return g != "" && g != "." && g != ".."
}

var errMissing = errors.New("required value is missing")

// reader reads typed values and keeps the first error.
type reader struct {
	get func(string) (string, bool)
	err error
}

func (r *reader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfig, key, err)
	}
}

func (r *reader) str(key string) string {
	v, _ := r.get(key)
	return strings.TrimSpace(v)
}

func (r *reader) stringOr(key, def string) string {
	if v := r.str(key); v != "" {
		return v
	}
	return def
}

func (r *reader) required(key string) string {
	v := r.str(key)
	if v == "" {
		r.fail(key, errMissing)
	}
	return v
}

func (r *reader) integer(key string, def int) int {
	v := r.str(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return i
}

func (r *reader) boolean(key string) *bool {
	v := r.str(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, err)
		return nil
	}
	return &b
}
