package groupconfig

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/lazymc-docker-proxy/internal/domain"
)

var testOpts = Options{
	LazymcPath: "/usr/local/bin/lazymc",
	SelfPath:   "/usr/local/bin/lazymc-docker-proxy",
	Backend:    "docker",
}

func TestFromLabels_Defaults(t *testing.T) {
	cfg, err := FromLabels(map[string]string{
		LabelEnabled:       "true",
		LabelGroup:         "survival",
		LabelServerAddress: "mc-survival:25565",
	}, testOpts)
	require.NoError(t, err)

	assert.Equal(t, domain.Group("survival"), cfg.Group)
	assert.Equal(t, "0.0.0.0:25565", cfg.Settings.Public.Address)
	assert.Equal(t, "mc-survival:25565", cfg.Settings.Server.Address)
	assert.Equal(t, DefaultServerDirectory, cfg.Settings.Server.Directory)
	assert.Equal(t, "/usr/local/bin/lazymc-docker-proxy --command --group survival --backend docker", cfg.Settings.Server.Command)
	assert.False(t, cfg.Settings.Server.FreezeProcess)
	assert.Equal(t, DefaultSleepAfter, cfg.Settings.Time.SleepAfter)
	assert.Equal(t, DefaultMinimumOnlineTime, cfg.Settings.Time.MinimumOnlineTime)
	assert.Nil(t, cfg.Settings.Server.WakeOnStart)
}

func TestFromLabels_StartCommand(t *testing.T) {
	labels := map[string]string{
		LabelGroup:         "survival",
		LabelServerAddress: "mc:25565",
	}

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{
			name: "docker",
			opts: Options{SelfPath: "/app/proxy", Backend: "docker"},
			want: "/app/proxy --command --group survival --backend docker",
		},
		{
			name: "kubernetes target",
			opts: Options{SelfPath: "/app/proxy", Backend: "kubernetes", K8sNamespace: "games", K8sStatefulSet: "mc"},
			want: "/app/proxy --command --group survival --backend kubernetes --k8s-namespace games --k8s-statefulset mc",
		},
		{
			name: "config file",
			opts: Options{SelfPath: "/app/proxy", Backend: "docker", ConfigPath: "/etc/proxy.toml"},
			want: "/app/proxy --command --group survival --backend docker --config /etc/proxy.toml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromLabels(labels, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Settings.Server.Command)
		})
	}
}

func TestFromLabels_Optional(t *testing.T) {
	cfg, err := FromLabels(map[string]string{
		LabelGroup:                    "creative",
		LabelServerAddress:            "mc-creative:25565",
		LabelPort:                     "25566",
		"lazymc.public.version":       "1.20.4",
		"lazymc.public.protocol":      "765",
		"lazymc.motd.sleeping":        "zzz",
		"lazymc.time.sleep_after":     "300",
		"lazymc.server.wake_on_start": "true",
		"lazymc.join.methods":         "hold, kick",
		"lazymc.rcon.enabled":         "false",
		"lazymc.rcon.port":            "25575",
	}, testOpts)
	require.NoError(t, err)

	s := cfg.Settings
	assert.Equal(t, "0.0.0.0:25566", s.Public.Address)
	assert.Equal(t, "1.20.4", s.Public.Version)
	assert.Equal(t, 765, s.Public.Protocol)
	assert.Equal(t, "zzz", s.Motd.Sleeping)
	assert.Equal(t, 300, s.Time.SleepAfter)
	require.NotNil(t, s.Server.WakeOnStart)
	assert.True(t, *s.Server.WakeOnStart)
	assert.Equal(t, []string{"hold", "kick"}, s.Join.Methods)
	require.NotNil(t, s.Rcon.Enabled)
	assert.False(t, *s.Rcon.Enabled)
	assert.Equal(t, 25575, s.Rcon.Port)
}

func TestFromLabels_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		labels map[string]string
	}{
		{"missing group", map[string]string{LabelServerAddress: "mc:25565"}},
		{"missing server address", map[string]string{LabelGroup: "survival"}},
		{"bad port", map[string]string{LabelGroup: "survival", LabelServerAddress: "mc:25565", LabelPort: "abc"}},
		{"bad bool", map[string]string{LabelGroup: "survival", LabelServerAddress: "mc:25565", "lazymc.server.forge": "maybe"}},
		{"group with slash", map[string]string{LabelGroup: "a/b", LabelServerAddress: "mc:25565"}},
		{"group with space", map[string]string{LabelGroup: "a b", LabelServerAddress: "mc:25565"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromLabels(tt.labels, testOpts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestFromEnv(t *testing.T) {
	env := map[string]string{
		"LAZYMC_GROUP":            "lobby",
		"SERVER_ADDRESS":          "lobby:25565",
		"LAZYMC_TIME_SLEEP_AFTER": "120",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg, err := FromEnv(lookup, testOpts)
	require.NoError(t, err)
	assert.Equal(t, domain.Group("lobby"), cfg.Group)
	assert.Equal(t, "lobby:25565", cfg.Settings.Server.Address)
	assert.Equal(t, 120, cfg.Settings.Time.SleepAfter)

	env["LAZYMC_SERVER_ADDRESS"] = "override:25565"
	cfg, err = FromEnv(lookup, testOpts)
	require.NoError(t, err)
	assert.Equal(t, "override:25565", cfg.Settings.Server.Address)
}

func TestFromEnv_MissingGroup(t *testing.T) {
	_, err := FromEnv(func(string) (string, bool) { return "", false }, testOpts)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "LAZYMC_GROUP", EnvKey(LabelGroup))
	assert.Equal(t, "LAZYMC_SERVER_ADDRESS", EnvKey(LabelServerAddress))
	assert.Equal(t, "LAZYMC_TIME_MINIMUM_ONLINE_TIME", EnvKey("lazymc.time.minimum_online_time"))
}

func TestConfig_Resolve(t *testing.T) {
	dir := t.TempDir()
	cfg, err := FromLabels(map[string]string{
		LabelGroup:             "survival",
		LabelServerAddress:     "mc-survival:25565",
		"lazymc.motd.starting": "warming up",
	}, testOpts)
	require.NoError(t, err)

	opts := testOpts
	opts.ConfigDir = filepath.Join(dir, "config")
	gc, err := cfg.Resolve(opts)
	require.NoError(t, err)

	assert.Equal(t, domain.Group("survival"), gc.Group)
	assert.Equal(t, filepath.Join(opts.ConfigDir, "survival.toml"), gc.ConfigFile)
	assert.Equal(t, "/usr/local/bin/lazymc", gc.Launch.Path)
	assert.Equal(t, []string{"start", "--config", gc.ConfigFile}, gc.Launch.Args)

	data, err := os.ReadFile(gc.ConfigFile)
	require.NoError(t, err)

	var decoded Settings
	require.NoError(t, toml.Unmarshal(data, &decoded))
	assert.Equal(t, "mc-survival:25565", decoded.Server.Address)
	assert.Equal(t, "warming up", decoded.Motd.Starting)
	assert.True(t, strings.Contains(string(data), "[server]"))
	assert.False(t, strings.Contains(string(data), "wake_on_start"), "unset optional values must be omitted")
}
