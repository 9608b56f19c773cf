package groupconfig

// Settings mirrors the lazymc configuration file written for a group.
// Optional values are pointers or carry omitempty so that lazymc's own
// defaults apply when a label is absent.
type Settings struct {
	Public   PublicSettings   `toml:"public"`
	Server   ServerSettings   `toml:"server"`
	Time     TimeSettings     `toml:"time"`
	Motd     MotdSettings     `toml:"motd"`
	Join     JoinSettings     `toml:"join"`
	Rcon     RconSettings     `toml:"rcon"`
	Advanced AdvancedSettings `toml:"advanced"`
}

// PublicSettings is the [public] table.
type PublicSettings struct {
	Address  string `toml:"address"`
	Version  string `toml:"version,omitempty"`
	Protocol int    `toml:"protocol,omitempty"`
}

// ServerSettings is the [server] table.
type ServerSettings struct {
	Address        string `toml:"address"`
	Directory      string `toml:"directory,omitempty"`
	Command        string `toml:"command"`
	FreezeProcess  bool   `toml:"freeze_process"`
	WakeOnStart    *bool  `toml:"wake_on_start,omitempty"`
	WakeOnCrash    *bool  `toml:"wake_on_crash,omitempty"`
	ProbeOnStart   *bool  `toml:"probe_on_start,omitempty"`
	Forge          *bool  `toml:"forge,omitempty"`
	StartTimeout   int    `toml:"start_timeout,omitempty"`
	StopTimeout    int    `toml:"stop_timeout,omitempty"`
	WakeWhitelist  *bool  `toml:"wake_whitelist,omitempty"`
	BlockBannedIPs *bool  `toml:"block_banned_ips,omitempty"`
	DropBannedIPs  *bool  `toml:"drop_banned_ips,omitempty"`
	SendProxyV2    *bool  `toml:"send_proxy_v2,omitempty"`
}

// TimeSettings is the [time] table, in seconds.
type TimeSettings struct {
	SleepAfter        int `toml:"sleep_after"`
	MinimumOnlineTime int `toml:"minimum_online_time"`
}

// MotdSettings is the [motd] table.
type MotdSettings struct {
	Sleeping string `toml:"sleeping,omitempty"`
	Starting string `toml:"starting,omitempty"`
	Stopping string `toml:"stopping,omitempty"`
}

// JoinSettings is the [join] table.
type JoinSettings struct {
	Methods []string `toml:"methods,omitempty"`
}

// RconSettings is the [rcon] table.
type RconSettings struct {
	Enabled           *bool  `toml:"enabled,omitempty"`
	Port              int    `toml:"port,omitempty"`
	Password          string `toml:"password,omitempty"`
	RandomizePassword *bool  `toml:"randomize_password,omitempty"`
}

// AdvancedSettings is the [advanced] table.
type AdvancedSettings struct {
	RewriteServerProperties *bool `toml:"rewrite_server_properties,omitempty"`
}
