package domain

// Group names one logical server: one lazymc process and one backend resource.
type Group string

// String returns the group name.
func (g Group) String() string { return string(g) }

// CommandSpec describes how to launch a supervised process.
type CommandSpec struct {
	Path string
	Args []string
	// Env is appended to the parent's environment.
	Env []string
	Dir string
}

// GroupConfig is the resolved configuration of one group.
// It is produced once at startup and not modified afterwards.
type GroupConfig struct {
	Group  Group
	Launch CommandSpec

	// ConfigFile is the lazymc configuration file the process is started with.
	ConfigFile string
}
