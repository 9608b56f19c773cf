package domain

// BackendAction names a backend lifecycle operation.
type BackendAction string

const (
	ActionStart            BackendAction = "start"
	ActionStop             BackendAction = "stop"
	ActionStopAll          BackendAction = "stop_all"
	ActionListGroupConfigs BackendAction = "list_group_configs"
)
