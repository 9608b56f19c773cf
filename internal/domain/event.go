package domain

import "github.com/bft-labs/lazymc-docker-proxy/pkg/log"

// LogEvent is one structured line emitted by a supervised process.
// It is built per line and consumed immediately by the router.
type LogEvent struct {
	Level   log.Level
	Target  string
	Message string
}
