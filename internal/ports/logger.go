package ports

import "github.com/bft-labs/lazymc-docker-proxy/pkg/log"

// Logger is the logging port; see pkg/log.
type Logger = log.Logger

// Field is a structured log field; see pkg/log.
type Field = log.Field

// Field constructors re-exported for the application layer.
var (
	String = log.String
	Int    = log.Int
	Bool   = log.Bool
	Err    = log.Err
	Any    = log.Any
)
