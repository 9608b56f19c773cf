// Package log provides the logging abstraction used across lazymc-docker-proxy.
//
// Every component logs through the Logger interface. Entries carry a target,
// a "::" separated path naming where the entry came from. The proxy's own
// components log under "lazymc-docker-proxy::<component>", and lines
// re-emitted from a supervised lazymc process log under "<group>::<target>".
//
// # Usage
//
// Use the zerolog adapter:
//
//	log.SetLevel(log.LevelInfo)
//	logger := log.NewZerologAdapter()
//	logger.WithTarget("lazymc-docker-proxy::entrypoint").Info("starting")
//
// Or the no-op logger in tests:
//
//	logger := log.NewNoopLogger()
package log
