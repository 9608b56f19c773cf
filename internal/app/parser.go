package app

import (
	"strings"

	"github.com/bft-labs/lazymc-docker-proxy/internal/domain"
	"github.com/bft-labs/lazymc-docker-proxy/pkg/log"
)

// lineSeparator separates the target from the message in lazymc output.
const lineSeparator = ">"

// ParseLine parses one line of lazymc output of the form
//
//	LEVEL TARGET > MESSAGE
//
// Leading whitespace is ignored. LEVEL must be one of ERROR, WARN, INFO,
// DEBUG or TRACE, TARGET is made of [a-zA-Z0-9:_-] and MESSAGE is the
// non-empty rest of the line. Any other line yields false and should be
// passed through unchanged.
func ParseLine(line string) (domain.LogEvent, bool) {
	rest := strings.TrimLeft(line, " \t")

	levelTok, rest, ok := nextToken(rest)
	if !ok || !isUpperWord(levelTok) {
		return domain.LogEvent{}, false
	}
	level, ok := log.ParseLevel(levelTok)
	if !ok {
		return domain.LogEvent{}, false
	}

	target, rest, ok := nextToken(rest)
	if !ok || !isTarget(target) {
		return domain.LogEvent{}, false
	}

	sep, rest, ok := nextToken(rest)
	if !ok || sep != lineSeparator {
		return domain.LogEvent{}, false
	}

	message := strings.TrimLeft(rest, " \t")
	if message == "" {
		return domain.LogEvent{}, false
	}

	return domain.LogEvent{Level: level, Target: target, Message: message}, true
}

// nextToken splits s at its first whitespace run. It reports false when s
// is empty or has no whitespace after the token, since every token of the
// format is followed by at least one more part.
func nextToken(s string) (tok, rest string, ok bool) {
	i := strings.IndexAny(s, " \t")
	if i <= 0 {
		return "", "", false
	}
	return s[:i], strings.TrimLeft(s[i:], " \t"), true
}

func isUpperWord(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return s != ""
}

func isTarget(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == ':', c == '_', c == '-':
		default:
			return false
		}
	}
	return s != ""
}
