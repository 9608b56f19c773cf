// Package fs holds file-backed adapters.
package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/bft-labs/lazymc-docker-proxy/internal/ports"
)

// DefaultHealthPath is where the daemon records its health.
const DefaultHealthPath = "/app/health"

const (
	healthy   = "healthy"
	unhealthy = "unhealthy"
)

// ErrUnhealthy is returned by Check when the flag is missing or not healthy.
var ErrUnhealthy = errors.New("lazymc-docker-proxy: unhealthy")

// HealthFile implements ports.HealthReporter with a flag file. Writes are
// atomic so a concurrent health check never reads a partial value.
type HealthFile struct {
	path string
}

var _ ports.HealthReporter = (*HealthFile)(nil)

// NewHealthFile creates a health file at path, DefaultHealthPath if empty.
func NewHealthFile(path string) *HealthFile {
	if path == "" {
		path = DefaultHealthPath
	}
	return &HealthFile{path: path}
}

// Healthy marks the process healthy.
func (h *HealthFile) Healthy() error {
	return h.write(healthy)
}

// Unhealthy marks the process unhealthy.
func (h *HealthFile) Unhealthy() error {
	return h.write(unhealthy)
}

// Check returns nil only if the flag reads healthy.
func (h *HealthFile) Check() error {
	data, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s does not exist", ErrUnhealthy, h.path)
		}
		return fmt.Errorf("read health file: %w", err)
	}
	if state := strings.TrimSpace(string(data)); state != healthy {
		return fmt.Errorf("%w: state is %q", ErrUnhealthy, state)
	}
	return nil
}

// Path returns the full path to the health file.
func (h *HealthFile) Path() string {
	return h.path
}

func (h *HealthFile) write(state string) error {
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return err
	}
	return renameio.WriteFile(h.path, []byte(state), 0o644)
}
