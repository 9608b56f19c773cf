// Package docker implements the backend on top of the Docker Engine API.
// Managed containers carry the label lazymc.enabled=true and are grouped by
// the lazymc.group label.
package docker

import (
	"context"
	"errors"
	"fmt"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"

	"github.com/bft-labs/lazymc-docker-proxy/internal/domain"
	"github.com/bft-labs/lazymc-docker-proxy/internal/ports"
)

const (
	// Name identifies the backend in flags and logs.
	Name = "docker"

	labelEnabled = "lazymc.enabled"
	labelGroup   = "lazymc.group"
)

// containerAPI is the subset of the Docker client used by the backend.
type containerAPI interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
}

// Backend starts and stops labelled containers.
type Backend struct {
	api    containerAPI
	logger ports.Logger
}

var _ ports.Backend = (*Backend)(nil)

// New connects to the Docker daemon configured by the environment
// (DOCKER_HOST and friends), negotiating the API version.
func New(logger ports.Logger) (*Backend, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return newBackend(cli, logger), nil
}

func newBackend(api containerAPI, logger ports.Logger) *Backend {
	return &Backend{
		api:    api,
		logger: logger.WithTarget("lazymc-docker-proxy::docker"),
	}
}

// Name implements ports.Backend.
func (b *Backend) Name() string { return Name }

// Start starts every container of the group.
func (b *Backend) Start(ctx context.Context, group domain.Group) error {
	containers, err := b.list(ctx, group)
	if err != nil {
		return err
	}
	var errs []error
	for _, c := range containers {
		b.logger.Info("Starting container: "+containerName(c), ports.String("group", group.String()))
		if err := b.api.ContainerStart(ctx, c.ID, container.StartOptions{}); err != nil {
			errs = append(errs, fmt.Errorf("start container %s: %w", containerName(c), err))
		}
	}
	return errors.Join(errs...)
}

// Stop stops every container of the group.
func (b *Backend) Stop(ctx context.Context, group domain.Group) error {
	containers, err := b.list(ctx, group)
	if err != nil {
		return err
	}
	return b.stop(ctx, containers)
}

// StopAll stops every managed container.
func (b *Backend) StopAll(ctx context.Context) error {
	containers, err := b.list(ctx, "")
	if err != nil {
		return err
	}
	return b.stop(ctx, containers)
}

// ListGroupConfigs returns the labels of every managed container, in the
// order the daemon lists them.
func (b *Backend) ListGroupConfigs(ctx context.Context) ([]map[string]string, error) {
	containers, err := b.list(ctx, "")
	if err != nil {
		return nil, err
	}
	labels := make([]map[string]string, 0, len(containers))
	for _, c := range containers {
		b.logger.Debug("found managed container", ports.String("container", containerName(c)))
		labels = append(labels, c.Labels)
	}
	return labels, nil
}

func (b *Backend) stop(ctx context.Context, containers []container.Summary) error {
	var errs []error
	for _, c := range containers {
		b.logger.Info("Stopping container: " + containerName(c))
		if err := b.api.ContainerStop(ctx, c.ID, container.StopOptions{}); err != nil {
			errs = append(errs, fmt.Errorf("stop container %s: %w", containerName(c), err))
		}
	}
	return errors.Join(errs...)
}

// list returns the managed containers, restricted to group unless empty.
func (b *Backend) list(ctx context.Context, group domain.Group) ([]container.Summary, error) {
	args := filters.NewArgs(filters.Arg("label", labelEnabled+"=true"))
	if group != "" {
		args.Add("label", labelGroup+"="+group.String())
	}
	containers, err := b.api.ContainerList(ctx, container.ListOptions{All: true, Filters: args})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	return containers, nil
}

func containerName(c container.Summary) string {
	if len(c.Names) > 0 {
		return c.Names[0]
	}
	if len(c.ID) > 12 {
		return c.ID[:12]
	}
	return c.ID
}
