// Package kubernetes implements the backend by scaling a StatefulSet
// between zero and one replica.
package kubernetes

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	k8s "k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/bft-labs/lazymc-docker-proxy/internal/domain"
	"github.com/bft-labs/lazymc-docker-proxy/internal/ports"
)

const (
	// Name identifies the backend in flags and logs.
	Name = "kubernetes"

	fieldManager = "lazymc-docker-proxy"
)

// Config names the StatefulSet that runs the server.
type Config struct {
	Namespace   string
	StatefulSet string
}

// Validate reports a missing name.
func (c Config) Validate() error {
	if c.Namespace == "" {
		return fmt.Errorf("%w: kubernetes namespace is required", domain.ErrInvalidConfig)
	}
	if c.StatefulSet == "" {
		return fmt.Errorf("%w: kubernetes statefulset is required", domain.ErrInvalidConfig)
	}
	return nil
}

// Backend scales one StatefulSet. All groups map onto it.
type Backend struct {
	client k8s.Interface
	cfg    Config
	logger ports.Logger
}

var _ ports.Backend = (*Backend)(nil)

// New creates a backend from an existing clientset.
func New(client k8s.Interface, cfg Config, logger ports.Logger) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Backend{
		client: client,
		cfg:    cfg,
		logger: logger.WithTarget("lazymc-docker-proxy::kubernetes"),
	}, nil
}

// NewFromEnv loads the client configuration the way kubectl does
// (KUBECONFIG, ~/.kube/config) and falls back to the in-cluster service
// account.
func NewFromEnv(cfg Config, logger ports.Logger) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loader := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		clientcmd.NewDefaultClientConfigLoadingRules(),
		&clientcmd.ConfigOverrides{},
	)
	restCfg, err := loader.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("load kubernetes client config: %w", err)
	}
	client, err := k8s.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("create kubernetes client: %w", err)
	}
	return New(client, cfg, logger)
}

// Name implements ports.Backend.
func (b *Backend) Name() string { return Name }

// Start scales the StatefulSet to one replica.
func (b *Backend) Start(ctx context.Context, group domain.Group) error {
	b.logger.Info("Starting server statefulset...", ports.String("group", group.String()))
	return b.scale(ctx, 1)
}

// Stop scales the StatefulSet to zero replicas.
func (b *Backend) Stop(ctx context.Context, group domain.Group) error {
	b.logger.Info("Stopping server statefulset...", ports.String("group", group.String()))
	return b.scale(ctx, 0)
}

// StopAll scales the StatefulSet to zero replicas.
func (b *Backend) StopAll(ctx context.Context) error {
	b.logger.Info("Stopping server statefulset...")
	return b.scale(ctx, 0)
}

// ListGroupConfigs is not supported; configuration comes from the
// environment.
func (b *Backend) ListGroupConfigs(context.Context) ([]map[string]string, error) {
	return nil, fmt.Errorf("%w: kubernetes backend cannot list group configurations", domain.ErrUnsupported)
}

func (b *Backend) scale(ctx context.Context, replicas int) error {
	patch := []byte(fmt.Sprintf(`{"spec":{"replicas":%d}}`, replicas))
	_, err := b.client.AppsV1().StatefulSets(b.cfg.Namespace).Patch(
		ctx, b.cfg.StatefulSet, types.MergePatchType, patch,
		metav1.PatchOptions{FieldManager: fieldManager},
	)
	if err != nil {
		return fmt.Errorf("scale statefulset %s/%s to %d: %w", b.cfg.Namespace, b.cfg.StatefulSet, replicas, err)
	}
	b.logger.Debug("statefulset scaled",
		ports.String("namespace", b.cfg.Namespace),
		ports.String("statefulset", b.cfg.StatefulSet),
		ports.Int("replicas", replicas))
	return nil
}
