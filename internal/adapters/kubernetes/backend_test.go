package kubernetes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/bft-labs/lazymc-docker-proxy/internal/domain"
	"github.com/bft-labs/lazymc-docker-proxy/pkg/log"
)

func newTestBackend(t *testing.T, replicas int32) (*Backend, *fake.Clientset) {
	t.Helper()
	client := fake.NewSimpleClientset(&appsv1.StatefulSet{
		ObjectMeta: metav1.ObjectMeta{Name: "minecraft", Namespace: "minecraft"},
		Spec:       appsv1.StatefulSetSpec{Replicas: &replicas},
	})
	b, err := New(client, Config{Namespace: "minecraft", StatefulSet: "minecraft"}, log.NoopLogger{})
	require.NoError(t, err)
	return b, client
}

func replicasOf(t *testing.T, client *fake.Clientset) int32 {
	t.Helper()
	sts, err := client.AppsV1().StatefulSets("minecraft").Get(context.Background(), "minecraft", metav1.GetOptions{})
	require.NoError(t, err)
	require.NotNil(t, sts.Spec.Replicas)
	return *sts.Spec.Replicas
}

func TestBackend_StartStop(t *testing.T) {
	b, client := newTestBackend(t, 0)

	require.NoError(t, b.Start(context.Background(), "survival"))
	assert.Equal(t, int32(1), replicasOf(t, client))

	require.NoError(t, b.Stop(context.Background(), "survival"))
	assert.Equal(t, int32(0), replicasOf(t, client))

	require.NoError(t, b.Start(context.Background(), "survival"))
	require.NoError(t, b.StopAll(context.Background()))
	assert.Equal(t, int32(0), replicasOf(t, client))
}

func TestBackend_MissingStatefulSet(t *testing.T) {
	b, err := New(fake.NewSimpleClientset(), Config{Namespace: "ns", StatefulSet: "missing"}, log.NoopLogger{})
	require.NoError(t, err)

	assert.Error(t, b.Start(context.Background(), "g"))
}

func TestBackend_ListGroupConfigs(t *testing.T) {
	b, _ := newTestBackend(t, 0)

	labels, err := b.ListGroupConfigs(context.Background())
	assert.Nil(t, labels)
	assert.ErrorIs(t, err, domain.ErrUnsupported)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"complete", Config{Namespace: "a", StatefulSet: "b"}, false},
		{"no namespace", Config{StatefulSet: "b"}, true},
		{"no statefulset", Config{Namespace: "a"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
