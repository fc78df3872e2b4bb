package provisioning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/etcdnode/internal/config"
	"github.com/imamik/etcdnode/internal/identity"
)

func TestDataDirFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/var/lib/etcd/b.example.com.etcd", DataDirFor("/var/lib/etcd", "b.example.com"))
	assert.Equal(t, "/var/lib/etcd/10.0.0.2.etcd", DataDirFor("/var/lib/etcd/", "10.0.0.2"))
	assert.Equal(t, "/srv/etcd/fd00::2.etcd", DataDirFor("/srv/etcd", "fd00::2"))
}

func TestSelectPlan(t *testing.T) {
	t.Parallel()

	id := identity.Identity{Member: "b.example.com", Method: identity.MethodFQDN}

	t.Run("destructive", func(t *testing.T) {
		t.Parallel()
		plan, err := SelectPlan(id, true, "/var/lib/etcd", 60)
		require.NoError(t, err)
		assert.Equal(t, BootstrapPlan{
			Identity:    id,
			DataDir:     "/var/lib/etcd/b.example.com.etcd",
			Destructive: true,
			WaitSeconds: 60,
		}, plan)
	})

	t.Run("normal", func(t *testing.T) {
		t.Parallel()
		plan, err := SelectPlan(id, false, "/var/lib/etcd", 1)
		require.NoError(t, err)
		assert.False(t, plan.Destructive)
		assert.Equal(t, 1, plan.WaitSeconds)
	})

	t.Run("zero wait is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := SelectPlan(id, true, "/var/lib/etcd", 0)
		require.Error(t, err)
		assert.True(t, config.IsConfigurationError(err))
		assert.Contains(t, err.Error(), "peer_wait_seconds")
	})

	t.Run("negative wait is rejected even for normal runs", func(t *testing.T) {
		t.Parallel()
		_, err := SelectPlan(id, false, "/var/lib/etcd", -5)
		require.Error(t, err)
		assert.True(t, config.IsConfigurationError(err))
	})

	t.Run("empty root is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := SelectPlan(id, true, "", 60)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "data_dir_root")
	})
}

func TestPlanFromConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Reset = true
	cfg.PeerWaitSeconds = intPtr(90)
	cfg.DataDirRoot = "/srv/etcd"

	plan, err := PlanFromConfig(identity.Identity{Member: "c.example.com", Method: identity.MethodHostname}, cfg)
	require.NoError(t, err)
	assert.True(t, plan.Destructive)
	assert.Equal(t, 90, plan.WaitSeconds)
	assert.Equal(t, "/srv/etcd/c.example.com.etcd", plan.DataDir)
}
