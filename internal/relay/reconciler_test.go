package relay

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relayrouter/internal/config"
	"relayrouter/internal/destination"
	"relayrouter/internal/keyfunc"
	"relayrouter/internal/logging"
	"relayrouter/internal/router"
)

func TestReconciler_Apply(t *testing.T) {
	r := router.NewConsistentHashingRouter(2)
	rc := NewReconciler(r, nil)

	a := destination.New("carbon01", 2004, "a")
	b := destination.New("carbon02", 2004, "a")
	c := destination.New("carbon03", 2004, "a")

	require.NoError(t, rc.Apply([]destination.Destination{b, a}))
	assert.Equal(t, []destination.Destination{a, b}, rc.Current())

	require.NoError(t, rc.Apply([]destination.Destination{b, c}))
	assert.Equal(t, []destination.Destination{b, c}, rc.Current())

	for i := 0; i < 100; i++ {
		for _, addr := range r.GetDestinations(string(rune('a' + i%26))) {
			assert.NotEqual(t, a.Address(), addr)
		}
	}

	// no-op reload
	require.NoError(t, rc.Apply([]destination.Destination{c, b}))
	assert.Equal(t, []destination.Destination{b, c}, rc.Current())
}

func TestReconciler_PortChange(t *testing.T) {
	r := router.NewConsistentHashingRouter(1)
	rc := NewReconciler(r, nil)

	require.NoError(t, rc.Apply([]destination.Destination{destination.New("carbon01", 2004, "a")}))
	require.NoError(t, rc.Apply([]destination.Destination{destination.New("carbon01", 2104, "a")}))

	assert.Equal(t, []destination.Address{{Host: "carbon01", Port: 2104}}, r.GetDestinations("k"))
}

func TestReconciler_DuplicateAbortsReload(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewZapLogger(logging.LogConfig{Level: logging.InfoLevel, Output: &buf})
	r := router.NewConsistentHashingRouter(1)
	rc := NewReconciler(r, logger)

	err := rc.Apply([]destination.Destination{
		destination.New("carbon01", 2004, "a"),
		destination.New("carbon01", 2104, "a"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, router.ErrDuplicateDestination)
	assert.Equal(t, []destination.Destination{destination.New("carbon01", 2004, "a")}, rc.Current())
	assert.Contains(t, buf.String(), "reload aborted")
}

func TestReconciler_RulesRouter(t *testing.T) {
	r := router.NewRulesRouter(nil)
	rc := NewReconciler(r, logging.NewNop())
	require.NoError(t, rc.Apply([]destination.Destination{destination.New("x", 1, "")}))
	require.NoError(t, rc.Apply(nil))
	assert.Empty(t, rc.Current())
	assert.Same(t, r, rc.Router())
}

func writeRules(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  - name: carbon
    pattern: '^carbon\.'
    destinations: ["127.0.0.1:2104:b"]
  - name: default
    default: true
    destinations: ["127.0.0.1:2004:a"]
`), 0o644))
	return path
}

func TestBuild_Rules(t *testing.T) {
	cfg := config.Default()
	cfg.Method = router.MethodRules
	cfg.RulesPath = writeRules(t)

	rc, err := Build(cfg, keyfunc.NewDefaultRegistry(), nil)
	require.NoError(t, err)

	assert.Len(t, rc.Current(), 2)
	assert.Equal(t, []destination.Address{
		{Host: "127.0.0.1", Port: 2104},
		{Host: "127.0.0.1", Port: 2004},
	}, rc.Router().GetDestinations("carbon.agents.cpu"))
	assert.Equal(t, []destination.Address{{Host: "127.0.0.1", Port: 2004}}, rc.Router().GetDestinations("servers.web01"))
}

func TestBuild_ConsistentHashing(t *testing.T) {
	cfg := config.Default()
	cfg.ReplicationFactor = 2
	cfg.KeyFunction = "prefix:1"
	cfg.Destinations = []destination.Destination{
		destination.New("carbon01", 2004, "a"),
		destination.New("carbon02", 2004, "a"),
		destination.New("carbon03", 2004, "a"),
	}

	rc, err := Build(cfg, keyfunc.NewDefaultRegistry(), logging.NewNop())
	require.NoError(t, err)

	got := rc.Router().GetDestinations("servers.web01.cpu")
	assert.Len(t, got, 2)
	assert.Equal(t, got, rc.Router().GetDestinations("servers.db01.load"))
}

func TestBuild_Errors(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		cfg := config.Default()
		cfg.ReplicationFactor = 0
		_, err := Build(cfg, keyfunc.NewDefaultRegistry(), nil)
		assert.Error(t, err)
	})
	t.Run("missing rules file", func(t *testing.T) {
		cfg := config.Default()
		cfg.Method = router.MethodRules
		cfg.RulesPath = filepath.Join(t.TempDir(), "missing.yaml")
		_, err := Build(cfg, keyfunc.NewDefaultRegistry(), nil)
		assert.Error(t, err)
	})
	t.Run("unknown key function", func(t *testing.T) {
		cfg := config.Default()
		cfg.KeyFunction = "nope"
		_, err := Build(cfg, keyfunc.NewDefaultRegistry(), nil)
		assert.ErrorIs(t, err, keyfunc.ErrKeyFunctionLoad)
	})
	t.Run("duplicate instance", func(t *testing.T) {
		cfg := config.Default()
		cfg.Destinations = []destination.Destination{
			destination.New("carbon01", 2004, "a"),
			destination.New("carbon01", 2005, "a"),
		}
		_, err := Build(cfg, keyfunc.NewDefaultRegistry(), nil)
		assert.ErrorIs(t, err, router.ErrDuplicateDestination)
	})
}
