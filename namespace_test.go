package mergeconf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildNamespace(t *testing.T, values map[string]any) *Namespace {
	t.Helper()
	p := New()
	for _, name := range []string{"host", "port", "ratio", "debug", "tags", "timeout"} {
		if _, ok := values[name]; !ok {
			continue
		}
		_, err := p.AddItem(name)
		require.NoError(t, err)
	}
	require.NoError(t, p.AddSource(NewMapSource(values, MapNoneValues(Presence))))
	ns, err := p.Parse()
	require.NoError(t, err)
	return ns
}

func TestNamespaceAccessors(t *testing.T) {
	ns := buildNamespace(t, map[string]any{
		"host":  "localhost",
		"port":  "8080",
		"ratio": 0.75,
		"debug": "true",
	})

	t.Run("String", func(t *testing.T) {
		v, err := ns.String("host")
		require.NoError(t, err)
		assert.Equal(t, "localhost", v)
	})

	t.Run("Int64FromString", func(t *testing.T) {
		v, err := ns.Int64("port")
		require.NoError(t, err)
		assert.Equal(t, int64(8080), v)
	})

	t.Run("Float64", func(t *testing.T) {
		v, err := ns.Float64("ratio")
		require.NoError(t, err)
		assert.Equal(t, 0.75, v)
	})

	t.Run("Bool", func(t *testing.T) {
		v, err := ns.Bool("debug")
		require.NoError(t, err)
		assert.True(t, v)
	})

	t.Run("AbsentItem", func(t *testing.T) {
		_, err := ns.String("missing")
		assert.Error(t, err)
		_, err = ns.Int64("missing")
		assert.Error(t, err)
	})

	t.Run("WrongType", func(t *testing.T) {
		_, err := ns.Int64("host")
		assert.Error(t, err)
	})
}

func TestNamespaceNilValues(t *testing.T) {
	p := New()
	_, err := p.AddItem("opt")
	require.NoError(t, err)
	ns, err := p.Parse()
	require.NoError(t, err)

	s, err := ns.String("opt")
	require.NoError(t, err)
	assert.Equal(t, "", s)

	_, err = ns.Int64("opt")
	assert.Error(t, err)
	_, err = ns.Bool("opt")
	assert.Error(t, err)
}

func TestNamespaceSlice(t *testing.T) {
	t.Run("FromAppend", func(t *testing.T) {
		p := New()
		_, err := p.AddItem("tags", WithAction("append"))
		require.NoError(t, err)
		require.NoError(t, p.AddSource(NewMapSource(map[string]any{"tags": []any{"a", "b"}})))
		ns, err := p.Parse()
		require.NoError(t, err)

		v, err := ns.Slice("tags")
		require.NoError(t, err)
		assert.Equal(t, []any{"a", "b"}, v)
	})

	t.Run("FromTypedDefault", func(t *testing.T) {
		p := New()
		_, err := p.AddItem("tags", WithDefault([]string{"x", "y"}))
		require.NoError(t, err)
		ns, err := p.Parse()
		require.NoError(t, err)

		v, err := ns.Slice("tags")
		require.NoError(t, err)
		assert.Equal(t, []any{"x", "y"}, v)
	})

	t.Run("NotASlice", func(t *testing.T) {
		ns := buildNamespace(t, map[string]any{"host": "h"})
		_, err := ns.Slice("host")
		assert.Error(t, err)
	})
}

func TestNamespaceOrderAndLen(t *testing.T) {
	p := New()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := p.AddItem(name, WithDefault(name))
		require.NoError(t, err)
	}
	ns, err := p.Parse()
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, ns.Names())
	assert.Equal(t, 3, ns.Len())

	// Mutating the returned slice must not affect the namespace.
	names := ns.Names()
	names[0] = "hacked"
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, ns.Names())
}

func TestNamespaceScan(t *testing.T) {
	type ServerConfig struct {
		Host    string        `config:"host"`
		Port    int           `config:"port"`
		Debug   bool          `config:"debug"`
		Timeout time.Duration `config:"timeout"`
		Tags    []string      `config:"tags"`
	}

	t.Run("WeaklyTypedFields", func(t *testing.T) {
		ns := buildNamespace(t, map[string]any{
			"host":    "example.com",
			"port":    "9090",
			"debug":   "true",
			"timeout": "45s",
			"tags":    "a,b,c",
		})

		var cfg ServerConfig
		require.NoError(t, ns.Scan(&cfg))
		assert.Equal(t, "example.com", cfg.Host)
		assert.Equal(t, 9090, cfg.Port)
		assert.True(t, cfg.Debug)
		assert.Equal(t, 45*time.Second, cfg.Timeout)
		assert.Equal(t, []string{"a", "b", "c"}, cfg.Tags)
	})

	t.Run("IntoMap", func(t *testing.T) {
		ns := buildNamespace(t, map[string]any{"host": "h", "port": 1})
		out := make(map[string]any)
		require.NoError(t, ns.Scan(&out))
		assert.Equal(t, "h", out["host"])
	})

	t.Run("NonPointerTarget", func(t *testing.T) {
		ns := buildNamespace(t, map[string]any{"host": "h"})
		var cfg ServerConfig
		assert.Error(t, ns.Scan(cfg))
	})
}
