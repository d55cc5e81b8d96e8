package mergeconf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(vars map[string]string) EnvLookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestEnvSource(t *testing.T) {
	t.Run("DefaultTransformUppercases", func(t *testing.T) {
		p := New()
		_, err := p.AddItem("db_host")
		require.NoError(t, err)
		require.NoError(t, p.AddSource(NewEnvSource(
			EnvLookup(envFrom(map[string]string{"DB_HOST": "pg.local"})))))

		ns, err := p.Parse()
		require.NoError(t, err)
		v, _ := ns.Get("db_host")
		assert.Equal(t, "pg.local", v)
	})

	t.Run("PrefixApplied", func(t *testing.T) {
		p := New()
		_, err := p.AddItem("port")
		require.NoError(t, err)
		require.NoError(t, p.AddSource(NewEnvSource(
			EnvPrefix("MYAPP_"),
			EnvLookup(envFrom(map[string]string{"MYAPP_PORT": "8080", "PORT": "9"})))))

		ns, err := p.Parse()
		require.NoError(t, err)
		v, _ := ns.Get("port")
		assert.Equal(t, "8080", v)
	})

	t.Run("CustomTransform", func(t *testing.T) {
		p := New()
		_, err := p.AddItem("db_host")
		require.NoError(t, err)
		require.NoError(t, p.AddSource(NewEnvSource(
			EnvTransform(func(name string) string {
				return "CFG__" + strings.ToUpper(strings.ReplaceAll(name, "_", ""))
			}),
			EnvLookup(envFrom(map[string]string{"CFG__DBHOST": "custom"})))))

		ns, err := p.Parse()
		require.NoError(t, err)
		v, _ := ns.Get("db_host")
		assert.Equal(t, "custom", v)
	})

	t.Run("UnsetVariableSkipsItem", func(t *testing.T) {
		p := New()
		_, err := p.AddItem("host", WithDefault("fallback"))
		require.NoError(t, err)
		require.NoError(t, p.AddSource(NewEnvSource(EnvLookup(envFrom(nil)))))

		ns, err := p.Parse()
		require.NoError(t, err)
		v, _ := ns.Get("host")
		assert.Equal(t, "fallback", v)
	})

	t.Run("ValueStaysRawString", func(t *testing.T) {
		p := New()
		_, err := p.AddItem("port", WithType(Int64))
		require.NoError(t, err)
		require.NoError(t, p.AddSource(NewEnvSource(
			EnvLookup(envFrom(map[string]string{"PORT": "8080"})))))

		ns, err := p.Parse()
		require.NoError(t, err)
		v, _ := ns.Get("port")
		assert.Equal(t, int64(8080), v)
	})

	t.Run("EmptyStringIsMention", func(t *testing.T) {
		p := New()
		_, err := p.AddItem("verbose", WithAction("store_true"))
		require.NoError(t, err)
		require.NoError(t, p.AddSource(NewEnvSource(
			EnvLookup(envFrom(map[string]string{"VERBOSE": ""})))))

		ns, err := p.Parse()
		require.NoError(t, err)
		v, _ := ns.Get("verbose")
		assert.Equal(t, true, v)
	})

	t.Run("NonEmptyValueForPresenceItemFails", func(t *testing.T) {
		p := New()
		_, err := p.AddItem("verbose", WithAction("store_true"))
		require.NoError(t, err)
		require.NoError(t, p.AddSource(NewEnvSource(
			EnvLookup(envFrom(map[string]string{"VERBOSE": "1"})))))

		_, err = p.Parse()
		require.Error(t, err)
		var srcErr *SourceError
		require.ErrorAs(t, err, &srcErr)
		assert.Equal(t, "env", srcErr.Source)
	})

	t.Run("CustomNoneValues", func(t *testing.T) {
		p := New()
		_, err := p.AddItem("verbose", WithAction("store_true"))
		require.NoError(t, err)
		require.NoError(t, p.AddSource(NewEnvSource(
			EnvNoneValues("", "1", "true"),
			EnvLookup(envFrom(map[string]string{"VERBOSE": "1"})))))

		ns, err := p.Parse()
		require.NoError(t, err)
		v, _ := ns.Get("verbose")
		assert.Equal(t, true, v)
	})
}

func TestEnvDiscover(t *testing.T) {
	p := New()
	_, err := p.AddItem("host")
	require.NoError(t, err)
	_, err = p.AddItem("port")
	require.NoError(t, err)
	_, err = p.AddItem("unset")
	require.NoError(t, err)

	src := NewEnvSource(
		EnvPrefix("APP_"),
		EnvLookup(envFrom(map[string]string{"APP_HOST": "h", "APP_PORT": "1"})))

	found := src.Discover(mapSpecs(t, p))
	assert.Equal(t, map[string]string{
		"host": "APP_HOST",
		"port": "APP_PORT",
	}, found)
}
