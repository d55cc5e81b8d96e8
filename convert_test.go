package mergeconf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringConversion(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    string
		expectError bool
	}{
		{"String", "hello", "hello", false},
		{"Bytes", []byte("raw"), "raw", false},
		{"Int", 42, "42", false},
		{"Int64", int64(-7), "-7", false},
		{"Uint", uint(9), "9", false},
		{"Float", 3.5, "3.5", false},
		{"BoolTrue", true, "true", false},
		{"Duration", 2 * time.Second, "2s", false},
		{"Struct", struct{}{}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := String(tt.input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, v)
			}
		})
	}
}

func TestInt64Conversion(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{"Int", 42, 42, false},
		{"Int64", int64(-1), -1, false},
		{"Uint32", uint32(7), 7, false},
		{"Float", 3.9, 3, false},
		{"DecimalString", "100", 100, false},
		{"HexString", "0xFF", 255, false},
		{"FloatString", "2.5", 2, false},
		{"BoolTrue", true, 1, false},
		{"BoolFalse", false, 0, false},
		{"BadString", "abc", 0, true},
		{"Nil", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Int64(tt.input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, v)
			}
		})
	}
}

func TestFloat64Conversion(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    float64
		expectError bool
	}{
		{"Float", 2.5, 2.5, false},
		{"Int", 4, 4.0, false},
		{"String", "1.25", 1.25, false},
		{"Bool", true, 1.0, false},
		{"BadString", "many", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Float64(tt.input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, v)
			}
		})
	}
}

func TestBoolConversion(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    bool
		expectError bool
	}{
		{"Bool", true, true, false},
		{"StringTrue", "true", true, false},
		{"String1", "1", true, false},
		{"StringFalse", "false", false, false},
		{"IntZero", 0, false, false},
		{"IntNonZero", -3, true, false},
		{"FloatZero", 0.0, false, false},
		{"BadString", "yes", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Bool(tt.input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, v)
			}
		})
	}
}

func TestDurationConversion(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    time.Duration
		expectError bool
	}{
		{"Duration", 3 * time.Minute, 3 * time.Minute, false},
		{"DurationString", "1h30m", 90 * time.Minute, false},
		{"SecondsString", "2.5", 2500 * time.Millisecond, false},
		{"IntSeconds", 10, 10 * time.Second, false},
		{"FloatSeconds", 0.5, 500 * time.Millisecond, false},
		{"BadString", "soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Duration(tt.input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, v)
			}
		})
	}
}

func TestIdentity(t *testing.T) {
	v, err := Identity(struct{ X int }{X: 1})
	require.NoError(t, err)
	assert.Equal(t, struct{ X int }{X: 1}, v)
}

func TestDecodeAs(t *testing.T) {
	type Endpoint struct {
		Host    string        `config:"host"`
		Port    int           `config:"port"`
		Timeout time.Duration `config:"timeout"`
	}

	t.Run("MapToStruct", func(t *testing.T) {
		convert := DecodeAs(Endpoint{})
		v, err := convert(map[string]any{
			"host":    "db.local",
			"port":    "5432",
			"timeout": "30s",
		})
		require.NoError(t, err)
		ep, ok := v.(Endpoint)
		require.True(t, ok)
		assert.Equal(t, "db.local", ep.Host)
		assert.Equal(t, 5432, ep.Port)
		assert.Equal(t, 30*time.Second, ep.Timeout)
	})

	t.Run("AsItemType", func(t *testing.T) {
		p := New()
		_, err := p.AddItem("endpoint", WithType(DecodeAs(Endpoint{})))
		require.NoError(t, err)
		require.NoError(t, p.AddSource(NewMapSource(map[string]any{
			"endpoint": map[string]any{"host": "a", "port": 1},
		})))

		ns, err := p.Parse()
		require.NoError(t, err)
		v, _ := ns.Get("endpoint")
		assert.Equal(t, Endpoint{Host: "a", Port: 1}, v)
	})

	t.Run("BadInput", func(t *testing.T) {
		convert := DecodeAs(Endpoint{})
		_, err := convert(map[string]any{"port": "not-a-port"})
		assert.Error(t, err)
	})
}
