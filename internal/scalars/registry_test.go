package scalars

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuiltinsRegistered(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"Int", "Float", "String", "Boolean", "ID"} {
		_, ok := r.Lookup(name)
		require.True(t, ok, "builtin %s not registered", name)
	}
	_, ok := r.Lookup("DateTime")
	require.False(t, ok)
}

func TestLastRegistrationWins(t *testing.T) {
	r := NewRegistry()
	r.Register("Custom", Coercion{
		Parse: func(v any) (any, error) { return "first", nil },
	})
	r.Register("Custom", Coercion{
		Parse: func(v any) (any, error) { return "second", nil },
	})

	c, ok := r.Lookup("Custom")
	require.True(t, ok)
	got, err := c.Parse(nil)
	require.NoError(t, err)
	require.Equal(t, "second", got)
}

func TestRoundTrip(t *testing.T) {
	r := NewRegistry()
	r.Register("DateTime", Coercion{
		Parse: func(v any) (any, error) {
			s, ok := v.(string)
			if !ok {
				return nil, errors.New("DateTime must be a string")
			}
			return time.Parse(time.RFC3339, s)
		},
		Serialize: func(v any) (any, error) {
			ts, ok := v.(time.Time)
			if !ok {
				return nil, errors.New("DateTime must be a time.Time")
			}
			return ts.Format(time.RFC3339), nil
		},
	})

	c, ok := r.Lookup("DateTime")
	require.True(t, ok)

	const in = "2024-05-01T12:30:00Z"
	parsed, err := c.Parse(in)
	require.NoError(t, err)
	out, err := c.Serialize(parsed)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestParseInt(t *testing.T) {
	for _, v := range []any{42, int32(42), int64(42), 42.0, float32(42), "42"} {
		got, err := ParseInt(v)
		require.NoError(t, err, "value %v (%T)", v, v)
		require.Equal(t, 42, got)
	}
	_, err := ParseInt("forty-two")
	require.Error(t, err)
	_, err = ParseInt([]any{1})
	require.Error(t, err)
}

func TestParseFloat(t *testing.T) {
	for _, v := range []any{1.5, float32(1.5), "1.5"} {
		got, err := ParseFloat(v)
		require.NoError(t, err, "value %v (%T)", v, v)
		require.Equal(t, 1.5, got)
	}
	got, err := ParseFloat(3)
	require.NoError(t, err)
	require.Equal(t, 3.0, got)
	_, err = ParseFloat(true)
	require.Error(t, err)
}

func TestParseBoolean(t *testing.T) {
	got, err := ParseBoolean(true)
	require.NoError(t, err)
	require.Equal(t, true, got)
	_, err = ParseBoolean("true")
	require.Error(t, err)
}

func TestParseID(t *testing.T) {
	got, err := ParseID(7)
	require.NoError(t, err)
	require.Equal(t, "7", got)
	got, err = ParseID("user-1")
	require.NoError(t, err)
	require.Equal(t, "user-1", got)
}
