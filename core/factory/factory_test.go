package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sink struct {
	Bucket string
	Flush  time.Duration
}

type sinkConf struct {
	Bucket string        `json:"bucket"`
	Flush  time.Duration `json:"flush"`
}

// Test registry registration and instantiation using Decode.
func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*sink]()
	require.NoError(t, reg.Register("s", func(conf map[string]any) (*sink, error) {
		var c sinkConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &sink{Bucket: c.Bucket, Flush: c.Flush}, nil
	}))
	inst, err := reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"bucket": "runs", "flush": "2s"}})
	require.NoError(t, err)
	assert.Equal(t, "runs", inst.Bucket)
	assert.Equal(t, 2*time.Second, inst.Flush)
}

// Test duplicate registration and unknown type errors.
func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[int]()
	if err := reg.Register("x", func(map[string]any) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("x", func(map[string]any) (int, error) { return 2, nil }); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.Register("z", nil); err == nil {
		t.Fatal("expected nil factory error")
	}
	if _, err := reg.Create(ModuleConfig{Type: "y"}); err == nil {
		t.Fatal("expected unknown type error")
	}
}

func TestRegistry_Names(t *testing.T) {
	reg := NewRegistry[int]()
	for _, n := range []string{"prometheus", "influx", "nop"} {
		require.NoError(t, reg.Register(n, func(map[string]any) (int, error) { return 0, nil }))
	}
	assert.Equal(t, []string{"influx", "nop", "prometheus"}, reg.Names())
}

func TestDecodeWeakTypes(t *testing.T) {
	var c struct {
		Port int `json:"port"`
	}
	require.NoError(t, Decode(map[string]any{"port": "9100"}, &c))
	assert.Equal(t, 9100, c.Port)
}
