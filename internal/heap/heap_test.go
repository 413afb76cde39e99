package heap

import (
	"context"
	"errors"
	"testing"

	"github.com/quantmind-br/jlaunch/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizer_Compute(t *testing.T) {
	tests := []struct {
		name      string
		plat      platform.Platform
		override  int
		available int
		expected  int
	}{
		{"three quarters of available", platform.For("linux", "amd64"), 0, 8192, 6144},
		{"override unmodified", platform.For("linux", "amd64"), 3000, 8192, 3000},
		{"override above available", platform.For("linux", "amd64"), 65536, 1024, 65536},
		{"odd available", platform.For("linux", "amd64"), 0, 1001, 751},
		{"32-bit linux ceiling", platform.For("linux", "386"), 0, 8192, 1920},
		{"32-bit ceiling applies to override", platform.For("linux", "386"), 4096, 0, 1920},
		{"32-bit windows ceiling", platform.For("windows", "386"), 0, 8192, 1638},
		{"32-bit below ceiling", platform.For("windows", "386"), 0, 1024, 768},
		{"no memory", platform.For("linux", "amd64"), 0, 0, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			b := NewSizer(tt.plat, 0).Compute(tt.override, tt.available)
			assert.Equal(t, tt.expected, b.MB)
		})
	}
}

func TestSizer_Auto(t *testing.T) {
	s := NewSizer(platform.For("linux", "amd64"), 16).WithMemory(func(context.Context) (uint64, error) {
		return 4 << 30, nil
	})

	b, err := s.Auto(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 3072, b.MB)

	b, err = s.Auto(context.Background(), 512)
	require.NoError(t, err)
	assert.Equal(t, 512, b.MB)

	failing := NewSizer(platform.For("linux", "amd64"), 16).WithMemory(func(context.Context) (uint64, error) {
		return 0, errors.New("no /proc")
	})
	_, err = failing.Auto(context.Background(), 0)
	assert.ErrorContains(t, err, "no /proc")
}

func TestReduce_Sequence(t *testing.T) {
	s := NewSizer(platform.For("linux", "amd64"), DefaultFloorMB)

	var seen []int
	mb := 512
	for {
		next, ok := s.Reduce(mb)
		if !ok {
			break
		}
		require.Less(t, next, mb)
		seen = append(seen, next)
		mb = next
		require.Less(t, len(seen), 64)
	}

	assert.Equal(t, []int{384, 288, 216, 162, 122, 92, 69, 52, 39, 30, 23, 18}, seen)
}

func TestReduce_Terminates(t *testing.T) {
	for _, start := range []int{1, 3, 4, 7, 100, 1 << 20, 1<<31 - 1} {
		mb := start
		steps := 0
		for {
			next, ok := Reduce(mb, 0)
			if !ok {
				break
			}
			assert.Less(t, next, mb)
			mb = next
			steps++
			require.Less(t, steps, 200)
		}
	}

	_, ok := Reduce(3, 0)
	assert.False(t, ok, "decrement of zero gives up")
	_, ok = Reduce(20, 16)
	assert.False(t, ok, "result below floor gives up")
	next, ok := Reduce(64, 16)
	assert.True(t, ok)
	assert.Equal(t, 48, next)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		wantErr  bool
	}{
		{"512m", 512, false},
		{"512M", 512, false},
		{"2g", 2048, false},
		{"1t", 1 << 20, false},
		{"1024", 1024, false},
		{"2048k", 2, false},
		{" 64m ", 64, false},
		{"512k", 0, true},
		{"", 0, true},
		{"m", 0, true},
		{"-5m", 0, true},
		{"lots", 0, true},
		{"999999999t", 0, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFromJVMOptions(t *testing.T) {
	mb, ok := FromJVMOptions([]string{"-Xmx256m", "-Dfoo=bar", "-Xmx1g"})
	assert.True(t, ok)
	assert.Equal(t, 1024, mb)

	_, ok = FromJVMOptions([]string{"-Xms64m"})
	assert.False(t, ok)

	_, ok = FromJVMOptions([]string{"-Xmxbogus"})
	assert.False(t, ok)
}

func TestReplaceMaxHeap(t *testing.T) {
	opts := []string{"-Xmx256m", "-Dfoo=bar", "-Xmx1g"}
	assert.Equal(t, []string{"-Dfoo=bar", "-Xmx384m"}, ReplaceMaxHeap(opts, 384))
	assert.Equal(t, []string{"-Xmx256m", "-Dfoo=bar", "-Xmx1g"}, opts)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "512 MiB", Format(512))
	assert.Equal(t, "2.0 GiB", Format(2048))
	assert.Equal(t, "unknown", Format(0))
	assert.Equal(t, "384 MiB", Budget{MB: 384}.String())
}
