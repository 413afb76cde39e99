// Package heap computes the maximum heap requested from the JVM and the
// smaller values tried after an out-of-memory failure.
package heap

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/quantmind-br/jlaunch/internal/platform"
	"github.com/shirou/gopsutil/v4/mem"
)

// DefaultFloorMB is the smallest heap worth retrying with
const DefaultFloorMB = 16

// MemoryFunc reports available physical memory in bytes
type MemoryFunc func(ctx context.Context) (uint64, error)

// Budget is a heap size with the ceiling that applied when it was computed
type Budget struct {
	MB        int
	CeilingMB int
}

func (b Budget) String() string {
	return Format(b.MB)
}

// Sizer computes heap budgets for one platform
type Sizer struct {
	ceiling   int
	floor     int
	available MemoryFunc
}

// NewSizer creates a Sizer using the platform ceiling and floorMB as the retry floor
func NewSizer(plat platform.Platform, floorMB int) *Sizer {
	if floorMB <= 0 {
		floorMB = DefaultFloorMB
	}
	return &Sizer{
		ceiling:   plat.HeapCeiling(),
		floor:     floorMB,
		available: AvailableMemory,
	}
}

// WithMemory replaces the available memory source
func (s *Sizer) WithMemory(fn MemoryFunc) *Sizer {
	s.available = fn
	return s
}

// Floor returns the smallest heap the sizer will retry with
func (s *Sizer) Floor() int {
	return s.floor
}

// Compute returns the heap in MB. An override is used as is; otherwise three
// quarters of availableMB is taken. The 32-bit ceiling applies to both.
func (s *Sizer) Compute(overrideMB, availableMB int) Budget {
	mb := overrideMB
	if mb <= 0 {
		mb = availableMB - availableMB>>2
	}
	if s.ceiling > 0 && mb > s.ceiling {
		mb = s.ceiling
	}
	if mb < 0 {
		mb = 0
	}
	return Budget{MB: mb, CeilingMB: s.ceiling}
}

// Auto computes the budget from the configured memory source
func (s *Sizer) Auto(ctx context.Context, overrideMB int) (Budget, error) {
	if overrideMB > 0 {
		return s.Compute(overrideMB, 0), nil
	}
	avail, err := s.available(ctx)
	if err != nil {
		return Budget{}, fmt.Errorf("failed to read available memory: %w", err)
	}
	return s.Compute(0, int(avail>>20)), nil
}

// Reduce returns the next retry value after mb. It is false when the
// decrement is zero or the result drops below the floor.
func (s *Sizer) Reduce(mb int) (int, bool) {
	return Reduce(mb, s.floor)
}

// Reduce subtracts a quarter of mb, refusing to go below floor
func Reduce(mb, floor int) (int, bool) {
	subtract := mb >> 2
	if subtract <= 0 {
		return 0, false
	}
	next := mb - subtract
	if next < floor {
		return next, false
	}
	return next, true
}

// AvailableMemory queries the OS for available physical memory
func AvailableMemory(ctx context.Context) (uint64, error) {
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return v.Available, nil
}

// ParseSize converts a JVM style size such as 512m, 2g or 1024 to MB. A bare
// number is taken as MB.
func ParseSize(s string) (int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, fmt.Errorf("empty heap size")
	}

	digits, shift := s, 0
	switch s[len(s)-1] {
	case 'k':
		digits, shift = s[:len(s)-1], -10
	case 'm':
		digits = s[:len(s)-1]
	case 'g':
		digits, shift = s[:len(s)-1], 10
	case 't':
		digits, shift = s[:len(s)-1], 20
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid heap size %q", s)
	}

	mb := n
	switch {
	case shift < 0:
		mb = n >> -shift
	case shift > 0:
		if n > math.MaxInt32>>shift {
			return 0, fmt.Errorf("heap size %q is too large", s)
		}
		mb = n << shift
	}
	if mb <= 0 {
		return 0, fmt.Errorf("heap size %q is below 1MB", s)
	}
	if mb > math.MaxInt32 {
		return 0, fmt.Errorf("heap size %q is too large", s)
	}
	return int(mb), nil
}

// FromJVMOptions returns the size of the last -Xmx option
func FromJVMOptions(opts []string) (int, bool) {
	for i := len(opts) - 1; i >= 0; i-- {
		if !strings.HasPrefix(opts[i], "-Xmx") {
			continue
		}
		mb, err := ParseSize(strings.TrimPrefix(opts[i], "-Xmx"))
		if err != nil {
			return 0, false
		}
		return mb, true
	}
	return 0, false
}

// ReplaceMaxHeap drops every -Xmx option and appends one for mb
func ReplaceMaxHeap(opts []string, mb int) []string {
	out := make([]string, 0, len(opts)+1)
	for _, o := range opts {
		if strings.HasPrefix(o, "-Xmx") {
			continue
		}
		out = append(out, o)
	}
	return append(out, fmt.Sprintf("-Xmx%dm", mb))
}

// Format renders mb for display
func Format(mb int) string {
	if mb <= 0 {
		return "unknown"
	}
	return humanize.IBytes(uint64(mb) << 20)
}
