package ui

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/quantmind-br/jlaunch/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestInitColors(t *testing.T) {
	t.Run("with NO_COLOR", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")

		color.NoColor = false
		InitColors()

		assert.True(t, color.NoColor)
	})

	t.Run("with TERM=dumb", func(t *testing.T) {
		t.Setenv("TERM", "dumb")

		color.NoColor = false
		InitColors()

		assert.True(t, color.NoColor)
	})
}

func TestFprintFunctions(t *testing.T) {
	DisableColors()
	defer EnableColors()

	tests := []struct {
		name     string
		print    func(*bytes.Buffer)
		expected []string
	}{
		{
			name:     "warning is a single line",
			print:    func(b *bytes.Buffer) { FprintWarning(b, "falling back to %s", "system Java") },
			expected: []string{"Warning: falling back to system Java\n"},
		},
		{
			name:     "error",
			print:    func(b *bytes.Buffer) { FprintError(b, "exec %s", "failed") },
			expected: []string{"✗", "Error: exec failed"},
		},
		{
			name:     "success",
			print:    func(b *bytes.Buffer) { FprintSuccess(b, "found %d", 2) },
			expected: []string{"✓", "found 2"},
		},
		{
			name:     "key value",
			print:    func(b *bytes.Buffer) { FprintKeyValue(b, "Java home", "/opt/jdk") },
			expected: []string{"Java home: /opt/jdk\n"},
		},
		{
			name:     "header",
			print:    func(b *bytes.Buffer) { FprintHeader(b, "Runtime") },
			expected: []string{"Runtime", "─"},
		},
		{
			name:     "subheader",
			print:    func(b *bytes.Buffer) { FprintSubheader(b, "Library path") },
			expected: []string{"Library path"},
		},
		{
			name:     "list",
			print:    func(b *bytes.Buffer) { FprintList(b, []string{"/a", "/b"}) },
			expected: []string{"• /a", "• /b"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.print(&buf)
			for _, e := range tt.expected {
				assert.Contains(t, buf.String(), e)
			}
		})
	}
}

func TestColorizeSource(t *testing.T) {
	DisableColors()
	defer EnableColors()

	for _, s := range []core.Source{core.SourceBundled, core.SourceJavaHome, core.SourcePath, core.Source("other")} {
		assert.Equal(t, string(s), ColorizeSource(s))
	}
}

func TestStatus(t *testing.T) {
	assert.Equal(t, CheckMark, Status(true))
	assert.Equal(t, CrossMark, Status(false))
}

func TestColorControls(t *testing.T) {
	color.NoColor = false
	DisableColors()
	assert.True(t, color.NoColor)
	assert.False(t, AreColorsEnabled())

	EnableColors()
	assert.False(t, color.NoColor)
	assert.True(t, AreColorsEnabled())
}
