package launch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/quantmind-br/jlaunch/internal/core"
	"github.com/quantmind-br/jlaunch/internal/heap"
	"github.com/quantmind-br/jlaunch/internal/jre"
	"github.com/quantmind-br/jlaunch/internal/libpath"
	"github.com/stretchr/testify/assert"
)

func TestJavaHomeOption(t *testing.T) {
	tests := []struct {
		home   string
		want   string
		wantOK bool
	}{
		{"/usr/lib/jvm/jdk1.8.0/jre", "-Djava.home=/usr/lib/jvm/jdk1.8.0", true},
		{"/usr/lib/jvm/jdk1.8.0/jre/", "-Djava.home=/usr/lib/jvm/jdk1.8.0", true},
		{"/usr/lib/jvm/java-21", "", false},
		{"/opt/jre-17", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.home, func(t *testing.T) {
			got, ok := JavaHomeOption(tt.home)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRewriteMemoryArgs(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		mb   int
		want []string
	}{
		{
			name: "no memory option",
			argv: []string{"jlaunch", "--debug"},
			mb:   384,
			want: []string{"jlaunch", "--mem=384m", "--debug"},
		},
		{
			name: "equals form replaced",
			argv: []string{"jlaunch", "--mem=512m", "--debug"},
			mb:   384,
			want: []string{"jlaunch", "--mem=384m", "--debug"},
		},
		{
			name: "separate value removed",
			argv: []string{"jlaunch", "--memory", "1g", "file.tif"},
			mb:   768,
			want: []string{"jlaunch", "--mem=768m", "file.tif"},
		},
		{
			name: "after separator kept",
			argv: []string{"jlaunch", "--mem=512m", "--", "--mem=1g"},
			mb:   384,
			want: []string{"jlaunch", "--mem=384m", "--", "--mem=1g"},
		},
		{
			name: "empty",
			argv: nil,
			mb:   384,
			want: nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RewriteMemoryArgs(tt.argv, tt.mb))
		})
	}
}

// memoryFromArgs returns the value of the last --mem/--memory option before "--"
func memoryFromArgs(argv []string) (int, bool) {
	mb, found := 0, false
	for i := 1; i < len(argv); i++ {
		arg := argv[i]
		if arg == "--" {
			break
		}
		var value string
		switch {
		case arg == "--mem" || arg == "--memory":
			if i+1 >= len(argv) {
				return mb, found
			}
			i++
			value = argv[i]
		case strings.HasPrefix(arg, "--mem="):
			value = strings.TrimPrefix(arg, "--mem=")
		case strings.HasPrefix(arg, "--memory="):
			value = strings.TrimPrefix(arg, "--memory=")
		default:
			continue
		}
		if v, err := heap.ParseSize(value); err == nil {
			mb, found = v, true
		}
	}
	return mb, found
}

func TestMemoryArgsRoundTrip(t *testing.T) {
	argv := RewriteMemoryArgs([]string{"jlaunch", "--mem", "2g", "--memory=1g", "--", "--mem=64m"}, 768)
	assert.Equal(t, []string{"jlaunch", "--mem=768m", "--", "--mem=64m"}, argv)

	mb, ok := memoryFromArgs(argv)
	assert.True(t, ok)
	assert.Equal(t, 768, mb)
}

func TestFormatCommand(t *testing.T) {
	tests := []struct {
		name string
		goos string
		argv []string
		want string
	}{
		{
			name: "plain",
			goos: "linux",
			argv: []string{"/usr/bin/java", "-Xmx512m", "Main"},
			want: "/usr/bin/java -Xmx512m Main",
		},
		{
			name: "shell expansion is suppressed",
			goos: "linux",
			argv: []string{"java", "-Dapp.title=Cost $5", "Main", "it's", "`id`", ""},
			want: "java '-Dapp.title=Cost $5' Main it\\'s \\`id\\` ''",
		},
		{
			name: "quote inside a spaced argument",
			goos: "darwin",
			argv: []string{"java", "Main", "Bob's file"},
			want: `java Main 'Bob'\''s file'`,
		},
		{
			name: "cmd.exe",
			goos: "windows",
			argv: []string{`C:\Java\bin\java.exe`, "-Dname=a b", "", "Main", "it's", `C:\My Data\`, `say "hi"`},
			want: `C:\Java\bin\java.exe "-Dname=a b" "" Main it's "C:\My Data\\" "say \"hi\""`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCommand(tt.goos, tt.argv))
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, core.ExitSuccess},
		{fmt.Errorf("%w: /opt/x", jre.ErrJavaHomeInvalid), core.ExitConfiguration},
		{fmt.Errorf("%w: cannot reduce", ErrOutOfMemory), core.ExitOutOfMemory},
		{fmt.Errorf("%w: %w", libpath.ErrReExec, errors.New("EACCES")), core.ExitReExecFailed},
		{ErrEntryPoint, core.ExitEntryPoint},
		{ErrNoJava, core.ExitJavaNotFound},
		{fmt.Errorf("locate: %w", context.Canceled), core.ExitInterrupted},
		{errors.New("boom"), core.ExitGeneral},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCode(tt.err), "%v", tt.err)
	}
}

func TestState(t *testing.T) {
	assert.Equal(t, "embedded-running", StateEmbeddedRunning.String())
	assert.Equal(t, "unknown", State(99).String())

	for _, s := range []State{StateEmbeddedRunning, StateReExecuted, StateFallbackExternal, StateFailed} {
		assert.True(t, s.Terminal(), s.String())
	}
	for _, s := range []State{StateNotStarted, StateProbing, StateRetryingWithLessMemory} {
		assert.False(t, s.Terminal(), s.String())
	}
}
