package launch

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
)

// System properties set by the launcher
const (
	PropAppDir      = "jlaunch.dir"
	PropExecutable  = "jlaunch.executable"
	PropLibraryPath = "java.library.path"
	PropClassPath   = "java.class.path"
	PropJavaHome    = "java.home"
)

// HeapRetryEnv marks a child started after an ambiguous creation failure
const HeapRetryEnv = "JLAUNCH_HEAP_RETRIED"

// Property renders a -D option
func Property(key, value string) string {
	return "-D" + key + "=" + value
}

// JavaHomeOption returns the java.home option for a JRE nested in a JDK,
// pointing at the JDK so tools below it stay reachable
func JavaHomeOption(home string) (string, bool) {
	clean := filepath.Clean(home)
	if filepath.Base(clean) != "jre" {
		return "", false
	}
	return Property(PropJavaHome, filepath.Dir(clean)), true
}

// RewriteMemoryArgs returns argv with any --mem/--memory option given before
// "--" removed and --mem=<mb>m inserted after the program name
func RewriteMemoryArgs(argv []string, mb int) []string {
	if len(argv) == 0 {
		return nil
	}
	out := []string{argv[0], fmt.Sprintf("--mem=%dm", mb)}

	rest := argv[1:]
	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		if arg == "--" {
			out = append(out, rest[i:]...)
			break
		}
		switch {
		case arg == "--mem" || arg == "--memory":
			i++
			continue
		case strings.HasPrefix(arg, "--mem=") || strings.HasPrefix(arg, "--memory="):
			continue
		}
		out = append(out, arg)
	}
	return out
}

// FormatCommand renders argv so that it can be pasted into the shell of goos:
// cmd.exe on Windows, a POSIX shell elsewhere
func FormatCommand(goos string, argv []string) string {
	if goos != "windows" {
		return shellquote.Join(argv...)
	}
	parts := make([]string, len(argv))
	for i, a := range argv {
		parts[i] = windowsQuote(a)
	}
	return strings.Join(parts, " ")
}

// windowsQuote applies the CommandLineToArgvW rules: backslashes are literal
// unless they precede a double quote
func windowsQuote(arg string) string {
	if arg == "" {
		return `""`
	}
	if !strings.ContainsAny(arg, " \t\n\v\"") {
		return arg
	}

	var b strings.Builder
	b.WriteByte('"')
	slashes := 0
	for i := 0; i < len(arg); i++ {
		c := arg[i]
		switch c {
		case '\\':
			slashes++
		case '"':
			b.WriteString(strings.Repeat(`\`, slashes+1))
			slashes = 0
		default:
			slashes = 0
		}
		b.WriteByte(c)
	}
	b.WriteString(strings.Repeat(`\`, slashes))
	b.WriteByte('"')
	return b.String()
}
