package security

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ValidClassNameRegex matches a dotted Java binary class name
	ValidClassNameRegex = regexp.MustCompile(`^[\p{L}_$][\p{L}\p{N}_$]*(\.[\p{L}_$][\p{L}\p{N}_$]*)*$`)

	// ValidHeapSizeRegex matches the size forms accepted by -Xmx and --mem
	ValidHeapSizeRegex = regexp.MustCompile(`^[0-9]+[kKmMgGtT]?$`)
)

// ValidatePath performs general path validation
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if strings.Contains(path, "\x00") {
		return fmt.Errorf("path contains null bytes: %q", path)
	}

	if len(path) >= 4096 {
		return fmt.Errorf("path too long: %d characters", len(path))
	}

	return nil
}

// ValidateJavaHome checks an explicitly configured Java home and returns its cleaned form.
// Relative paths are resolved against baseDir.
func ValidateJavaHome(path, baseDir string) (string, error) {
	if err := ValidatePath(path); err != nil {
		return "", fmt.Errorf("invalid java home: %w", err)
	}

	if !filepath.IsAbs(path) {
		if baseDir == "" {
			return "", fmt.Errorf("invalid java home: %q is relative and no base directory is known", path)
		}
		path = filepath.Join(baseDir, path)
	}

	return filepath.Clean(path), nil
}

// ValidateClassName validates a dotted Java class name such as net.example.Main
func ValidateClassName(name string) error {
	if name == "" {
		return fmt.Errorf("class name cannot be empty")
	}

	if len(name) > 1024 {
		return fmt.Errorf("class name too long (max 1024 characters)")
	}

	if !ValidClassNameRegex.MatchString(name) {
		return fmt.Errorf("invalid class name: %q", name)
	}

	return nil
}

// ValidateJVMOption rejects options the JVM cannot receive through its C interface
func ValidateJVMOption(opt string) error {
	if opt == "" {
		return fmt.Errorf("JVM option cannot be empty")
	}

	if strings.Contains(opt, "\x00") {
		return fmt.Errorf("JVM option contains null byte: %q", opt)
	}

	if !strings.HasPrefix(opt, "-") {
		return fmt.Errorf("JVM option must start with '-': %q", opt)
	}

	return nil
}

// ValidateHeapSize validates a heap size such as 512m, 2g or a bare megabyte count
func ValidateHeapSize(size string) error {
	if !ValidHeapSizeRegex.MatchString(size) {
		return fmt.Errorf("invalid heap size: %q", size)
	}
	return nil
}

// ValidateEnvironmentVariable validates an environment variable name and value
func ValidateEnvironmentVariable(name, value string) error {
	if name == "" {
		return fmt.Errorf("environment variable name cannot be empty")
	}

	if strings.ContainsAny(name, "=\x00") {
		return fmt.Errorf("invalid environment variable name: %q", name)
	}

	if strings.Contains(value, "\x00") {
		return fmt.Errorf("environment variable %s contains null byte", name)
	}

	return nil
}
