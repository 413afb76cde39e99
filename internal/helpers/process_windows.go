//go:build windows

package helpers

import (
	"context"
	"os"
)

// Windows has no exec; run the image as a child and leave with its exit code.
func execProcess(path string, argv []string, env []string) error {
	var args []string
	if len(argv) > 1 {
		args = argv[1:]
	}
	code, err := NewOSCommandRunner().RunAttached(context.Background(), StdStreams(), env, path, args...)
	if err != nil {
		return err
	}
	os.Exit(code)
	return nil
}
