//go:build !windows

package helpers

import "golang.org/x/sys/unix"

func execProcess(path string, argv []string, env []string) error {
	return unix.Exec(path, argv, env)
}
