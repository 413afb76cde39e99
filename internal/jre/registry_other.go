//go:build !windows

package jre

func systemRegistry() RegistryReader {
	return StaticRegistry(nil)
}
