//go:build windows

package jre

import (
	"golang.org/x/sys/windows/registry"
)

// Installer keys, newest layout first
var javaSoftKeys = []string{
	`SOFTWARE\JavaSoft\JDK`,
	`SOFTWARE\JavaSoft\Java Development Kit`,
	`SOFTWARE\JavaSoft\JRE`,
	`SOFTWARE\JavaSoft\Java Runtime Environment`,
}

type windowsRegistry struct{}

func systemRegistry() RegistryReader {
	return windowsRegistry{}
}

// JavaHomes reads CurrentVersion under each JavaSoft key and returns the JavaHome it points to
func (windowsRegistry) JavaHomes() []string {
	var homes []string
	for _, root := range javaSoftKeys {
		if home, ok := readJavaHome(root); ok {
			homes = append(homes, home)
		}
	}
	return homes
}

func readJavaHome(root string) (string, bool) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, root, registry.QUERY_VALUE)
	if err != nil {
		return "", false
	}
	version, _, err := key.GetStringValue("CurrentVersion")
	key.Close()
	if err != nil || version == "" {
		return "", false
	}

	sub, err := registry.OpenKey(registry.LOCAL_MACHINE, root+`\`+version, registry.QUERY_VALUE)
	if err != nil {
		return "", false
	}
	defer sub.Close()

	home, _, err := sub.GetStringValue("JavaHome")
	if err != nil || home == "" {
		return "", false
	}
	return home, true
}
