package jre

// RegistryReader lists Java homes recorded by installers in a system registry
type RegistryReader interface {
	JavaHomes() []string
}

// StaticRegistry is a RegistryReader with a fixed answer
type StaticRegistry []string

// JavaHomes implements RegistryReader
func (s StaticRegistry) JavaHomes() []string {
	return append([]string(nil), s...)
}
