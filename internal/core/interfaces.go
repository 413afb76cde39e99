package core

// LaunchOptions is handed to the orchestrator once argument processing is done
type LaunchOptions struct {
	JVMOptions      []string // options passed to the JVM, in order
	AppOptions      []string // arguments passed to the entry class
	MainClass       string   // entry class, dotted form
	LegacyMainClass string   // tried when MainClass cannot be found
	HeapMB          int      // requested maximum heap, 0 when unknown
	ClassPath       string   // passed as java.class.path when set
	DryRun          bool     // print the command line instead of launching
	UseSystemJVM    bool     // skip embedding and run an external java
}

// Clone returns a deep copy so callers can hand out options without sharing slices
func (o LaunchOptions) Clone() LaunchOptions {
	c := o
	c.JVMOptions = append([]string(nil), o.JVMOptions...)
	c.AppOptions = append([]string(nil), o.AppOptions...)
	return c
}
