package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/quantmind-br/jlaunch/internal/fsops"
	"github.com/quantmind-br/jlaunch/internal/heap"
	"github.com/quantmind-br/jlaunch/internal/paths"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. JLAUNCH_JVM_HEAP
const EnvPrefix = "JLAUNCH"

// Defaults for the ImageJ-style launcher
const (
	DefaultMainClass       = "net.imagej.launcher.ClassLauncher"
	DefaultLegacyMainClass = "imagej.ClassLauncher"
	DefaultBundledJavaDir  = "java"
	HeapAuto               = "auto"
)

// Config represents the launcher configuration
type Config struct {
	Launcher LauncherConfig `mapstructure:"launcher" toml:"launcher"`
	JVM      JVMConfig      `mapstructure:"jvm" toml:"jvm"`
	Logging  LoggingConfig  `mapstructure:"logging" toml:"logging,omitempty"`
	Paths    PathsConfig    `mapstructure:"paths" toml:"paths,omitempty"`
}

// LauncherConfig selects the application and the runtime
type LauncherConfig struct {
	AppDir          string `mapstructure:"app_dir" toml:"app_dir,omitempty"`
	JavaHome        string `mapstructure:"java_home" toml:"java_home,omitempty"`
	SystemJVM       bool   `mapstructure:"system_jvm" toml:"system_jvm"`
	MainClass       string `mapstructure:"main_class" toml:"main_class"`
	LegacyMainClass string `mapstructure:"legacy_main_class" toml:"legacy_main_class"`
	BundledJavaDir  string `mapstructure:"bundled_java_dir" toml:"bundled_java_dir"`
}

// JVMConfig holds options passed to the virtual machine
type JVMConfig struct {
	// Heap is "auto" or a size such as 2g or 512m
	Heap      string   `mapstructure:"heap" toml:"heap"`
	MinHeapMB int      `mapstructure:"min_heap_mb" toml:"min_heap_mb"`
	Options   []string `mapstructure:"options" toml:"options"`
	ClassPath string   `mapstructure:"class_path" toml:"class_path,omitempty"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level" toml:"level,omitempty"`
	Color string `mapstructure:"color" toml:"color,omitempty"`
}

// PathsConfig contains path-related configuration
type PathsConfig struct {
	LogFile string `mapstructure:"log_file" toml:"log_file,omitempty"`
}

// HeapMB returns the configured heap in MB, zero for automatic sizing
func (c *Config) HeapMB() (int, error) {
	h := strings.TrimSpace(c.JVM.Heap)
	if h == "" || strings.EqualFold(h, HeapAuto) {
		return 0, nil
	}
	mb, err := heap.ParseSize(h)
	if err != nil {
		return 0, fmt.Errorf("jvm.heap: %w", err)
	}
	return mb, nil
}

// Load reads configuration from, in increasing precedence, defaults, the
// per-user file, <appDir>/jlaunch.toml and JLAUNCH_* environment variables.
// launcher.app_dir from the user file or environment replaces appDir.
func Load(fs afero.Fs, r *paths.Resolver, appDir string) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigType("toml")
	setDefaults(v, r)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readIfExists(v, fs, r.UserConfigFile(), false); err != nil {
		return nil, err
	}

	if dir := v.GetString("launcher.app_dir"); dir != "" {
		appDir = r.ExpandHome(dir)
	}
	if appDir != "" {
		if err := readIfExists(v, fs, paths.AppConfigFile(appDir), true); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Launcher.AppDir == "" {
		cfg.Launcher.AppDir = appDir
	}
	cfg.Launcher.AppDir = r.ExpandHome(cfg.Launcher.AppDir)
	cfg.Launcher.JavaHome = r.ExpandHome(cfg.Launcher.JavaHome)
	cfg.Paths.LogFile = r.ExpandHome(cfg.Paths.LogFile)

	if _, err := cfg.HeapMB(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readIfExists(v *viper.Viper, fs afero.Fs, file string, merge bool) error {
	if !fsops.IsRegular(fs, file) {
		return nil
	}
	v.SetConfigFile(file)

	var err error
	if merge {
		err = v.MergeInConfig()
	} else {
		err = v.ReadInConfig()
	}
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("read config %s: %w", file, err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper, r *paths.Resolver) {
	v.SetDefault("launcher.app_dir", "")
	v.SetDefault("launcher.java_home", "")
	v.SetDefault("launcher.system_jvm", false)
	v.SetDefault("launcher.main_class", DefaultMainClass)
	v.SetDefault("launcher.legacy_main_class", DefaultLegacyMainClass)
	v.SetDefault("launcher.bundled_java_dir", DefaultBundledJavaDir)

	v.SetDefault("jvm.heap", HeapAuto)
	v.SetDefault("jvm.min_heap_mb", heap.DefaultFloorMB)
	v.SetDefault("jvm.options", []string{})
	v.SetDefault("jvm.class_path", "")

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.color", "auto")
	v.SetDefault("paths.log_file", r.LogFile())
}

// Default returns the configuration written for a new installation
func Default() *Config {
	return &Config{
		Launcher: LauncherConfig{
			MainClass:       DefaultMainClass,
			LegacyMainClass: DefaultLegacyMainClass,
			BundledJavaDir:  DefaultBundledJavaDir,
		},
		JVM: JVMConfig{
			Heap:      HeapAuto,
			MinHeapMB: heap.DefaultFloorMB,
			Options:   []string{},
		},
	}
}

// EnsureAppConfig writes a default jlaunch.toml into appDir unless one exists.
// It reports whether a file was written. Concurrent launchers may both write;
// the rename keeps the file complete either way.
func EnsureAppConfig(fs afero.Fs, appDir string) (bool, error) {
	file := paths.AppConfigFile(appDir)
	if fsops.Exists(fs, file) {
		return false, nil
	}

	data, err := toml.Marshal(Default())
	if err != nil {
		return false, fmt.Errorf("encode default config: %w", err)
	}
	if err := fsops.WriteFileAtomic(fs, file, data, 0644); err != nil {
		return false, fmt.Errorf("write %s: %w", file, err)
	}
	return true, nil
}
