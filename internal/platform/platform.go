// Package platform holds the per-OS data the launcher needs: where JVM
// libraries live relative to a Java home, how native libraries are recognized,
// which environment variable drives the dynamic linker and how processes are
// replaced. The table is selected once at startup.
package platform

import (
	"runtime"

	"github.com/quantmind-br/jlaunch/internal/core"
	"github.com/quantmind-br/jlaunch/internal/probe"
)

// Platform describes one OS/architecture pair
type Platform struct {
	OS    string
	Arch  string
	Width core.Width

	// Format is the shared library format accepted by the probe
	Format probe.Format

	// BundledDirs are the directory names under <app>/java searched for a
	// bundled runtime, most specific first
	BundledDirs []string

	// LibraryPaths are the JVM library locations relative to a Java home,
	// in priority order
	LibraryPaths []string

	// LibraryEnv is the variable the dynamic linker reads at process start
	LibraryEnv    string
	ListSeparator string

	JavaCommand string
	ExeSuffix   string

	// CreateSymbols lists the creation entry point followed by its alternate
	CreateSymbols []string

	// HasExec is false where no exec-family call replaces the process image
	HasExec bool

	// ReExecForLibraryPath is set where LibraryEnv only takes effect at process start
	ReExecForLibraryPath bool

	// MainThreadRunLoop is set where the OS event loop must own the main thread
	MainThreadRunLoop bool

	// HeapCeiling32 caps the heap in MB when running as a 32-bit process
	HeapCeiling32 int
}

// Current returns the table entry for the running binary
func Current() Platform {
	return For(runtime.GOOS, runtime.GOARCH)
}

// For returns the table entry for goos/goarch
func For(goos, goarch string) Platform {
	width := widthOf(goarch)

	p := Platform{
		OS:                   goos,
		Arch:                 goarch,
		Width:                width,
		JavaCommand:          "java",
		ListSeparator:        ":",
		CreateSymbols:        []string{"JNI_CreateJavaVM"},
		HasExec:              true,
		ReExecForLibraryPath: true,
		HeapCeiling32:        1920,
	}

	switch goos {
	case "windows":
		p.Format = probe.FormatPE
		p.LibraryEnv = "PATH"
		p.ListSeparator = ";"
		p.ExeSuffix = ".exe"
		p.CreateSymbols = append(p.CreateSymbols, "JNI_CreateJavaVM@12")
		p.HasExec = false
		p.ReExecForLibraryPath = false
		p.HeapCeiling32 = 1638
		p.LibraryPaths = []string{
			"bin/server/jvm.dll",
			"jre/bin/server/jvm.dll",
			"bin/client/jvm.dll",
			"jre/bin/client/jvm.dll",
		}
		if width == core.Width32 {
			p.LibraryPaths = []string{
				"jre/bin/client/jvm.dll",
				"bin/client/jvm.dll",
				"jre/bin/server/jvm.dll",
				"bin/server/jvm.dll",
			}
		}
	case "darwin":
		p.Format = probe.FormatMachO
		p.LibraryEnv = "DYLD_LIBRARY_PATH"
		p.CreateSymbols = append(p.CreateSymbols, "JNI_CreateJavaVM_Impl")
		p.MainThreadRunLoop = true
		p.LibraryPaths = []string{
			"Contents/Home/lib/jli/libjli.dylib",
			"lib/jli/libjli.dylib",
			"Contents/Home/jre/lib/jli/libjli.dylib",
			"jre/lib/jli/libjli.dylib",
			"Contents/Home/lib/server/libjvm.dylib",
			"lib/server/libjvm.dylib",
			"Contents/MacOS/libjli.dylib",
			"Contents/Libraries/libjli.jnilib",
		}
	default:
		p.Format = probe.FormatELF
		p.LibraryEnv = "LD_LIBRARY_PATH"
		p.LibraryPaths = linuxLibraryPaths(goarch)
	}

	p.BundledDirs = bundledDirs(goos, goarch, width)
	return p
}

func (p Platform) String() string {
	return p.OS + "-" + p.Arch
}

// JavaExecutable returns the java launcher file name for this OS
func (p Platform) JavaExecutable() string {
	return p.JavaCommand + p.ExeSuffix
}

// HeapCeiling returns the heap cap in MB for this process width, 0 for none
func (p Platform) HeapCeiling() int {
	if p.Width == core.Width32 {
		return p.HeapCeiling32
	}
	return 0
}

// PlatformDir is the primary directory name used under <app>/lib and <app>/java
func (p Platform) PlatformDir() string {
	if len(p.BundledDirs) == 0 {
		return p.String()
	}
	return p.BundledDirs[0]
}

func widthOf(goarch string) core.Width {
	switch goarch {
	case "386", "arm", "mips", "mipsle", "ppc", "wasm":
		return core.Width32
	default:
		return core.Width64
	}
}

// jvmArchDir maps GOARCH to the directory name legacy JREs use under lib/
func jvmArchDir(goarch string) string {
	switch goarch {
	case "386":
		return "i386"
	case "arm64":
		return "aarch64"
	default:
		return goarch
	}
}

func linuxLibraryPaths(goarch string) []string {
	arch := jvmArchDir(goarch)
	if widthOf(goarch) == core.Width32 {
		return []string{
			"lib/server/libjvm.so",
			"lib/client/libjvm.so",
			"lib/" + arch + "/server/libjvm.so",
			"lib/" + arch + "/client/libjvm.so",
			"jre/lib/" + arch + "/server/libjvm.so",
			"jre/lib/" + arch + "/client/libjvm.so",
		}
	}
	return []string{
		"lib/server/libjvm.so",
		"lib/" + arch + "/server/libjvm.so",
		"jre/lib/" + arch + "/server/libjvm.so",
	}
}

func bundledDirs(goos, goarch string, width core.Width) []string {
	osName := goos
	legacy := goos
	switch goos {
	case "darwin":
		osName = "macos"
		legacy = "macosx"
	case "windows":
		legacy = "win"
	}

	dirs := []string{osName + "-" + goarch}
	if goos == "darwin" {
		dirs = append(dirs, "darwin-"+goarch, legacy)
		return dirs
	}
	bits := "64"
	if width == core.Width32 {
		bits = "32"
	}
	return append(dirs, legacy+bits)
}
