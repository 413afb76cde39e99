package platform

import (
	"runtime"
	"testing"

	"github.com/quantmind-br/jlaunch/internal/core"
	"github.com/quantmind-br/jlaunch/internal/probe"
	"github.com/stretchr/testify/assert"
)

func TestFor_Linux(t *testing.T) {
	p := For("linux", "amd64")

	assert.Equal(t, probe.FormatELF, p.Format)
	assert.Equal(t, core.Width64, p.Width)
	assert.Equal(t, "LD_LIBRARY_PATH", p.LibraryEnv)
	assert.Equal(t, ":", p.ListSeparator)
	assert.True(t, p.HasExec)
	assert.True(t, p.ReExecForLibraryPath)
	assert.False(t, p.MainThreadRunLoop)
	assert.Equal(t, []string{"linux-amd64", "linux64"}, p.BundledDirs)
	assert.Equal(t, "linux-amd64", p.PlatformDir())
	assert.Equal(t, "lib/server/libjvm.so", p.LibraryPaths[0])
	assert.Contains(t, p.LibraryPaths, "jre/lib/amd64/server/libjvm.so")
	assert.Equal(t, []string{"JNI_CreateJavaVM"}, p.CreateSymbols)
	assert.Equal(t, 0, p.HeapCeiling())
	assert.Equal(t, "java", p.JavaExecutable())
}

func TestFor_Linux32(t *testing.T) {
	p := For("linux", "386")

	assert.Equal(t, core.Width32, p.Width)
	assert.Equal(t, []string{"linux-386", "linux32"}, p.BundledDirs)
	assert.Contains(t, p.LibraryPaths, "jre/lib/i386/client/libjvm.so")
	assert.Equal(t, 1920, p.HeapCeiling())
}

func TestFor_LinuxArm64(t *testing.T) {
	p := For("linux", "arm64")
	assert.Contains(t, p.LibraryPaths, "lib/aarch64/server/libjvm.so")
}

func TestFor_Windows(t *testing.T) {
	p := For("windows", "amd64")

	assert.Equal(t, probe.FormatPE, p.Format)
	assert.Equal(t, "PATH", p.LibraryEnv)
	assert.Equal(t, ";", p.ListSeparator)
	assert.False(t, p.HasExec)
	assert.False(t, p.ReExecForLibraryPath)
	assert.Equal(t, "java.exe", p.JavaExecutable())
	assert.Equal(t, []string{"JNI_CreateJavaVM", "JNI_CreateJavaVM@12"}, p.CreateSymbols)
	assert.Equal(t, []string{"windows-amd64", "win64"}, p.BundledDirs)

	p32 := For("windows", "386")
	assert.Equal(t, 1638, p32.HeapCeiling())
	assert.Equal(t, "jre/bin/client/jvm.dll", p32.LibraryPaths[0])
}

func TestFor_Darwin(t *testing.T) {
	p := For("darwin", "arm64")

	assert.Equal(t, probe.FormatMachO, p.Format)
	assert.Equal(t, "DYLD_LIBRARY_PATH", p.LibraryEnv)
	assert.True(t, p.MainThreadRunLoop)
	assert.Equal(t, []string{"macos-arm64", "darwin-arm64", "macosx"}, p.BundledDirs)
	assert.Equal(t, "JNI_CreateJavaVM_Impl", p.CreateSymbols[1])
	assert.Contains(t, p.LibraryPaths, "Contents/Home/lib/jli/libjli.dylib")
}

func TestCurrent(t *testing.T) {
	p := Current()
	assert.Equal(t, runtime.GOOS, p.OS)
	assert.Equal(t, runtime.GOARCH, p.Arch)
	assert.Equal(t, core.HostWidth(), p.Width)
	assert.NotEmpty(t, p.LibraryPaths)
	assert.Equal(t, runtime.GOOS+"-"+runtime.GOARCH, p.String())
}
