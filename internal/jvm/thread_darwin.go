//go:build darwin

package jvm

import (
	"os"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
)

const coreFoundation = "/System/Library/Frameworks/CoreFoundation.framework/CoreFoundation"

func init() {
	// AppKit inside the JVM expects the process main thread to run the
	// CoreFoundation loop, so keep main pinned to it.
	runtime.LockOSThread()
}

type runLoopSourceContext struct {
	version         uintptr
	info            uintptr
	retain          uintptr
	release         uintptr
	copyDescription uintptr
	equal           uintptr
	hash            uintptr
	schedule        uintptr
	cancel          uintptr
	perform         uintptr
}

type runLoop struct {
	getCurrent   func() uintptr
	sourceCreate func(allocator uintptr, order int, ctx *runLoopSourceContext) uintptr
	addSource    func(loop, source, mode uintptr)
	run          func()
	commonModes  uintptr
}

func openRunLoop() (*runLoop, error) {
	lib, err := purego.Dlopen(coreFoundation, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, err
	}
	modes, err := purego.Dlsym(lib, "kCFRunLoopCommonModes")
	if err != nil {
		return nil, err
	}

	rl := &runLoop{commonModes: *(*uintptr)(unsafe.Pointer(modes))}
	purego.RegisterLibFunc(&rl.getCurrent, lib, "CFRunLoopGetCurrent")
	purego.RegisterLibFunc(&rl.sourceCreate, lib, "CFRunLoopSourceCreate")
	purego.RegisterLibFunc(&rl.addSource, lib, "CFRunLoopAddSource")
	purego.RegisterLibFunc(&rl.run, lib, "CFRunLoopRun")
	return rl, nil
}

// park keeps the main thread in CFRunLoopRun. A dummy source stops the loop
// from returning immediately for lack of work.
func (rl *runLoop) park() {
	ctx := &runLoopSourceContext{
		perform: purego.NewCallback(func(info uintptr) uintptr { return 0 }),
	}
	source := rl.sourceCreate(0, 0, ctx)
	rl.addSource(rl.getCurrent(), source, rl.commonModes)
	rl.run()
	runtime.KeepAlive(ctx)
}

// Run executes fn on a worker thread while the main thread runs the
// CoreFoundation run loop. The worker terminates the process with fn's
// result since the loop never hands control back.
func Run(fn func() int) int {
	rl, err := openRunLoop()
	if err != nil {
		return runLocked(fn)
	}

	go func() {
		runtime.LockOSThread()
		os.Exit(fn())
	}()

	rl.park()
	select {}
}
