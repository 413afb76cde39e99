package jvm

import "runtime"

// runLocked runs fn on a goroutine wired to its own OS thread for the whole
// lifetime of the VM and waits for its result. The thread is not released
// afterwards so it exits together with the goroutine.
func runLocked(fn func() int) int {
	done := make(chan int, 1)
	go func() {
		runtime.LockOSThread()
		done <- fn()
	}()
	return <-done
}
