//go:build ((darwin || linux) && (amd64 || arm64)) || windows

package jvm

import (
	"fmt"
	"runtime"
	"strings"
	"unsafe"
)

type javaVMOption struct {
	optionString *byte
	extraInfo    uintptr
}

type javaVMInitArgs struct {
	version            int32
	nOptions           int32
	options            *javaVMOption
	ignoreUnrecognized uint8
}

// JNIEnv function table slots
const (
	envFindClass             = 6
	envExceptionDescribe     = 16
	envExceptionClear        = 17
	envDeleteLocalRef        = 23
	envGetStaticMethodID     = 113
	envCallStaticVoidMethodA = 143
	envNewStringUTF          = 167
	envNewObjectArray        = 172
	envSetObjectArrayElement = 174
	envExceptionCheck        = 228
)

// JavaVM function table slots
const (
	vmDestroyJavaVM       = 3
	vmDetachCurrentThread = 5
)

type javaVM struct {
	vm  uintptr
	env uintptr
}

func cString(s string) *byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return &b[0]
}

// newCreateFunc wraps the address of a JNI_CreateJavaVM style function
func newCreateFunc(fn uintptr) CreateFunc {
	return func(options []string) (VM, int) {
		opts := make([]javaVMOption, len(options))
		for i, o := range options {
			opts[i].optionString = cString(o)
		}

		args := javaVMInitArgs{
			version:  Version1_4,
			nOptions: int32(len(opts)),
		}
		if len(opts) > 0 {
			args.options = &opts[0]
		}

		var vm, env uintptr
		r := call(fn,
			uintptr(unsafe.Pointer(&vm)),
			uintptr(unsafe.Pointer(&env)),
			uintptr(unsafe.Pointer(&args)))
		runtime.KeepAlive(opts)
		runtime.KeepAlive(&args)

		status := int(int32(r))
		if status != StatusOK {
			return nil, status
		}
		return &javaVM{vm: vm, env: env}, status
	}
}

// slot returns entry index of the function table obj points to
func slot(obj uintptr, index int) uintptr {
	table := *(*uintptr)(unsafe.Pointer(obj))
	return *(*uintptr)(unsafe.Pointer(table + uintptr(index)*unsafe.Sizeof(uintptr(0))))
}

func (j *javaVM) envCall(index int, args ...uintptr) uintptr {
	return call(slot(j.env, index), append([]uintptr{j.env}, args...)...)
}

func (j *javaVM) vmCall(index int) int {
	return int(int32(call(slot(j.vm, index), j.vm)))
}

func (j *javaVM) pendingException() bool {
	return j.envCall(envExceptionCheck)&0xff != 0
}

func (j *javaVM) describeException() {
	if j.pendingException() {
		j.envCall(envExceptionDescribe)
		j.envCall(envExceptionClear)
	}
}

func (j *javaVM) findClass(name string) uintptr {
	p := cString(SlashedName(name))
	class := j.envCall(envFindClass, uintptr(unsafe.Pointer(p)))
	runtime.KeepAlive(p)
	return class
}

func (j *javaVM) staticMethod(class uintptr, name, sig string) uintptr {
	n, s := cString(name), cString(sig)
	id := j.envCall(envGetStaticMethodID, class, uintptr(unsafe.Pointer(n)), uintptr(unsafe.Pointer(s)))
	runtime.KeepAlive(n)
	runtime.KeepAlive(s)
	return id
}

func (j *javaVM) stringArray(values []string) (uintptr, error) {
	stringClass := j.findClass("java.lang.String")
	if stringClass == 0 {
		j.describeException()
		return 0, fmt.Errorf("%w: java.lang.String", ErrClassNotFound)
	}
	defer j.envCall(envDeleteLocalRef, stringClass)

	arr := j.envCall(envNewObjectArray, uintptr(len(values)), stringClass, 0)
	if arr == 0 {
		j.describeException()
		return 0, fmt.Errorf("failed to allocate argument array of %d elements", len(values))
	}

	for i, v := range values {
		p := cString(v)
		str := j.envCall(envNewStringUTF, uintptr(unsafe.Pointer(p)))
		runtime.KeepAlive(p)
		if str == 0 {
			j.describeException()
			return 0, fmt.Errorf("failed to convert argument %d", i)
		}
		j.envCall(envSetObjectArrayElement, arr, uintptr(i), str)
		j.envCall(envDeleteLocalRef, str)
	}
	return arr, nil
}

// CallMain implements VM.CallMain
func (j *javaVM) CallMain(classes []string, args []string) error {
	var class uintptr
	var name string
	for _, c := range classes {
		if class = j.findClass(c); class != 0 {
			name = c
			break
		}
		j.describeException()
	}
	if class == 0 {
		return fmt.Errorf("%w: %s", ErrClassNotFound, strings.Join(classes, ", "))
	}

	method := j.staticMethod(class, MainMethod, MainSignature)
	if method == 0 {
		j.describeException()
		return fmt.Errorf("%w: %s", ErrMethodNotFound, name)
	}

	arr, err := j.stringArray(args)
	if err != nil {
		return err
	}

	jv := [1]uint64{uint64(arr)}
	j.envCall(envCallStaticVoidMethodA, class, method, uintptr(unsafe.Pointer(&jv[0])))
	runtime.KeepAlive(&jv)

	if j.pendingException() {
		j.describeException()
		return fmt.Errorf("%w: %s", ErrUncaughtException, name)
	}
	return nil
}

// Destroy implements VM.Destroy
func (j *javaVM) Destroy() error {
	detach := j.vmCall(vmDetachCurrentThread)
	if status := j.vmCall(vmDestroyJavaVM); status != StatusOK {
		return fmt.Errorf("DestroyJavaVM returned %d", status)
	}
	if detach != StatusOK {
		return fmt.Errorf("DetachCurrentThread returned %d", detach)
	}
	return nil
}
