package jvm

// MockLoader is a Loader for tests
type MockLoader struct {
	OpenFunc func(path string) (Library, error)
	Opened   []string
}

// Open implements Loader.Open
func (m *MockLoader) Open(path string) (Library, error) {
	m.Opened = append(m.Opened, path)
	if m.OpenFunc != nil {
		return m.OpenFunc(path)
	}
	return &MockLibrary{}, nil
}

// MockLibrary is a Library for tests. Without EntryFunc every lookup
// succeeds and creation returns Status.
type MockLibrary struct {
	EntryFunc func(names ...string) (CreateFunc, error)
	Status    int
	VM        *MockVM
	Options   [][]string
	Closed    bool
}

// Entry implements Library.Entry
func (m *MockLibrary) Entry(names ...string) (CreateFunc, error) {
	if m.EntryFunc != nil {
		return m.EntryFunc(names...)
	}
	return func(options []string) (VM, int) {
		m.Options = append(m.Options, append([]string(nil), options...))
		if m.Status != StatusOK {
			return nil, m.Status
		}
		if m.VM == nil {
			m.VM = &MockVM{}
		}
		return m.VM, StatusOK
	}, nil
}

// Close implements Library.Close
func (m *MockLibrary) Close() error {
	m.Closed = true
	return nil
}

// MockVM is a VM for tests
type MockVM struct {
	CallMainFunc func(classes []string, args []string) error
	Classes      []string
	Args         []string
	Destroyed    bool
}

// CallMain implements VM.CallMain
func (m *MockVM) CallMain(classes []string, args []string) error {
	m.Classes = append([]string(nil), classes...)
	m.Args = append([]string(nil), args...)
	if m.CallMainFunc != nil {
		return m.CallMainFunc(classes, args)
	}
	return nil
}

// Destroy implements VM.Destroy
func (m *MockVM) Destroy() error {
	m.Destroyed = true
	return nil
}
