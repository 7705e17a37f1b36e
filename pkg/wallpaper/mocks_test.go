package wallpaper

import (
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockUI implements ui.Host for testing
type MockUI struct {
	mock.Mock
}

func (m *MockUI) NotifyUser(title, message string) {
	m.Called(title, message)
}

func (m *MockUI) ConfirmAction(title, message string, onConfirm func()) {
	m.Called(title, message, onConfirm)
}

func (m *MockUI) PickDirectory(title string, onPicked func(path string)) {
	m.Called(title, onPicked)
}

// fakeSink records applied wallpapers and reports the last one as current.
type fakeSink struct {
	mu       sync.Mutex
	current  string
	applied  []string
	applyErr error
}

func (s *fakeSink) Apply(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied = append(s.applied, path)
	if s.applyErr != nil {
		return s.applyErr
	}
	s.current = path
	return nil
}

func (s *fakeSink) Current() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, nil
}

func (s *fakeSink) setCurrent(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = path
}

func (s *fakeSink) appliedPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.applied...)
}

// fakeSettings is an in-memory SettingsStore.
type fakeSettings struct {
	mu   sync.Mutex
	path string
}

func (f *fakeSettings) CatalogPath() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.path
}

func (f *fakeSettings) SetCatalogPath(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.path = path
}
