package portal

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Read(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockStorage) Write(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) GetLoginPath() string {
	return m.Called().String(0)
}

func (m *MockConfig) GetDefaultRedirect() string {
	return m.Called().String(0)
}

func (m *MockConfig) GetRejectedRouteKey() string {
	return m.Called().String(0)
}

func (m *MockConfig) GetStorageKey() string {
	return m.Called().String(0)
}

func (m *MockConfig) GetStorageTimeout() time.Duration {
	return m.Called().Get(0).(time.Duration)
}

func (m *MockConfig) GetPhoneRegion() string {
	return m.Called().String(0)
}

func (m *MockConfig) GetDebug() bool {
	return m.Called().Bool(0)
}

// memStorage is a plain map backed Storage for tests that do not care
// about call expectations
type memStorage struct {
	values map[string]string
}

func newMemStorage() *memStorage {
	return &memStorage{values: map[string]string{}}
}

func (m *memStorage) Read(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStorage) Write(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

// recordingLogger keeps every message
type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Debug(format string, args ...any) {
	r.lines = append(r.lines, "DBG "+formatLog(format, args...))
}

func (r *recordingLogger) Info(format string, args ...any) {
	r.lines = append(r.lines, "INF "+formatLog(format, args...))
}

func (r *recordingLogger) Error(format string, args ...any) {
	r.lines = append(r.lines, "ERR "+formatLog(format, args...))
}
