package types

// MockLogger is a Logger that records messages for test assertions.
type MockLogger struct {
	Messages []string
}

func (m *MockLogger) Debug(msg string, _ ...interface{})  { m.Messages = append(m.Messages, msg) }
func (m *MockLogger) Info(msg string, _ ...interface{})   { m.Messages = append(m.Messages, msg) }
func (m *MockLogger) Warn(msg string, _ ...interface{})   { m.Messages = append(m.Messages, msg) }
func (m *MockLogger) Error(msg string, _ ...interface{})  { m.Messages = append(m.Messages, msg) }
func (m *MockLogger) Fatalf(msg string, _ ...interface{}) { m.Messages = append(m.Messages, msg) }
