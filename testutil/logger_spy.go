package testutil

import (
	"sync"
)

// LoggerSpy captures logging calls so tests can assert on operational
// logging without a real backend.
type LoggerSpy struct {
	mu      sync.Mutex
	records []SpyLogRecord
}

// SpyLogRecord represents one recorded log call.
type SpyLogRecord struct {
	Level   string
	Message string
	Args    []any
}

// NewLoggerSpy creates a new LoggerSpy instance.
func NewLoggerSpy() *LoggerSpy {
	return &LoggerSpy{}
}

func (s *LoggerSpy) Debug(msg string, args ...any) { s.record("debug", msg, args) }
func (s *LoggerSpy) Info(msg string, args ...any)  { s.record("info", msg, args) }
func (s *LoggerSpy) Warn(msg string, args ...any)  { s.record("warn", msg, args) }
func (s *LoggerSpy) Error(msg string, args ...any) { s.record("error", msg, args) }

func (s *LoggerSpy) record(level string, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpyLogRecord{Level: level, Message: msg, Args: args})
}

// Records returns a copy of everything logged so far.
func (s *LoggerSpy) Records() []SpyLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]SpyLogRecord, len(s.records))
	copy(copied, s.records)

	return copied
}

// MessagesAt returns the messages logged at one level, in order.
func (s *LoggerSpy) MessagesAt(level string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]string, 0)
	for _, record := range s.records {
		if record.Level == level {
			messages = append(messages, record.Message)
		}
	}

	return messages
}
