package storage

import (
	"sync"
)

// Memory is an in-process Handle. It is used by tests and by callers that
// want a throwaway table.
type Memory struct {
	mu        sync.Mutex
	content   string
	extension string
	writes    int

	failWrite  error
	failAppend error
	failRead   error
}

// NewMemory returns an empty Memory handle reporting ext as its extension.
func NewMemory(ext string) *Memory {
	return &Memory{extension: ext}
}

// NewMemoryWith returns a Memory handle preloaded with content.
func NewMemoryWith(ext, content string) *Memory {
	return &Memory{extension: ext, content: content}
}

func (m *Memory) Write(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite != nil {
		return m.failWrite
	}
	m.content = text
	m.writes++
	return nil
}

func (m *Memory) Append(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAppend != nil {
		return m.failAppend
	}
	m.content += text
	return nil
}

func (m *Memory) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRead != nil {
		return "", m.failRead
	}
	return m.content, nil
}

func (m *Memory) Extension() string {
	return m.extension
}

// Writes counts successful Write calls.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// FailWrites makes every following Write return err. A nil err clears it.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrite = err
}

// FailAppends makes every following Append return err. A nil err clears it.
func (m *Memory) FailAppends(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAppend = err
}

// FailReads makes every following Read return err. A nil err clears it.
func (m *Memory) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failRead = err
}
