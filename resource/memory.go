package resource

import (
	"io"

	"github.com/pkg/errors"
)

// Memory is a growable in-memory resource. Writes past the end extend it,
// zero-filling any gap.
type Memory struct {
	data   []byte
	offset int64
	closed bool
}

var _ Resource = (*Memory)(nil)

// NewMemory returns a resource backed by data. The slice is owned by the
// resource from then on.
func NewMemory(data []byte) *Memory {
	return &Memory{data: data}
}

// Bytes returns the current contents. The slice is only valid until the
// next write or truncate.
func (m *Memory) Bytes() []byte {
	return m.data
}

func (m *Memory) Length() (int64, error) {
	if m.closed {
		return 0, errClosed
	}
	return int64(len(m.data)), nil
}

func (m *Memory) Seek(offset int64, whence int) (int64, error) {
	if m.closed {
		return 0, errClosed
	}

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = m.offset + offset
	case io.SeekEnd:
		abs = int64(len(m.data)) + offset
	default:
		return m.offset, errors.Errorf("invalid whence %d", whence)
	}

	if abs < 0 {
		return m.offset, errors.Errorf("negative offset %d", abs)
	}
	m.offset = abs
	return abs, nil
}

func (m *Memory) Read(p []byte) (int, error) {
	if m.closed {
		return 0, errClosed
	}
	if m.offset >= int64(len(m.data)) {
		return 0, io.EOF
	}

	n := copy(p, m.data[m.offset:])
	m.offset += int64(n)
	return n, nil
}

func (m *Memory) Write(p []byte) (int, error) {
	if m.closed {
		return 0, errClosed
	}

	end := m.offset + int64(len(p))
	if end > int64(len(m.data)) {
		m.grow(end)
	}

	n := copy(m.data[m.offset:], p)
	m.offset += int64(n)
	return n, nil
}

func (m *Memory) Truncate(size int64) error {
	if m.closed {
		return errClosed
	}
	if size < 0 {
		return errors.Errorf("negative size %d", size)
	}

	if size > int64(len(m.data)) {
		m.grow(size)
	} else {
		m.data = m.data[:size]
	}
	return nil
}

func (m *Memory) Close() error {
	m.closed = true
	return nil
}

func (m *Memory) grow(size int64) {
	if size <= int64(cap(m.data)) {
		old := len(m.data)
		m.data = m.data[:size]
		for i := old; i < len(m.data); i++ {
			m.data[i] = 0
		}
		return
	}

	data := make([]byte, size, size+size/4)
	copy(data, m.data)
	m.data = data
}

var errClosed = errors.New("resource is closed")
