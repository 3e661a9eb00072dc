package emu

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// DefaultMemorySize is the default address space size (1 MiB).
const DefaultMemorySize = 1024 * 1024

// Memory is a flat byte-addressable store with little-endian
// multi-width accessors. Every operation range-checks the full span it
// touches before any mutation, so a failing access never leaves a
// partial write behind.
type Memory struct {
	data []byte
}

// NewMemory creates a zero-initialized memory of the given size in
// bytes. A size of 0 or less falls back to DefaultMemorySize.
func NewMemory(size int) *Memory {
	if size <= 0 {
		size = DefaultMemorySize
	}
	return &Memory{data: make([]byte, size)}
}

// Size returns the memory size in bytes.
func (m *Memory) Size() int {
	return len(m.data)
}

// Reset zeroes all of memory.
func (m *Memory) Reset() {
	for i := range m.data {
		m.data[i] = 0
	}
}

// checkRange validates the span [addr, addr+width-1].
func (m *Memory) checkRange(addr uint32, width int) error {
	end := uint64(addr) + uint64(width) - 1
	if end >= uint64(len(m.data)) {
		return fmt.Errorf("%w: 0x%08x (width %d, size 0x%08x)",
			ErrOutOfBounds, addr, width, len(m.data))
	}
	return nil
}

// ReadByte reads one byte.
func (m *Memory) ReadByte(addr uint32) (uint8, error) {
	if err := m.checkRange(addr, 1); err != nil {
		return 0, err
	}
	return m.data[addr], nil
}

// WriteByte writes one byte. The value is masked to 8 bits by its type.
func (m *Memory) WriteByte(addr uint32, value uint8) error {
	if err := m.checkRange(addr, 1); err != nil {
		return err
	}
	m.data[addr] = value
	return nil
}

// ReadHalf reads a little-endian halfword (2 bytes).
func (m *Memory) ReadHalf(addr uint32) (uint16, error) {
	if err := m.checkRange(addr, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(m.data[addr:]), nil
}

// WriteHalf writes a little-endian halfword.
func (m *Memory) WriteHalf(addr uint32, value uint16) error {
	if err := m.checkRange(addr, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(m.data[addr:], value)
	return nil
}

// ReadWord reads a little-endian word (4 bytes).
func (m *Memory) ReadWord(addr uint32) (uint32, error) {
	if err := m.checkRange(addr, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.data[addr:]), nil
}

// WriteWord writes a little-endian word.
func (m *Memory) WriteWord(addr uint32, value uint32) error {
	if err := m.checkRange(addr, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.data[addr:], value)
	return nil
}

// ReadBlock reads size bytes starting at addr into a fresh slice.
func (m *Memory) ReadBlock(addr uint32, size int) ([]byte, error) {
	if size <= 0 {
		return nil, nil
	}
	if err := m.checkRange(addr, size); err != nil {
		return nil, err
	}
	block := make([]byte, size)
	copy(block, m.data[addr:int(addr)+size])
	return block, nil
}

// WriteBlock writes the whole of data starting at addr. The range is
// validated before the first byte is stored.
func (m *Memory) WriteBlock(addr uint32, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := m.checkRange(addr, len(data)); err != nil {
		return err
	}
	copy(m.data[addr:], data)
	return nil
}

// Dump renders size bytes starting at addr as a hex+ASCII view, 16
// bytes per row. Presentation helper only.
func (m *Memory) Dump(addr uint32, size int) (string, error) {
	if size <= 0 {
		return "", nil
	}
	if err := m.checkRange(addr, size); err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 0; i < size; i += 16 {
		rowAddr := addr + uint32(i)
		n := size - i
		if n > 16 {
			n = 16
		}

		fmt.Fprintf(&sb, "0x%08x: ", rowAddr)
		for j := 0; j < n; j++ {
			fmt.Fprintf(&sb, "%02x ", m.data[rowAddr+uint32(j)])
		}
		sb.WriteString(strings.Repeat("   ", 16-n))

		sb.WriteString(" |")
		for j := 0; j < n; j++ {
			b := m.data[rowAddr+uint32(j)]
			if b >= 32 && b <= 126 {
				sb.WriteByte(b)
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteString("|")
		if i+16 < size {
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}
