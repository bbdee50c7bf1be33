// memory.go - Byte-addressable memory for the Meridian VM

/*
Meridian - a RISC-V (RV32I/RV32M) virtual machine

(c) 2025 - 2026 The Meridian VM authors
https://github.com/meridianvm/meridian
License: GPLv3 or later
*/

/*
memory.go - Flat Byte-Addressable Memory

This module implements the machine's memory: one contiguous, fixed-length
block of bytes created from the program image at construction time. All
multi-byte values are little-endian.

Core Features:

    Typed accessors for 8/16/32/64/128-bit reads and writes.
    Strict bounds checking: an access of width W at address A is legal only
    when A+W <= size. Violations return OutOfBoundsError and never touch
    the backing store.
    No alignment rule at this layer. RV32I permits unaligned data access;
    instruction alignment is enforced by the Hart at fetch time.

The memory is exclusively owned by one Hart and mutated only through that
Hart's Execute calls. There is no shared peripheral bus and no concurrent
device access, so no locking is needed here.
*/

package main

import (
	"encoding/binary"
	"fmt"
)

// MemWidth is an access width in bytes.
type MemWidth uint32

const (
	WidthByte       MemWidth = 1
	WidthHalfWord   MemWidth = 2
	WidthWord       MemWidth = 4
	WidthDoubleWord MemWidth = 8
	WidthQuadWord   MemWidth = 16
)

func (w MemWidth) String() string {
	switch w {
	case WidthByte:
		return "byte"
	case WidthHalfWord:
		return "halfword"
	case WidthWord:
		return "word"
	case WidthDoubleWord:
		return "doubleword"
	case WidthQuadWord:
		return "quadword"
	}
	return fmt.Sprintf("width(%d)", uint32(w))
}

// OutOfBoundsError reports a memory access that exceeds the backing buffer.
type OutOfBoundsError struct {
	Addr  uint32
	Width MemWidth
	Size  uint32
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("memory access out of bounds: addr=0x%08X width=%d size=%d",
		e.Addr, uint32(e.Width), e.Size)
}

// Memory is a flat little-endian byte store of fixed length.
type Memory struct {
	data []byte
}

// NewMemory creates a memory of exactly len(image) bytes holding a copy of
// the image. The caller's slice is not retained.
func NewMemory(image []byte) *Memory {
	data := make([]byte, len(image))
	copy(data, image)
	return &Memory{data: data}
}

// NewMemorySized creates a memory of size bytes with the image copied to
// address 0 and the remainder zero-filled. If size < len(image) the memory
// is grown to fit the image.
func NewMemorySized(image []byte, size int) *Memory {
	if size < len(image) {
		size = len(image)
	}
	data := make([]byte, size)
	copy(data, image)
	return &Memory{data: data}
}

// Size returns the length of the backing buffer in bytes.
func (m *Memory) Size() uint32 {
	return uint32(len(m.data))
}

// Bytes exposes the backing store for dump/inspection tooling. Mutating the
// returned slice mutates machine memory.
func (m *Memory) Bytes() []byte {
	return m.data
}

// check validates addr+width <= size without 32-bit overflow.
func (m *Memory) check(addr uint32, width MemWidth) error {
	if uint64(addr)+uint64(width) > uint64(len(m.data)) {
		return &OutOfBoundsError{Addr: addr, Width: width, Size: m.Size()}
	}
	return nil
}

func (m *Memory) Read8(addr uint32) (uint8, error) {
	if err := m.check(addr, WidthByte); err != nil {
		return 0, err
	}
	return m.data[addr], nil
}

func (m *Memory) Read16(addr uint32) (uint16, error) {
	if err := m.check(addr, WidthHalfWord); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(m.data[addr:]), nil
}

func (m *Memory) Read32(addr uint32) (uint32, error) {
	if err := m.check(addr, WidthWord); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.data[addr:]), nil
}

func (m *Memory) Read64(addr uint32) (uint64, error) {
	if err := m.check(addr, WidthDoubleWord); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(m.data[addr:]), nil
}

// Read128 returns the 128-bit value at addr as a lo/hi pair of 64-bit
// halves (Go has no native 128-bit integer).
func (m *Memory) Read128(addr uint32) (lo, hi uint64, err error) {
	if err := m.check(addr, WidthQuadWord); err != nil {
		return 0, 0, err
	}
	lo = binary.LittleEndian.Uint64(m.data[addr:])
	hi = binary.LittleEndian.Uint64(m.data[addr+8:])
	return lo, hi, nil
}

func (m *Memory) Write8(addr uint32, value uint8) error {
	if err := m.check(addr, WidthByte); err != nil {
		return err
	}
	m.data[addr] = value
	return nil
}

func (m *Memory) Write16(addr uint32, value uint16) error {
	if err := m.check(addr, WidthHalfWord); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(m.data[addr:], value)
	return nil
}

func (m *Memory) Write32(addr uint32, value uint32) error {
	if err := m.check(addr, WidthWord); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.data[addr:], value)
	return nil
}

func (m *Memory) Write64(addr uint32, value uint64) error {
	if err := m.check(addr, WidthDoubleWord); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(m.data[addr:], value)
	return nil
}

func (m *Memory) Write128(addr uint32, lo, hi uint64) error {
	if err := m.check(addr, WidthQuadWord); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(m.data[addr:], lo)
	binary.LittleEndian.PutUint64(m.data[addr+8:], hi)
	return nil
}

// ReadUint reads a value of the given width (up to DoubleWord) zero-extended
// to 64 bits. QuadWord reads go through Read128.
func (m *Memory) ReadUint(addr uint32, width MemWidth) (uint64, error) {
	switch width {
	case WidthByte:
		v, err := m.Read8(addr)
		return uint64(v), err
	case WidthHalfWord:
		v, err := m.Read16(addr)
		return uint64(v), err
	case WidthWord:
		v, err := m.Read32(addr)
		return uint64(v), err
	case WidthDoubleWord:
		return m.Read64(addr)
	}
	return 0, fmt.Errorf("meridian: unsupported read width %s", width)
}

// WriteUint writes the low `width` bytes of value. QuadWord writes go
// through Write128.
func (m *Memory) WriteUint(addr uint32, width MemWidth, value uint64) error {
	switch width {
	case WidthByte:
		return m.Write8(addr, uint8(value))
	case WidthHalfWord:
		return m.Write16(addr, uint16(value))
	case WidthWord:
		return m.Write32(addr, uint32(value))
	case WidthDoubleWord:
		return m.Write64(addr, value)
	}
	return fmt.Errorf("meridian: unsupported write width %s", width)
}
