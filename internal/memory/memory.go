// Package memory implements the flat, real-mode addressable memory of the
// emulated machine: a single contiguous 1 MiB byte array reached through
// segment:offset pairs.
package memory

// Size is the total addressable span: a full 20-bit real-mode address space.
const Size = 1 << 20

// AddressMask wraps a physical address into the 20-bit space, matching
// real 8086 address wraparound rather than raising a fault.
const AddressMask = Size - 1

// Memory is a flat byte array addressed via (segment, offset) pairs. It
// never faults: out-of-range access is impossible by construction because
// every physical address is masked into range.
type Memory struct {
	bytes [Size]byte
}

// New returns a zero-initialized 1 MiB memory, as at power-on.
func New() *Memory {
	return &Memory{}
}

// Physical computes the physical address of a (segment, offset) pair:
// (segment << 4) + offset, wrapped modulo 2^20.
func Physical(seg, off uint16) uint32 {
	return (uint32(seg)<<4 + uint32(off)) & AddressMask
}

// Read8 reads a single byte at (seg, off).
func (m *Memory) Read8(seg, off uint16) byte {
	return m.bytes[Physical(seg, off)]
}

// Write8 writes a single byte at (seg, off).
func (m *Memory) Write8(seg, off uint16, v byte) {
	m.bytes[Physical(seg, off)] = v
}

// Read16 reads a little-endian word at (seg, off): the low byte lives at
// the lower address.
func (m *Memory) Read16(seg, off uint16) uint16 {
	phys := Physical(seg, off)
	lo := m.bytes[phys]
	hi := m.bytes[(phys+1)&AddressMask]
	return uint16(lo) | uint16(hi)<<8
}

// Write16 writes a little-endian word at (seg, off).
func (m *Memory) Write16(seg, off uint16, v uint16) {
	phys := Physical(seg, off)
	m.bytes[phys] = byte(v)
	m.bytes[(phys+1)&AddressMask] = byte(v >> 8)
}

// ReadPhys8 and WritePhys8 access memory directly by physical address,
// bypassing segment:offset composition. Used by components (the VGA text
// buffer at 0xB8000, the interrupt vector table at 0x0000) that are
// defined in terms of a fixed physical address rather than a segment.
func (m *Memory) ReadPhys8(addr uint32) byte {
	return m.bytes[addr&AddressMask]
}

func (m *Memory) WritePhys8(addr uint32, v byte) {
	m.bytes[addr&AddressMask] = v
}

func (m *Memory) ReadPhys16(addr uint32) uint16 {
	lo := m.bytes[addr&AddressMask]
	hi := m.bytes[(addr+1)&AddressMask]
	return uint16(lo) | uint16(hi)<<8
}

func (m *Memory) WritePhys16(addr uint32, v uint16) {
	m.bytes[addr&AddressMask] = byte(v)
	m.bytes[(addr+1)&AddressMask] = byte(v >> 8)
}

// Slice returns a bounded byte view starting at (seg, off), used by
// interrupt handlers that need to read a NUL-terminated filename or hand a
// buffer to a host I/O routine. The view does not wrap past the end of the
// backing array; callers that walk off the end of the emulated address
// space simply see the array truncate at Size.
func (m *Memory) Slice(seg, off uint16, length int) []byte {
	phys := Physical(seg, off)
	end := int(phys) + length
	if end > Size {
		end = Size
	}
	return m.bytes[phys:end]
}

// CString reads a NUL-terminated string starting at (seg, off), as used by
// INT 21h AH=0x3D (open file) to recover a host path from DS:DX.
func (m *Memory) CString(seg, off uint16) string {
	phys := Physical(seg, off)
	end := phys
	for end < Size && m.bytes[end] != 0 {
		end++
	}
	return string(m.bytes[phys:end])
}

// LoadAt copies data into memory starting at physical address addr,
// truncating silently if it would run past the end of the address space —
// the boot loaders are responsible for size-checking their inputs before
// calling this.
func (m *Memory) LoadAt(addr uint32, data []byte) {
	n := copy(m.bytes[addr&AddressMask:], data)
	_ = n
}

// Reset zeroes the entire address space, matching power-on state.
func (m *Memory) Reset() {
	for i := range m.bytes {
		m.bytes[i] = 0
	}
}
