// Package backend declares the narrow contracts the interrupt layer uses
// to reach host I/O: a text-mode terminal, a VGA-style character/attribute
// display, and a floppy image. Implementations are collaborators supplied
// by a front end; this package defines only the interfaces the core
// depends on.
package backend

// TTYBackend is a teletype-style console: single characters in and out,
// plus the small set of control operations BIOS INT 10h teletype output
// and INT 16h keyboard input need. Grounded on the original emulator's
// TTY module contract (Write/Read/Scroll/MoveCursor/Clear plus cursor
// row/column accessors).
type TTYBackend interface {
	WriteChar(c byte)
	ReadChar() byte
	// HasChar reports whether a keystroke is available without consuming
	// it or blocking, backing INT 16h AH=0x01's non-blocking peek.
	HasChar() bool
	Scroll(lines int, attr byte)
	MoveCursor(x, y int)
	Clear()
	CursorRow() int
	SetCursorRow(row int)
	CursorColumn() int
	SetCursorColumn(col int)
}

// VGABackend renders the 80x25 character/attribute buffer physically
// located at 0xB8000. SetMode is called by INT 10h AH=0x00; Update is
// called after direct buffer writes so a backend that doesn't poll memory
// itself has a chance to redraw.
type VGABackend interface {
	SetMode(mode byte)
	Update()
}

// FloppyDrive is a read-only raw disk image addressed by CHS geometry, the
// shape INT 13h AH=0x02 (read sectors) needs. Writes are out of scope.
type FloppyDrive interface {
	ReadSector(cylinder, head, sector int) ([]byte, error)
	SectorSize() int
	Geometry() (cylinders, heads, sectorsPerTrack int)
}
