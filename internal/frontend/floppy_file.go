package frontend

import (
	"fmt"
	"os"
)

// FileFloppy is a backend.FloppyDrive backed by a raw disk image file,
// read wholesale into memory since the images this core targets (360KB
// to 1.44MB) are small enough that mapping isn't worth the complexity.
type FileFloppy struct {
	data            []byte
	cylinders       int
	heads           int
	sectorsPerTrack int
}

const floppySectorSize = 512

// standard1440KGeometry is the geometry of a 3.5" 1.44MB floppy, the most
// common bootable image size; images of 360KB or less are assumed to be a
// 360KB 5.25" disk instead, and every larger image gets the 1.44MB geometry.
var standard1440KGeometry = [3]int{80, 2, 18}
var standard360KGeometry = [3]int{40, 2, 9}

// OpenFloppyImage reads a raw floppy image from path and, if it looks
// bootable (the 0x55AA signature at bytes 0x1FE/0x1FF of the first
// sector), returns a FileFloppy ready to serve INT 13h reads.
func OpenFloppyImage(path string) (*FileFloppy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < floppySectorSize {
		return nil, fmt.Errorf("floppy image %s is smaller than one sector", path)
	}
	if data[0x1FE] != 0x55 || data[0x1FF] != 0xAA {
		return nil, fmt.Errorf("floppy image %s has no boot signature at offset 0x1FE", path)
	}

	geom := standard1440KGeometry
	if len(data) <= 360*1024 {
		geom = standard360KGeometry
	}
	return &FileFloppy{data: data, cylinders: geom[0], heads: geom[1], sectorsPerTrack: geom[2]}, nil
}

func (f *FileFloppy) SectorSize() int { return floppySectorSize }

func (f *FileFloppy) Geometry() (cylinders, heads, sectorsPerTrack int) {
	return f.cylinders, f.heads, f.sectorsPerTrack
}

// ReadSector converts a 1-based CHS address to a linear byte offset and
// returns that sector's bytes.
func (f *FileFloppy) ReadSector(cylinder, head, sector int) ([]byte, error) {
	if sector < 1 || sector > f.sectorsPerTrack {
		return nil, fmt.Errorf("sector %d out of range (1-%d)", sector, f.sectorsPerTrack)
	}
	lba := (cylinder*f.heads+head)*f.sectorsPerTrack + (sector - 1)
	start := lba * floppySectorSize
	end := start + floppySectorSize
	if end > len(f.data) {
		return nil, fmt.Errorf("sector %d is beyond the end of the image", lba)
	}
	return f.data[start:end], nil
}

// BootSector returns the first 512 bytes of the image, the piece
// internal/boot loads to 0x7C00.
func (f *FileFloppy) BootSector() []byte {
	return f.data[:floppySectorSize]
}
