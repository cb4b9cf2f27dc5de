package ptab

import (
	"encoding/binary"
	"io"
	"math"
	"os"

	"golang.org/x/sys/unix"
)

// File is an opened PTAB container. The payload stays in the (possibly
// mmapped) backing buffer until rows are decoded.
type File struct {
	Header  Header
	data    []byte
	mmapped bool
}

// Open maps a PTAB file read-only and validates its structure. If mmap is
// unavailable, it falls back to ReadAt-based loading. The returned file
// must be closed to release any mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size64 := stat.Size()
	if size64 < headerSize {
		return nil, ErrCorruptFile
	}
	if size64 > int64(int(^uint(0)>>1)) {
		// cannot index this file safely as []byte on this architecture.
		return nil, ErrCorruptFile
	}
	size := int(size64)

	// Prefer mmap where available so large tables are not copied.
	data, err := unix.Mmap(
		int(f.Fd()),
		0,
		size,
		unix.PROT_READ,
		unix.MAP_SHARED,
	)
	if err == nil {
		pf, parseErr := parseFileData(data, true)
		if parseErr != nil {
			_ = unix.Munmap(data)
			return nil, parseErr
		}
		return pf, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return parseFileData(data, false)
}

// OpenReaderAt loads and validates a PTAB from a random-access reader
// without mmap.
func OpenReaderAt(r io.ReaderAt, size int64) (*File, error) {
	if size < headerSize || size > int64(int(^uint(0)>>1)) {
		return nil, ErrCorruptFile
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return parseFileData(data, false)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

func parseFileData(data []byte, mmapped bool) (*File, error) {
	if len(data) < headerSize {
		return nil, ErrCorruptFile
	}

	var hdr Header
	copy(hdr.Magic[:], data[0:4])
	hdr.Version = binary.LittleEndian.Uint16(data[4:6])
	hdr.Reserved = binary.LittleEndian.Uint16(data[6:8])
	hdr.Rows = binary.LittleEndian.Uint32(data[8:12])
	hdr.Cols = binary.LittleEndian.Uint32(data[12:16])

	if string(hdr.Magic[:]) != MagicPTAB {
		return nil, ErrInvalidMagic
	}
	if !hdr.Compatible() {
		return nil, ErrUnsupportedVersion
	}
	if !hdr.Valid() {
		return nil, ErrCorruptFile
	}

	want := headerSize + int64(hdr.Rows)*int64(hdr.Cols)*4
	if int64(len(data)) != want {
		return nil, ErrCorruptFile
	}

	return &File{Header: hdr, data: data, mmapped: mmapped}, nil
}

// Rows returns the number of table rows.
func (f *File) Rows() int { return int(f.Header.Rows) }

// Cols returns the number of table columns.
func (f *File) Cols() int { return int(f.Header.Cols) }

// Row decodes table row i into a freshly allocated slice.
func (f *File) Row(i int) ([]float32, error) {
	if i < 0 || i >= f.Rows() {
		return nil, ErrCorruptFile
	}
	cols := f.Cols()
	off := headerSize + i*cols*4
	row := make([]float32, cols)
	for j := range row {
		bits := binary.LittleEndian.Uint32(f.data[off+j*4:])
		row[j] = math.Float32frombits(bits)
	}
	return row, nil
}

// Table decodes the whole payload.
func (f *File) Table() ([][]float32, error) {
	rows := make([][]float32, f.Rows())
	for i := range rows {
		row, err := f.Row(i)
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}
	return rows, nil
}

// Close releases the mapping, if any. The file must not be used afterwards.
func (f *File) Close() error {
	data := f.data
	f.data = nil
	if f.mmapped && data != nil {
		return unix.Munmap(data)
	}
	return nil
}
