// Package ptab implements the PTAB container, a small binary format for
// probability transition tables used by table-backed caption models.
//
// Layout (little endian):
//
//	offset 0   magic "PTAB"
//	offset 4   uint16 version
//	offset 6   uint16 reserved (zero)
//	offset 8   uint32 row count
//	offset 12  uint32 column count
//	offset 16  rows*cols float32 payload, row major
package ptab

const (
	MagicPTAB = "PTAB"

	// CurrentVersion is bumped on breaking layout changes only.
	CurrentVersion uint16 = 1

	headerSize = 16
)

type Header struct {
	Magic    [4]byte
	Version  uint16
	Reserved uint16
	Rows     uint32
	Cols     uint32
}

func (h *Header) Valid() bool {
	if string(h.Magic[:]) != MagicPTAB {
		return false
	}
	if h.Rows == 0 || h.Cols == 0 {
		return false
	}
	return true
}

func (h *Header) Compatible() bool {
	return h.Version == CurrentVersion
}
