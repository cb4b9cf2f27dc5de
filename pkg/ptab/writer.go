package ptab

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// Write serializes a transition table. Every row must have the same width.
func Write(w io.Writer, rows [][]float32) error {
	if len(rows) == 0 {
		return fmt.Errorf("ptab: refusing to write an empty table")
	}
	cols := len(rows[0])
	if cols == 0 {
		return fmt.Errorf("ptab: refusing to write zero-width rows")
	}
	for i, row := range rows {
		if len(row) != cols {
			return fmt.Errorf("ptab: row %d has %d columns, want %d", i, len(row), cols)
		}
	}

	bw := bufio.NewWriter(w)

	var hdr [headerSize]byte
	copy(hdr[0:4], MagicPTAB)
	binary.LittleEndian.PutUint16(hdr[4:6], CurrentVersion)
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(rows)))
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(cols))
	if _, err := bw.Write(hdr[:]); err != nil {
		return err
	}

	var scratch [4]byte
	for _, row := range rows {
		for _, v := range row {
			binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(v))
			if _, err := bw.Write(scratch[:]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// WriteFile writes a table to path, creating or truncating it.
func WriteFile(path string, rows [][]float32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
