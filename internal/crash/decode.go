package crash

import (
	"fmt"

	"duef/internal/utils"
)

// Wire format (little-endian):
//
//	version            = 3 bytes
//	directory_name     = int32 length + bytes
//	file_name          = int32 length + bytes
//	uncompressed_size  = int32
//	file_count         = int32
//	repeat file_count times:
//	  file_index       = int32
//	  file_name        = int32 length + bytes
//	  file_size        = int32
//	  file_data        = file_size bytes
//
// Strings carry no terminator. Unknown trailing bytes after the last file are
// ignored.

// minFileRecordSize is the smallest possible encoded file record: index,
// empty name and zero size.
const minFileRecordSize = 4 + 4 + 4

// DecodeCountedString reads an int32 length followed by that many bytes.
func DecodeCountedString(c *Cursor) (CountedString, error) {
	start := c.Offset()
	n, err := c.ReadI32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: string length %d at offset %d", ErrInvalidLength, n, start)
	}
	b, err := c.ReadBytes(int(n))
	if err != nil {
		return nil, err
	}
	return CountedString(b), nil
}

func DecodeHeader(c *Cursor) (Header, error) {
	var h Header
	for i := range h.Version {
		b, err := c.ReadByte()
		if err != nil {
			return Header{}, fmt.Errorf("header version: %w", err)
		}
		h.Version[i] = b
	}

	var err error
	if h.DirectoryName, err = DecodeCountedString(c); err != nil {
		return Header{}, fmt.Errorf("header directory name: %w", err)
	}
	if h.FileName, err = DecodeCountedString(c); err != nil {
		return Header{}, fmt.Errorf("header file name: %w", err)
	}
	if h.UncompressedSize, err = c.ReadI32(); err != nil {
		return Header{}, fmt.Errorf("header uncompressed size: %w", err)
	}

	countOff := c.Offset()
	if h.FileCount, err = c.ReadI32(); err != nil {
		return Header{}, fmt.Errorf("header file count: %w", err)
	}
	if h.FileCount < 0 {
		return Header{}, fmt.Errorf("%w: file count %d at offset %d", ErrInvalidLength, h.FileCount, countOff)
	}
	return h, nil
}

func DecodeFile(c *Cursor) (File, error) {
	var f File
	var err error
	if f.Index, err = c.ReadI32(); err != nil {
		return File{}, fmt.Errorf("index: %w", err)
	}
	if f.Name, err = DecodeCountedString(c); err != nil {
		return File{}, fmt.Errorf("name: %w", err)
	}

	sizeOff := c.Offset()
	if f.Size, err = c.ReadI32(); err != nil {
		return File{}, fmt.Errorf("size: %w", err)
	}
	if f.Size < 0 {
		return File{}, fmt.Errorf("%w: file size %d at offset %d", ErrInvalidLength, f.Size, sizeOff)
	}
	if f.Data, err = c.ReadBytes(int(f.Size)); err != nil {
		return File{}, fmt.Errorf("data: %w", err)
	}
	return f, nil
}

// Decoder turns a decompressed buffer into an Archive.
//
// Embedded file indices are not checked by default; a mismatch with the
// record's position is only logged. StrictIndex turns it into ErrIndexMismatch.
type Decoder struct {
	StrictIndex bool
	Log         *utils.Logger
}

// Decode decodes a whole archive from data.
func (d *Decoder) Decode(data []byte) (*Archive, error) {
	return d.DecodeArchive(NewCursor(data))
}

// DecodeArchive decodes the header and exactly Header.FileCount files. It
// returns either a complete Archive or an error, never both.
func (d *Decoder) DecodeArchive(c *Cursor) (*Archive, error) {
	h, err := DecodeHeader(c)
	if err != nil {
		return nil, err
	}

	// The declared count only bounds the loop; capacity is limited by what
	// the remaining bytes could possibly hold.
	count := int(h.FileCount)
	files := make([]File, 0, min(count, c.Remaining()/minFileRecordSize))
	for i := 0; i < count; i++ {
		f, err := DecodeFile(c)
		if err != nil {
			return nil, fmt.Errorf("file %d %w", i, err)
		}
		if int(f.Index) != i {
			if d.StrictIndex {
				return nil, fmt.Errorf("%w: file %d (%s) declares index %d", ErrIndexMismatch, i, f.Name, f.Index)
			}
			d.Log.Warn("Decoder: file %d (%s) declares index %d", i, f.Name, f.Index)
		}
		files = append(files, f)
	}

	if rest := c.Remaining(); rest > 0 {
		d.Log.Debug("Decoder: ignoring %d trailing bytes after file %d", rest, count)
	}
	return &Archive{Header: h, Files: files}, nil
}

// DecodeArchive decodes with the default (permissive) decoder.
func DecodeArchive(c *Cursor) (*Archive, error) {
	return (&Decoder{}).DecodeArchive(c)
}
