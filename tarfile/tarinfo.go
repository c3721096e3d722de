package tarfile

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// TarInfo describes one archive member as decoded from its header.
type TarInfo struct {
	Name       string    // Name of the archive member, long name and prefix applied
	Size       int64     // Size in bytes
	Mtime      time.Time // Modification time, whole seconds
	Chksum     int64     // Header checksum
	Type       byte      // Type flag (REGTYPE, DIRTYPE, ...)
	Linkname   string    // Target file name for links
	Magic      string    // USTAR magic tag, empty for V7 headers
	Offset     int64     // Offset of the header in the stream
	OffsetData int64     // Offset of the payload in the stream
}

// String returns a string representation of the TarInfo.
func (ti *TarInfo) String() string {
	return fmt.Sprintf("<%s %q type=%s size=%d>", "TarInfo", ti.Name, typeName(ti.Type), ti.Size)
}

// IsReg returns true if the TarInfo represents a regular file.
func (ti *TarInfo) IsReg() bool {
	return ti.Type == REGTYPE || ti.Type == AREGTYPE
}

// IsDir returns true if the TarInfo represents a directory.
func (ti *TarInfo) IsDir() bool {
	return ti.Type == DIRTYPE
}

// IsSym returns true if the TarInfo represents a symbolic link.
func (ti *TarInfo) IsSym() bool {
	return ti.Type == SYMTYPE
}

// IsLnk returns true if the TarInfo represents a hard link.
func (ti *TarInfo) IsLnk() bool {
	return ti.Type == LNKTYPE
}

// IsLongName returns true for a GNU long name marker.
func (ti *TarInfo) IsLongName() bool {
	return ti.Type == GNUTYPE_LONGNAME
}

func (ti *TarInfo) isUstar() bool {
	return ti.Magic == USTAR_MAGIC || ti.Magic == GNU_MAGIC
}

// payloadSize is the number of data bytes following the header. Directory
// and link entries never carry data.
func (ti *TarInfo) payloadSize() int64 {
	if ti.IsDir() || ti.IsSym() || ti.IsLnk() {
		return 0
	}
	return ti.Size
}

// readTarInfo decodes the header at the reader's cursor and leaves the
// cursor on the next block edge. It returns io.EOF when the header has a
// blank name, which ends the archive.
func readTarInfo(br *BlockReader, strict bool) (*TarInfo, error) {
	offset := br.Position()
	window, err := br.Peek(BLOCKSIZE)
	if err != nil {
		return nil, err
	}
	if len(window) < BLOCKSIZE {
		if strict {
			return nil, NewInvalidHeaderError(offset, "archive ends without end-of-archive blocks")
		}
		if isBlank(nts(window[:min(len(window), LENGTH_NAME)])) {
			return nil, io.EOF
		}
		return nil, NewTruncatedHeaderError(offset, len(window))
	}
	zero := isZeroBlock(window)

	if _, err := br.ComputeHeaderChecksum(); err != nil {
		return nil, err
	}
	name, err := br.ReadString(LENGTH_NAME)
	if err != nil {
		return nil, err
	}
	if isBlank(name) {
		if strict {
			return nil, checkTrailer(br, offset, zero)
		}
		return nil, io.EOF
	}

	ti := &TarInfo{
		Name:       name,
		Offset:     offset,
		OffsetData: offset + BLOCKSIZE,
	}
	if err := br.Skip(lengthIDs); err != nil {
		return nil, err
	}
	if ti.Size, err = br.ReadOctal(lengthSize); err != nil {
		return nil, err
	}
	if ti.Size < 0 {
		return nil, NewInvalidHeaderError(offset, fmt.Sprintf("negative size %d", ti.Size))
	}
	mtime, err := br.ReadOctal(lengthMtime)
	if err != nil {
		return nil, err
	}
	ti.Mtime = time.Unix(mtime, 0)
	if ti.Chksum, err = br.ReadOctal(lengthChecksum); err != nil {
		return nil, err
	}
	if ti.Chksum != br.HeaderChecksum() {
		return nil, NewInvalidHeaderError(offset, fmt.Sprintf("bad checksum %d, computed %d", ti.Chksum, br.HeaderChecksum()))
	}

	if ti.Type, err = br.ReadByte(); err != nil {
		return nil, err
	}
	if ti.Linkname, err = br.ReadString(LENGTH_LINK); err != nil {
		return nil, err
	}
	if ti.Magic, err = br.ReadString(LENGTH_MAGIC); err != nil {
		return nil, err
	}
	if err := br.Skip(lengthUstar); err != nil {
		return nil, err
	}
	prefix, err := br.ReadString(LENGTH_PREFIX)
	if err != nil {
		return nil, err
	}
	if ti.isUstar() && prefix != "" {
		ti.Name = prefix + "/" + ti.Name
	}
	if ti.Type == AREGTYPE && ti.Size == 0 && strings.HasSuffix(ti.Name, "/") {
		ti.Type = DIRTYPE
	}
	if err := br.AlignToBlock(); err != nil {
		return nil, err
	}
	return ti, nil
}

// checkTrailer enforces the two zero blocks that end a standard archive.
func checkTrailer(br *BlockReader, offset int64, zero bool) error {
	if !zero {
		return NewInvalidHeaderError(offset, "blank name in a non-zero header")
	}
	if err := br.AlignToBlock(); err != nil {
		return err
	}
	next, err := br.Peek(BLOCKSIZE)
	if err != nil {
		return err
	}
	if len(next) < BLOCKSIZE || !isZeroBlock(next) {
		return NewInvalidHeaderError(br.Position(), "missing second end-of-archive block")
	}
	return io.EOF
}

func typeName(t byte) string {
	switch t {
	case REGTYPE, AREGTYPE:
		return "file"
	case LNKTYPE:
		return "hardlink"
	case SYMTYPE:
		return "symlink"
	case CHRTYPE:
		return "char"
	case BLKTYPE:
		return "block"
	case DIRTYPE:
		return "dir"
	case FIFOTYPE:
		return "fifo"
	case CONTTYPE:
		return "contiguous"
	case GNUTYPE_LONGNAME:
		return "longname"
	case GNUTYPE_LONGLINK:
		return "longlink"
	case XHDTYPE:
		return "pax"
	case XGLTYPE:
		return "pax-global"
	default:
		return fmt.Sprintf("unknown(%q)", t)
	}
}
