package tarfile

const (
	NUL            = byte(0) // Null character
	BLOCKSIZE      = 512     // Length of processing blocks
	DefaultBufSize = 4096    // Default fill buffer of a BlockReader

	LENGTH_NAME   = 100 // Length of the name field
	LENGTH_LINK   = 100 // Length of the linkname field
	LENGTH_PREFIX = 155 // Length of the prefix field
	LENGTH_MAGIC  = 6   // Length of the magic field

	USTAR_MAGIC = "ustar"  // POSIX magic, NUL padded on disk
	GNU_MAGIC   = "ustar " // GNU magic, followed by " \x00"
)

// Header field offsets and lengths. Decoding walks them in this order.
const (
	lengthIDs      = 24 // mode, uid, gid
	lengthSize     = 12
	lengthMtime    = 12
	offsetChecksum = 148
	lengthChecksum = 8
	lengthUstar    = 82 // version, uname, gname, devmajor, devminor
)

// Type flags.
const (
	REGTYPE          = '0'    // Regular file
	AREGTYPE         = '\x00' // Regular file (old format)
	LNKTYPE          = '1'    // Hard link
	SYMTYPE          = '2'    // Symbolic link
	CHRTYPE          = '3'    // Character device
	BLKTYPE          = '4'    // Block device
	DIRTYPE          = '5'    // Directory
	FIFOTYPE         = '6'    // FIFO
	CONTTYPE         = '7'    // Contiguous file
	GNUTYPE_LONGNAME = 'L'    // GNU long name
	GNUTYPE_LONGLINK = 'K'    // GNU long link
	XHDTYPE          = 'x'    // POSIX.1-2001 extended header
	XGLTYPE          = 'g'    // POSIX.1-2001 global header
)
