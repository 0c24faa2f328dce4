package domain

import (
	"time"

	"github.com/google/uuid"
)

// DirectoryMimetype is the special mimetype value marking a catalog row as a directory.
const DirectoryMimetype = "Directory"

// ChecksumAlgo identifies a hashing algorithm usable for content verification.
type ChecksumAlgo string

const (
	ChecksumSHA256  ChecksumAlgo = "SHA-256"
	ChecksumSHA1    ChecksumAlgo = "SHA1-160"
	ChecksumMD5     ChecksumAlgo = "MD5-128"
	ChecksumCRC32   ChecksumAlgo = "CRC-32"
	ChecksumAdler32 ChecksumAlgo = "Adler-32"
)

// Record is one catalog row: a single known file or directory under a
// repository root. The triple (Repo, ParentPath, Name) is unique.
type Record struct {
	ID         int64
	Repo       uuid.UUID
	ParentPath string
	Name       string
	Size       int64
	Mtime      time.Time
	Hash       string
	Hasher     ChecksumAlgo
	Mimetype   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsDirectory reports whether the row represents a directory.
func (r Record) IsDirectory() bool {
	return r.Mimetype == DirectoryMimetype
}

// LogicalPath joins parent path and name into the record's full logical path.
func (r Record) LogicalPath() string {
	if r.ParentPath == "" {
		return r.Name
	}
	return r.ParentPath + "/" + r.Name
}

// Image is a catalog row for a registered image created during import.
type Image struct {
	ID        int64
	Fileset   uuid.UUID
	Name      string
	Series    int
	CreatedAt time.Time
}

// Pixels is a catalog row for the pixel data attached to an image.
type Pixels struct {
	ID        int64
	ImageID   int64
	SizeX     int
	SizeY     int
	SizeZ     int
	SizeC     int
	SizeT     int
	Hash      string
	SourceID  int64
	CreatedAt time.Time
}
