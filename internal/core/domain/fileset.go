package domain

import (
	"time"

	"github.com/google/uuid"
)

// Fileset is a set of client-declared files imported together as one dataset.
type Fileset struct {
	ID            uuid.UUID
	DeclaredFiles []string
	CreatedAt     time.Time
}

// ImportSettings carries user-supplied options for one fileset import.
type ImportSettings struct {
	Checksum      ChecksumAlgo
	Name          string
	Description   string
	TargetID      *int64
	Annotations   []string
	AutoClose     bool
	SkipStats     bool
	SkipThumbs    bool
	PhysicalSizeX *float64
	PhysicalSizeY *float64
	PhysicalSizeZ *float64
}

// ImportLocation is the computed destination layout for a fileset import.
// SharedPath is the common destination directory for the whole fileset;
// UsedFiles are relative to it and parallel to CheckedPaths.
type ImportLocation struct {
	SharedPath   string
	UsedFiles    []string
	CheckedPaths []string
	LogFile      string
}

// ExpansionContext supplies the per-request values substituted into the
// configured import path template.
type ExpansionContext struct {
	User      string
	UserID    int64
	Group     string
	GroupID   int64
	Session   string
	SessionID int64
	EventID   int64
	Perms     string
	Now       time.Time
}
