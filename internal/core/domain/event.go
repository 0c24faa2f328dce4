package domain

import "github.com/google/uuid"

// ImportEventKind classifies observer notifications emitted by an import job.
type ImportEventKind string

const (
	EventFilesetLoaded      ImportEventKind = "FilesetLoaded"
	EventMetadataImported   ImportEventKind = "MetadataImported"
	EventPixelsProcessed    ImportEventKind = "PixelsProcessed"
	EventThumbnailsReady    ImportEventKind = "ThumbnailsReady"
	EventImportFinished     ImportEventKind = "ImportFinished"
	EventMissingLibrary     ImportEventKind = "MissingLibrary"
	EventUnsupportedData    ImportEventKind = "UnsupportedCompression"
	EventUnknownFormat      ImportEventKind = "UnknownFormat"
	EventFileReadFailure    ImportEventKind = "FileReadFailure"
	EventFormatParseFailure ImportEventKind = "FormatParseFailure"
	EventInternalFailure    ImportEventKind = "InternalFailure"
)

// ImportEvent is one observer notification. Failure events carry the file and
// format context needed to act on the report.
type ImportEvent struct {
	Kind      ImportEventKind
	Process   uuid.UUID
	Filename  string
	Format    string
	UsedFiles []string
	Err       error
}

// FilesetRegistered is the message published after an import completes, for
// asynchronous downstream processing.
type FilesetRegistered struct {
	Fileset   uuid.UUID `json:"fileset"`
	Repo      uuid.UUID `json:"repo"`
	Paths     []string  `json:"paths"`
	ImageIDs  []int64   `json:"image_ids"`
	PixelsIDs []int64   `json:"pixels_ids"`
}
