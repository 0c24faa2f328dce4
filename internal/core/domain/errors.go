package domain

import "errors"

// ErrPathEscapesRoot is an error thrown when a path resolves outside the repository root
var ErrPathEscapesRoot = errors.New("path escapes repository root")

// ErrInvalidName is an error thrown when a path component violates the naming rules
var ErrInvalidName = errors.New("invalid name")

// ErrEmptyPath is an error thrown when an operation requires a non-root path
var ErrEmptyPath = errors.New("empty path")

// ErrRecordExists is an error thrown when a catalog row already exists for a path
var ErrRecordExists = errors.New("record already exists")

// ErrRecordNotFound is an error thrown when no catalog row exists for a path
var ErrRecordNotFound = errors.New("record not found")

// ErrNotRegistered is an error thrown when a directory exists on disk without a
// catalog row, which indicates external tampering with the repository root
var ErrNotRegistered = errors.New("exists on disk but not registered")

// ErrPathExists is an error thrown when a fresh directory was expected but the
// path is already present on disk
var ErrPathExists = errors.New("path already exists on disk")

// ErrPermissionDenied is an error thrown when the caller lacks the required access
var ErrPermissionDenied = errors.New("permission denied")

// ErrChecksumMismatch is an error thrown when client and server checksums disagree
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ErrUnknownChecksumAlgo is an error thrown when no hasher exists for an algorithm id
var ErrUnknownChecksumAlgo = errors.New("unknown checksum algorithm")

// ErrStepOrder is an error thrown when import steps are invoked out of order
var ErrStepOrder = errors.New("import step out of order")

// ErrImportCancelled is an error thrown when an import job ends in the cancelled state
var ErrImportCancelled = errors.New("import cancelled")

// ErrProcessNotFound is an error thrown when no live import process matches a handle
var ErrProcessNotFound = errors.New("import process not found")

// ErrUploadNotVerified is an error thrown when a job action requires a passed
// checksum gate first
var ErrUploadNotVerified = errors.New("upload not verified")

// ErrUnknownFormat is an error thrown when no decoder recognises the fileset
var ErrUnknownFormat = errors.New("unknown format")

// ErrMissingLibrary is an error thrown when a decoder needs an unavailable codec library
var ErrMissingLibrary = errors.New("missing codec library")

// ErrUnsupportedCompression is an error thrown when a decoder cannot handle the compression
var ErrUnsupportedCompression = errors.New("unsupported compression")

// ErrNotADirectory is an error thrown when a directory operation hits a file
var ErrNotADirectory = errors.New("not a directory")

// ErrIsDirectory is an error thrown when a file operation hits a directory
var ErrIsDirectory = errors.New("is a directory")
