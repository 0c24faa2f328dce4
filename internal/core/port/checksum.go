package port

import "github.com/ome/openmicroscopy-sub033/internal/core/domain"

// Hasher accumulates bytes and renders a final digest. It satisfies io.Writer
// so files can be streamed straight through it.
type Hasher interface {
	Write(p []byte) (int, error)
	Digest() string
}

// ChecksumProvider hands out hashers for the supported algorithms. Unknown
// algorithm ids fail with domain.ErrUnknownChecksumAlgo.
type ChecksumProvider interface {
	NewHasher(algo domain.ChecksumAlgo) (Hasher, error)
}
