package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/adler32"
	"hash/crc32"

	sha256 "github.com/minio/sha256-simd"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
)

// Provider hands out hashers for every supported checksum algorithm.
type Provider struct{}

func NewProvider() *Provider {
	return &Provider{}
}

// NewHasher returns a fresh hasher for the given algorithm id.
func (p *Provider) NewHasher(algo domain.ChecksumAlgo) (port.Hasher, error) {
	switch algo {
	case domain.ChecksumSHA256:
		return &hexHasher{h: sha256.New()}, nil
	case domain.ChecksumSHA1:
		return &hexHasher{h: sha1.New()}, nil
	case domain.ChecksumMD5:
		return &hexHasher{h: md5.New()}, nil
	case domain.ChecksumCRC32:
		return &hash32Hasher{h: crc32.NewIEEE()}, nil
	case domain.ChecksumAdler32:
		return &hash32Hasher{h: adler32.New()}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownChecksumAlgo, algo)
	}
}

type hexHasher struct {
	h hash.Hash
}

func (h *hexHasher) Write(p []byte) (int, error) {
	return h.h.Write(p)
}

func (h *hexHasher) Digest() string {
	return hex.EncodeToString(h.h.Sum(nil))
}

type hash32Hasher struct {
	h hash.Hash32
}

func (h *hash32Hasher) Write(p []byte) (int, error) {
	return h.h.Write(p)
}

func (h *hash32Hasher) Digest() string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], h.h.Sum32())
	return hex.EncodeToString(b[:])
}
