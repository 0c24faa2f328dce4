package repopath_test

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ome/openmicroscopy-sub033/internal/adapters/checksum"
	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/repopath"
)

func strictRules() repopath.RuleSet {
	return repopath.RuleSet{CaseSensitive: true, RejectWindowsNames: true, Transliterate: false}
}

func TestNew_SandboxInvariant(t *testing.T) {
	root := t.TempDir()

	t.Run("resolved paths stay under the root", func(t *testing.T) {
		inputs := []string{
			"a",
			"a/b/c.tiff",
			"./a/./b",
			"a/b/../c",
			"a//b",
			`a\b\c`,
			"/leading/slash",
			"deep/x/y/z/../../w",
		}
		for _, in := range inputs {
			p, err := repopath.New(root, in, domain.ChecksumSHA256, strictRules())
			require.NoError(t, err, "input %q", in)
			assert.True(t, p.Abs() == root || strings.HasPrefix(p.Abs(), root+string(filepath.Separator)),
				"input %q resolved to %q outside %q", in, p.Abs(), root)
		}
	})

	t.Run("escapes are rejected", func(t *testing.T) {
		inputs := []string{
			"..",
			"../etc/passwd",
			"a/../..",
			"a/../../b",
			"a/b/../../../c",
			`..\..\windows`,
		}
		for _, in := range inputs {
			_, err := repopath.New(root, in, domain.ChecksumSHA256, strictRules())
			assert.ErrorIs(t, err, domain.ErrPathEscapesRoot, "input %q", in)
		}
	})

	t.Run("dot segments resolve", func(t *testing.T) {
		p, err := repopath.New(root, "a/./b/../c", domain.ChecksumSHA256, strictRules())
		require.NoError(t, err)
		assert.Equal(t, "a/c", p.Logical())
	})

	t.Run("empty path is the root", func(t *testing.T) {
		p, err := repopath.New(root, "", domain.ChecksumSHA256, strictRules())
		require.NoError(t, err)
		assert.True(t, p.IsRoot())
		assert.Equal(t, "", p.Logical())
		assert.Equal(t, 0, p.Depth())
	})
}

func TestPath_ParentChild(t *testing.T) {
	root := t.TempDir()

	p, err := repopath.New(root, "a/b/c.tiff", domain.ChecksumSHA256, strictRules())
	require.NoError(t, err)
	assert.Equal(t, "c.tiff", p.Name())
	assert.Equal(t, "a/b", p.ParentDir())
	assert.Equal(t, 3, p.Depth())

	parent, err := p.Parent()
	require.NoError(t, err)
	assert.Equal(t, "a/b", parent.Logical())

	child, err := parent.Child("d.log")
	require.NoError(t, err)
	assert.Equal(t, "a/b/d.log", child.Logical())

	_, err = parent.Child("x/y")
	assert.ErrorIs(t, err, domain.ErrInvalidName)
	_, err = parent.Child("..")
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	rootPath, err := repopath.New(root, "", domain.ChecksumSHA256, strictRules())
	require.NoError(t, err)
	_, err = rootPath.Parent()
	assert.ErrorIs(t, err, domain.ErrEmptyPath)
}

func TestPath_EqualsCaseFolding(t *testing.T) {
	root := t.TempDir()

	t.Run("case sensitive", func(t *testing.T) {
		a, err := repopath.New(root, "Data/File.tiff", domain.ChecksumSHA256, strictRules())
		require.NoError(t, err)
		b, err := repopath.New(root, "data/file.tiff", domain.ChecksumSHA256, strictRules())
		require.NoError(t, err)
		assert.False(t, a.Equals(b))
		assert.True(t, a.Equals(a))
	})

	t.Run("case insensitive", func(t *testing.T) {
		rules := repopath.RuleSet{CaseSensitive: false, RejectWindowsNames: true}
		a, err := repopath.New(root, "Data/File.tiff", domain.ChecksumSHA256, rules)
		require.NoError(t, err)
		b, err := repopath.New(root, "data/file.tiff", domain.ChecksumSHA256, rules)
		require.NoError(t, err)
		assert.True(t, a.Equals(b))
	})

	t.Run("nil never equals", func(t *testing.T) {
		a, err := repopath.New(root, "x", domain.ChecksumSHA256, strictRules())
		require.NoError(t, err)
		assert.False(t, a.Equals(nil))
	})
}

func TestPath_SetIDWriteOnce(t *testing.T) {
	root := t.TempDir()
	p, err := repopath.New(root, "a", domain.ChecksumSHA256, strictRules())
	require.NoError(t, err)

	_, ok := p.ID()
	assert.False(t, ok)

	p.SetID(7)
	p.SetID(13)

	id, ok := p.ID()
	require.True(t, ok)
	assert.Equal(t, int64(7), id)
}

func TestPath_Hash(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "hello.txt"), []byte("hello world"), 0o644))

	provider := checksum.NewProvider()

	p, err := repopath.New(root, "hello.txt", domain.ChecksumSHA256, strictRules())
	require.NoError(t, err)

	digest, err := p.Hash(provider)
	require.NoError(t, err)
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", digest)

	// cached: the same digest comes back even after the file changes
	require.NoError(t, os.WriteFile(filepath.Join(root, "hello.txt"), []byte("changed"), 0o644))
	again, err := p.Hash(provider)
	require.NoError(t, err)
	assert.Equal(t, digest, again)

	t.Run("invalidate drops the cached digest", func(t *testing.T) {
		p.Invalidate()

		fresh, err := p.Hash(provider)
		require.NoError(t, err)
		assert.NotEqual(t, digest, fresh)

		sum := sha256.Sum256([]byte("changed"))
		assert.Equal(t, hex.EncodeToString(sum[:]), fresh)
	})

	t.Run("directories have no hash", func(t *testing.T) {
		dir, err := repopath.New(root, "", domain.ChecksumSHA256, strictRules())
		require.NoError(t, err)
		_, err = dir.Hash(provider)
		assert.ErrorIs(t, err, domain.ErrIsDirectory)
	})
}

func TestPath_Mimetype(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "doc.txt"), []byte("plain text content\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))

	p, err := repopath.New(root, "doc.txt", domain.ChecksumSHA256, strictRules())
	require.NoError(t, err)
	mime, err := p.Mimetype()
	require.NoError(t, err)
	assert.Contains(t, mime, "text/plain")

	d, err := repopath.New(root, "sub", domain.ChecksumSHA256, strictRules())
	require.NoError(t, err)
	mime, err = d.Mimetype()
	require.NoError(t, err)
	assert.Equal(t, domain.DirectoryMimetype, mime)
}
