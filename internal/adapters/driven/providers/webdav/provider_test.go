package webdav

import (
	"context"
	"io/fs"
	"os"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
)

// fakeDAV is an in-memory WebDAV share backed by a flat path map.
type fakeDAV struct {
	files      map[string][]byte
	connectErr error
}

func newFakeDAV() *fakeDAV {
	return &fakeDAV{files: make(map[string][]byte)}
}

func (f *fakeDAV) Connect() error { return f.connectErr }

func (f *fakeDAV) MkdirAll(string, os.FileMode) error { return nil }

func (f *fakeDAV) Write(p string, data []byte, _ os.FileMode) error {
	f.files[path.Clean("/"+p)] = data
	return nil
}

func (f *fakeDAV) Read(p string) ([]byte, error) {
	data, ok := f.files[path.Clean("/"+p)]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: p, Err: fs.ErrNotExist}
	}
	return data, nil
}

func (f *fakeDAV) Remove(p string) error {
	delete(f.files, path.Clean("/"+p))
	return nil
}

func (f *fakeDAV) Stat(p string) (os.FileInfo, error) {
	data, ok := f.files[path.Clean("/"+p)]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
	}
	return fakeInfo{name: path.Base(p), size: int64(len(data))}, nil
}

func (f *fakeDAV) ReadDir(dir string) ([]os.FileInfo, error) {
	dir = path.Clean("/" + dir)
	seen := make(map[string]bool)
	var entries []os.FileInfo
	for p := range f.files {
		if !strings.HasPrefix(p, dir+"/") && dir != "/" {
			continue
		}
		rest := strings.TrimPrefix(p, dir)
		rest = strings.TrimPrefix(rest, "/")
		if rest == "" {
			continue
		}
		name, _, isNested := strings.Cut(rest, "/")
		if seen[name] {
			continue
		}
		seen[name] = true
		entries = append(entries, fakeInfo{name: name, dir: isNested})
	}
	return entries, nil
}

type fakeInfo struct {
	name string
	size int64
	dir  bool
}

func (i fakeInfo) Name() string       { return i.name }
func (i fakeInfo) Size() int64        { return i.size }
func (i fakeInfo) Mode() fs.FileMode  { return 0o644 }
func (i fakeInfo) ModTime() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
func (i fakeInfo) IsDir() bool        { return i.dir }
func (i fakeInfo) Sys() any           { return nil }

func testConfig(prefix string) domain.ProviderConfig {
	return domain.ProviderConfig{
		Name:     "nextcloud",
		Type:     domain.ProviderWebDAV,
		Enabled:  true,
		Prefix:   prefix,
		URL:      "https://cloud.example.com/remote.php/dav",
		Username: "user",
		Password: "secret",
	}
}

func testArtifact() *domain.BackupArtifact {
	return &domain.BackupArtifact{
		DocumentID: "pages/reading_list.md",
		Payload:    []byte("- book"),
		Metadata: domain.BackupMetadata{
			Timestamp:     time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			FormatVersion: domain.MetadataFormatVersion,
			Collection:    "vault",
			DocumentID:    "pages/reading_list.md",
			Kind:          domain.KindPage,
			RelativePath:  "pages/reading_list.md",
			FileName:      "reading_list.md",
			SizeBytes:     6,
		},
	}
}

func TestProvider_StoreAndList(t *testing.T) {
	ctx := context.Background()

	t.Run("stored artifacts appear in listings", func(t *testing.T) {
		p := NewWithClient(newFakeDAV(), testConfig(""))

		require.NoError(t, p.Store(ctx, testArtifact()))

		listing, err := p.List(ctx)
		require.NoError(t, err)
		require.Len(t, listing, 1)
		assert.Equal(t, testArtifact().Metadata, listing[0])
	})

	t.Run("prefix is transparent to listings", func(t *testing.T) {
		p := NewWithClient(newFakeDAV(), testConfig("backups/laptop"))

		require.NoError(t, p.Store(ctx, testArtifact()))

		listing, err := p.List(ctx)
		require.NoError(t, err)
		require.Len(t, listing, 1)
		assert.Equal(t, "pages/reading_list.md", listing[0].RelativePath)
	})

	t.Run("empty share lists nothing", func(t *testing.T) {
		p := NewWithClient(newFakeDAV(), testConfig(""))

		listing, err := p.List(ctx)

		require.NoError(t, err)
		assert.Empty(t, listing)
	})
}

func TestProvider_Fetch(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches by canonical key", func(t *testing.T) {
		p := NewWithClient(newFakeDAV(), testConfig("backups/laptop"))
		require.NoError(t, p.Store(ctx, testArtifact()))

		content, err := p.Fetch(ctx, "vault/pages/reading_list.md")

		require.NoError(t, err)
		assert.Equal(t, []byte("- book"), content)
	})

	t.Run("missing key returns not found", func(t *testing.T) {
		p := NewWithClient(newFakeDAV(), testConfig(""))

		_, err := p.Fetch(ctx, "vault/pages/ghost.md")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestProvider_Erase(t *testing.T) {
	ctx := context.Background()

	t.Run("removes payload and manifest", func(t *testing.T) {
		dav := newFakeDAV()
		p := NewWithClient(dav, testConfig(""))
		require.NoError(t, p.Store(ctx, testArtifact()))

		require.NoError(t, p.Erase(ctx, "vault/pages/reading_list.md"))

		assert.Empty(t, dav.files)
	})
}

func TestProvider_NotReady(t *testing.T) {
	p := New(testConfig(""))

	err := p.Store(context.Background(), testArtifact())

	assert.ErrorIs(t, err, domain.ErrProviderNotReady)
}
