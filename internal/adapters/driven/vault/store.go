// Package vault reads and writes the local markdown vault.
//
// A vault is a directory with three content areas:
//
//	journals/   dated entries, e.g. journals/2024_05_01.md
//	pages/      named pages, e.g. pages/reading_list.md
//	assets/     attachments referenced by pages
//
// Document IDs are vault-relative paths, so they are stable across
// processes and double as reconciliation keys.
package vault

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driven"
)

// Store implements the NoteStore port over a vault directory.
type Store struct {
	fs         afero.Fs
	root       string
	collection string
}

var _ driven.NoteStore = (*Store)(nil)

// NewStore creates a vault store rooted at root.
func NewStore(fsys afero.Fs, root string) *Store {
	return &Store{fs: fsys, root: root}
}

// WithCollection overrides the collection name derived from the vault
// directory. An empty name keeps the directory-based default.
func (s *Store) WithCollection(name string) *Store {
	s.collection = name
	return s
}

// ListDocuments walks the vault and returns every recognised document.
// Hidden files and directories are skipped, as are non-markdown files
// outside assets/.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document

	err := afero.Walk(s.fs, s.root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		name := info.Name()
		if strings.HasPrefix(name, ".") {
			if info.IsDir() && p != s.root {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		doc, ok := s.describe(rel, info)
		if !ok {
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking vault %s: %w", s.root, err)
	}
	return docs, nil
}

// GetDocument returns a single document by its vault-relative path.
func (s *Store) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	info, err := s.fs.Stat(filepath.Join(s.root, filepath.FromSlash(id)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", id, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("document %s is a directory: %w", id, domain.ErrNotFound)
	}

	doc, ok := s.describe(id, info)
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrUnsupportedType)
	}
	return &doc, nil
}

// GetContent returns the raw file content for a document.
func (s *Store) GetContent(_ context.Context, id string) ([]byte, error) {
	content, err := afero.ReadFile(s.fs, filepath.Join(s.root, filepath.FromSlash(id)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("content %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", id, err)
	}
	return content, nil
}

// UpdateContent overwrites a document's content, creating parent
// directories when needed.
func (s *Store) UpdateContent(_ context.Context, id string, content []byte) error {
	full := filepath.Join(s.root, filepath.FromSlash(id))
	if err := s.fs.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("creating directories for %s: %w", id, err)
	}
	if err := afero.WriteFile(s.fs, full, content, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", id, err)
	}
	return nil
}

// Collection returns the configured collection name, falling back to
// the vault directory's base name.
func (s *Store) Collection() (string, error) {
	if s.collection != "" {
		return s.collection, nil
	}
	name := filepath.Base(filepath.Clean(s.root))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", domain.ErrNoCollection
	}
	return name, nil
}

// describe maps a vault-relative path to a document, or reports that
// the file is not a recognised document.
func (s *Store) describe(rel string, info fs.FileInfo) (domain.Document, bool) {
	area, rest, found := strings.Cut(rel, "/")
	if !found {
		return domain.Document{}, false
	}

	base := path.Base(rest)
	stem := strings.TrimSuffix(base, path.Ext(base))

	switch area {
	case "journals":
		if path.Ext(base) != ".md" {
			return domain.Document{}, false
		}
		return domain.Document{
			ID:         rel,
			Name:       strings.ReplaceAll(stem, "_", "-"),
			Kind:       domain.KindJournal,
			ModifiedAt: info.ModTime(),
		}, true

	case "pages":
		if path.Ext(base) != ".md" {
			return domain.Document{}, false
		}
		return domain.Document{
			ID:         rel,
			Name:       stem,
			Kind:       domain.KindPage,
			ModifiedAt: info.ModTime(),
			Container:  strings.HasPrefix(stem, "#"),
		}, true

	case "assets":
		return domain.Document{
			ID:         rel,
			Name:       base,
			Kind:       domain.KindAsset,
			ModifiedAt: info.ModTime(),
		}, true
	}
	return domain.Document{}, false
}
