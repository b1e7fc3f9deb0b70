package services

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quillsync-cli/internal/logger"
)

// ArtifactBuilder serializes vault documents into backup artifacts.
// Filtering happens here: container pages and unrecognised document
// kinds never reach a provider.
type ArtifactBuilder struct {
	notes driven.NoteStore
	clock driven.Clock
}

// NewArtifactBuilder creates an artifact builder.
func NewArtifactBuilder(notes driven.NoteStore, clock driven.Clock) *ArtifactBuilder {
	return &ArtifactBuilder{
		notes: notes,
		clock: clock,
	}
}

// Build serializes one document into an artifact ready for dispatch.
// Returns ErrNotFound if the document no longer exists and ErrFiltered
// for documents that are deliberately excluded from backups.
func (b *ArtifactBuilder) Build(ctx context.Context, documentID string) (*domain.BackupArtifact, error) {
	doc, err := b.notes.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("loading document %s: %w", documentID, err)
	}

	if doc.Container {
		logger.Debug("Filtering container page: %s", doc.Name)
		return nil, fmt.Errorf("container page %s: %w", doc.Name, domain.ErrFiltered)
	}
	if !doc.Kind.IsValid() {
		return nil, fmt.Errorf("document kind %q: %w", doc.Kind, domain.ErrUnsupportedType)
	}

	content, err := b.notes.GetContent(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("reading content of %s: %w", documentID, err)
	}

	collection, err := b.notes.Collection()
	if err != nil {
		return nil, err
	}

	relativePath := RelativePathFor(doc)

	artifact := &domain.BackupArtifact{
		DocumentID: doc.ID,
		Payload:    content,
		Metadata: domain.BackupMetadata{
			Timestamp:     b.clock.Now(),
			FormatVersion: domain.MetadataFormatVersion,
			Collection:    collection,
			DocumentID:    doc.ID,
			Kind:          doc.Kind,
			RelativePath:  relativePath,
			FileName:      path.Base(relativePath),
			SizeBytes:     int64(len(content)),
		},
	}
	return artifact, nil
}

// RelativePathFor derives the canonical relative path for a document.
// The derivation is deterministic so that the same document always maps
// to the same key on every provider:
//
//   - journals: "journals/<name with '-' replaced by '_'>.md"
//   - pages: "pages/<lowercased name, whitespace replaced by '_'>.md"
//   - assets: the document ID, which is already the vault-relative path
func RelativePathFor(doc *domain.Document) string {
	switch doc.Kind {
	case domain.KindJournal:
		return "journals/" + strings.ReplaceAll(doc.Name, "-", "_") + ".md"
	case domain.KindPage:
		name := strings.ToLower(doc.Name)
		name = strings.Join(strings.Fields(name), "_")
		return "pages/" + name + ".md"
	default:
		return doc.ID
	}
}
