package docs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/studymate-app/studymate/internal/api"
	"github.com/studymate-app/studymate/pkg/logger"
	"github.com/studymate-app/studymate/pkg/models"
)

var (
	// ErrNoFlashcards means the server holds no cards for a document;
	// the viewer is never entered for such a set.
	ErrNoFlashcards = errors.New("no flashcards found")

	// ErrUnsupportedFileType is the advisory client-side extension gate.
	// The authoritative check stays server-side.
	ErrUnsupportedFileType = errors.New("please select a PDF, TXT, DOC, or DOCX file")
)

var allowedExtensions = map[string]bool{
	".txt":  true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// AllowedExtensions returns the accepted upload extensions, for file
// pickers.
func AllowedExtensions() []string {
	return []string{".txt", ".pdf", ".doc", ".docx"}
}

// IsAllowedFile reports whether the filename carries an accepted
// extension, case-insensitively.
func IsAllowedFile(name string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}

// UploadPhase tracks the upload control between file-pick and completion.
type UploadPhase int

const (
	PhaseIdle UploadPhase = iota
	PhaseUploading
	PhaseSuccess
)

// Repository proxies the backend's document collection. The cached list
// is always a full replacement snapshot from the last successful fetch;
// every mutation is followed by a reload rather than a local patch, since
// the server computes fields (flashcard counts, stats) the client cannot
// predict.
type Repository struct {
	client *api.Client
	logger *logger.Logger
	docs   []models.Document
	stats  models.Stats
}

func NewRepository(client *api.Client, log *logger.Logger) *Repository {
	return &Repository{
		client: client,
		logger: log,
	}
}

func (r *Repository) Documents() []models.Document {
	return r.docs
}

func (r *Repository) Stats() models.Stats {
	return r.stats
}

// Reload replaces the cached document list wholesale, then refreshes
// stats as a dependent read. A stats failure is logged but does not fail
// the reload; the list is the state that matters.
func (r *Repository) Reload(ctx context.Context) error {
	files, err := r.client.ListFiles(ctx)
	if err != nil {
		return err
	}
	r.docs = files

	stats, err := r.client.Stats(ctx)
	if err != nil {
		r.logger.Error("Failed to refresh stats: %v", err)
		return nil
	}
	r.stats = stats
	return nil
}

// Upload sends the file after the advisory extension check and reloads
// the list on success. On failure nothing local changes, so the caller
// can leave the selected file in place.
func (r *Repository) Upload(ctx context.Context, path string) (api.UploadResult, error) {
	if !IsAllowedFile(path) {
		return api.UploadResult{}, fmt.Errorf("%w (got %q)", ErrUnsupportedFileType, filepath.Base(path))
	}

	result, err := r.client.Upload(ctx, path)
	if err != nil {
		return api.UploadResult{}, err
	}

	if err := r.Reload(ctx); err != nil {
		r.logger.Error("Failed to reload documents after upload: %v", err)
	}
	return result, nil
}

// DeleteWithConfirm deletes the document once confirm approves it. A
// declined confirmation sends no request at all. The returned bool
// reports whether a delete was actually performed.
func (r *Repository) DeleteWithConfirm(ctx context.Context, doc models.Document, confirm func(models.Document) bool) (bool, error) {
	if confirm != nil && !confirm(doc) {
		r.logger.Debug("Delete of %s cancelled", doc.Filename)
		return false, nil
	}

	if err := r.client.DeleteFile(ctx, doc.ID); err != nil {
		return false, err
	}
	r.logger.Info("Deleted %s", doc.Filename)

	if err := r.Reload(ctx); err != nil {
		r.logger.Error("Failed to reload documents after delete: %v", err)
	}
	return true, nil
}

// Flashcards loads the card set for one document. Sets are never cached
// across documents; an empty set is an error so the viewer is only ever
// opened with at least one card.
func (r *Repository) Flashcards(ctx context.Context, doc models.Document) ([]models.Flashcard, error) {
	cards, _, err := r.client.Flashcards(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoFlashcards, doc.Filename)
	}
	return cards, nil
}

// Reset drops the cached list and stats back to their empty initial
// values. Used on logout.
func (r *Repository) Reset() {
	r.docs = nil
	r.stats = models.Stats{}
}
