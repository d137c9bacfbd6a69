// Package translation serves the fallback translation edition
// (A.J. Arberry, "The Koran Interpreted") from a bundled SQLite database,
// preloaded into memory at startup.
package translation

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // sqlite driver
	"go.uber.org/zap"

	"github.com/quran-omni/omnisearch/internal/domain"
)

// Fixed edition metadata for the bundled fallback translation.
const (
	Author    = "A.J. Arberry"
	EditionID = "en-arberry"
	Lang      = "en"
	Name      = "The Koran Interpreted"
)

// Entry is one preloaded translation row.
type Entry struct {
	Surah   int
	Ayah    int
	AyahKey string
	Text    string
}

// Repository holds the preloaded fallback translation. Read-only after Load.
type Repository struct {
	entries map[string]Entry
	logger  *zap.Logger
}

// New creates an empty repository.
func New(logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		entries: make(map[string]Entry),
		logger:  logger,
	}
}

// Load reads every translation row from the SQLite database at path into
// memory. The repository stays usable (empty) when loading fails.
func (r *Repository) Load(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open translation db: %w", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.Query("SELECT sura, ayah, ayah_key, text FROM translation")
	if err != nil {
		return fmt.Errorf("query translation db: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.Surah, &entry.Ayah, &entry.AyahKey, &entry.Text); err != nil {
			return fmt.Errorf("scan translation row: %w", err)
		}
		r.entries[entry.AyahKey] = entry
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate translation rows: %w", err)
	}

	r.logger.Info("loaded fallback translations", zap.Int("entries", len(r.entries)))
	return nil
}

// Translation returns the raw entry for an ayah key like "18:17".
func (r *Repository) Translation(ayahKey string) (Entry, bool) {
	entry, ok := r.entries[ayahKey]
	return entry, ok
}

// Result projects the entry for an ayah key into an API translation
// record with the fixed edition metadata and score 0.
func (r *Repository) Result(ayahKey string) (domain.TranslationResult, bool) {
	entry, ok := r.entries[ayahKey]
	if !ok {
		return domain.TranslationResult{}, false
	}
	return domain.TranslationResult{
		Type:      "translation",
		Ayah:      entry.Ayah,
		AyahKey:   entry.AyahKey,
		Surah:     entry.Surah,
		Text:      entry.Text,
		Author:    Author,
		EditionID: EditionID,
		Lang:      Lang,
		Name:      Name,
		URL:       fmt.Sprintf("https://quran.com/%d/%d?translations=%s", entry.Surah, entry.Ayah, EditionID),
		Score:     0,
	}, true
}

// Len returns the number of loaded entries.
func (r *Repository) Len() int { return len(r.entries) }
