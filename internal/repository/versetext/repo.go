// Package versetext serves Quran verse text with full tashkeel from a
// bundled JSON dataset, preloaded into memory at startup.
package versetext

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/quran-omni/omnisearch/internal/domain"
)

// Verse is one verse of the bundled dataset.
type Verse struct {
	Surah                int
	Ayah                 int
	AyahKey              string
	Text                 string
	SurahName            string
	SurahTransliteration string
}

// Surah is per-surah metadata of the bundled dataset.
type Surah struct {
	ID              int
	NameArabic      string
	Transliteration string
	Type            string
	TotalVerses     int
}

// surahData mirrors the dataset JSON shape.
type surahData struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Transliteration string `json:"transliteration"`
	Type            string `json:"type"`
	TotalVerses     int    `json:"total_verses"`
	Verses          []struct {
		ID   int    `json:"id"`
		Text string `json:"text"`
	} `json:"verses"`
}

// Repository holds the preloaded verse dataset. Read-only after Load.
type Repository struct {
	verses map[string]Verse
	surahs map[int]Surah
	logger *zap.Logger
}

// New creates an empty repository.
func New(logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		verses: make(map[string]Verse),
		surahs: make(map[int]Surah),
		logger: logger,
	}
}

// Load reads the dataset from path. The repository stays usable (empty)
// when loading fails.
func (r *Repository) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read quran dataset: %w", err)
	}

	var surahList []surahData
	if err := json.Unmarshal(data, &surahList); err != nil {
		return fmt.Errorf("parse quran dataset: %w", err)
	}

	for _, surah := range surahList {
		r.surahs[surah.ID] = Surah{
			ID:              surah.ID,
			NameArabic:      surah.Name,
			Transliteration: surah.Transliteration,
			Type:            surah.Type,
			TotalVerses:     surah.TotalVerses,
		}
		for _, verse := range surah.Verses {
			key := domain.VerseKey{Surah: surah.ID, Ayah: verse.ID}.String()
			r.verses[key] = Verse{
				Surah:                surah.ID,
				Ayah:                 verse.ID,
				AyahKey:              key,
				Text:                 verse.Text,
				SurahName:            surah.Name,
				SurahTransliteration: surah.Transliteration,
			}
		}
	}

	r.logger.Info("loaded quran dataset",
		zap.Int("verses", len(r.verses)),
		zap.Int("surahs", len(r.surahs)),
	)
	return nil
}

// Verse returns the full verse record for an ayah key like "2:255".
func (r *Repository) Verse(ayahKey string) (Verse, bool) {
	v, ok := r.verses[ayahKey]
	return v, ok
}

// VerseText returns the verse text with tashkeel for an ayah key.
func (r *Repository) VerseText(ayahKey string) (string, bool) {
	v, ok := r.verses[ayahKey]
	if !ok {
		return "", false
	}
	return v.Text, true
}

// Surah returns surah metadata by number.
func (r *Repository) Surah(number int) (Surah, bool) {
	s, ok := r.surahs[number]
	return s, ok
}

// Len returns the number of loaded verses.
func (r *Repository) Len() int { return len(r.verses) }
