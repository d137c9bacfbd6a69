package versetext

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo := New(nil)
	require.NoError(t, repo.Load(filepath.Join("testdata", "quran.json")))
	return repo
}

func TestLoad(t *testing.T) {
	repo := loadTestRepo(t)
	assert.Equal(t, 5, repo.Len())

	verse, ok := repo.Verse("2:255")
	require.True(t, ok)
	assert.Equal(t, 2, verse.Surah)
	assert.Equal(t, 255, verse.Ayah)
	assert.Equal(t, "البقرة", verse.SurahName)
	assert.Equal(t, "Al-Baqarah", verse.SurahTransliteration)
	assert.Contains(t, verse.Text, "الْحَيُّ الْقَيُّومُ")
}

func TestVerseText(t *testing.T) {
	repo := loadTestRepo(t)

	text, ok := repo.VerseText("1:1")
	require.True(t, ok)
	assert.Contains(t, text, "بِسْمِ")

	_, ok = repo.VerseText("3:1")
	assert.False(t, ok)
}

func TestSurah(t *testing.T) {
	repo := loadTestRepo(t)

	surah, ok := repo.Surah(18)
	require.True(t, ok)
	assert.Equal(t, "Al-Kahf", surah.Transliteration)
	assert.Equal(t, 110, surah.TotalVerses)

	_, ok = repo.Surah(99)
	assert.False(t, ok)
}

func TestLoad_MissingFileKeepsRepoEmpty(t *testing.T) {
	repo := New(nil)
	err := repo.Load(filepath.Join("testdata", "nope.json"))
	require.Error(t, err)
	assert.Equal(t, 0, repo.Len())

	_, ok := repo.Verse("1:1")
	assert.False(t, ok)
}
