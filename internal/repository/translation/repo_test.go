package translation

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDB builds a small edition database in the test temp dir.
func newTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edition.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.Exec(`CREATE TABLE translation (sura INTEGER, ayah INTEGER, ayah_key TEXT, text TEXT)`)
	require.NoError(t, err)

	rows := [][]any{
		{2, 255, "2:255", "God there is no god but He, the Living, the Everlasting."},
		{18, 17, "18:17", "And thou mightest have seen the sun..."},
	}
	for _, row := range rows {
		_, err = db.Exec(`INSERT INTO translation (sura, ayah, ayah_key, text) VALUES (?, ?, ?, ?)`, row...)
		require.NoError(t, err)
	}
	return path
}

func TestLoad(t *testing.T) {
	repo := New(nil)
	require.NoError(t, repo.Load(newTestDB(t)))
	assert.Equal(t, 2, repo.Len())

	entry, ok := repo.Translation("2:255")
	require.True(t, ok)
	assert.Equal(t, 2, entry.Surah)
	assert.Equal(t, 255, entry.Ayah)
	assert.Contains(t, entry.Text, "the Living")
}

func TestResult(t *testing.T) {
	repo := New(nil)
	require.NoError(t, repo.Load(newTestDB(t)))

	result, ok := repo.Result("18:17")
	require.True(t, ok)
	assert.Equal(t, "translation", result.Type)
	assert.Equal(t, Author, result.Author)
	assert.Equal(t, EditionID, result.EditionID)
	assert.Equal(t, Lang, result.Lang)
	assert.Equal(t, Name, result.Name)
	assert.Equal(t, "https://quran.com/18/17?translations=en-arberry", result.URL)
	assert.Zero(t, result.Score, "fallback results carry score 0")

	_, ok = repo.Result("99:1")
	assert.False(t, ok)
}

func TestLoad_MissingTableKeepsRepoEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE unrelated (x INTEGER)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	repo := New(nil)
	require.Error(t, repo.Load(path))
	assert.Equal(t, 0, repo.Len())
}
