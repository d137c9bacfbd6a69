package search

import (
	"context"

	"github.com/quran-omni/omnisearch/internal/domain"
	"github.com/quran-omni/omnisearch/internal/repository/versetext"
)

// Gateway executes retrieval and overview calls against the upstream
// retrieval service.
type Gateway interface {
	Retrieve(
		ctx context.Context, query string,
		space domain.SpaceType, spaceID string,
		limit int, filter string,
	) ([]domain.MemoryHit, error)

	GenerateOverview(ctx context.Context, query string, spaceIDs []string) (string, error)

	OverviewEnabled() bool
}

// SpaceResolver resolves the space type to space id mapping.
type SpaceResolver interface {
	Resolve(ctx context.Context) map[domain.SpaceType]string
}

// VerseTextRepo looks up canonical verse text from the local dataset.
type VerseTextRepo interface {
	Verse(ayahKey string) (versetext.Verse, bool)
}

// TranslationRepo looks up the fallback translation edition.
type TranslationRepo interface {
	Result(ayahKey string) (domain.TranslationResult, bool)
}

// Pool is the bounded worker pool fan-out tasks run on. *ants.Pool
// satisfies it.
type Pool interface {
	Submit(task func()) error
}
