package search

import (
	"sort"
	"strings"

	"github.com/quran-omni/omnisearch/internal/domain"
)

// ayahAggregate is the mutable per-verse bundle built up during one
// request, finalized exactly once into a domain.AyahResult.
type ayahAggregate struct {
	ayahKey      string
	surah        int
	ayah         int
	quran        *domain.QuranResult
	translations []domain.TranslationResult
	tafsirs      []domain.TafsirResult
	posts        []domain.PostResult
	topScore     float64
}

// aggregateMap holds aggregates keyed by ayah key, preserving first
// contribution order so equal-score ties stay deterministic.
type aggregateMap struct {
	byKey    map[string]*ayahAggregate
	order    []string
	attached map[string]bool // post ids folded into at least one aggregate
}

func newAggregateMap() *aggregateMap {
	return &aggregateMap{
		byKey:    make(map[string]*ayahAggregate),
		attached: make(map[string]bool),
	}
}

// Get returns the aggregate for ayahKey, creating it lazily.
func (m *aggregateMap) Get(ayahKey string, surah, ayah int) *ayahAggregate {
	if agg, ok := m.byKey[ayahKey]; ok {
		return agg
	}
	agg := &ayahAggregate{ayahKey: ayahKey, surah: surah, ayah: ayah}
	m.byKey[ayahKey] = agg
	m.order = append(m.order, ayahKey)
	return agg
}

// All returns the aggregates in first contribution order.
func (m *aggregateMap) All() []*ayahAggregate {
	result := make([]*ayahAggregate, 0, len(m.order))
	for _, key := range m.order {
		result = append(result, m.byKey[key])
	}
	return result
}

func (m *aggregateMap) Len() int { return len(m.byKey) }

// aggregate folds verse-scoped typed results into per-verse aggregates.
// Only valid ayah keys participate. A post attaches to the aggregate of
// every valid key it references; once attached anywhere it is excluded
// from direct hits.
func (s *Service) aggregate(p projectedHits) *aggregateMap {
	m := newAggregateMap()

	for i := range p.quran {
		result := p.quran[i]
		if !domain.ValidVerseKey(result.AyahKey) {
			continue
		}
		m.Get(result.AyahKey, result.Surah, result.Ayah).setQuran(&result)
	}

	for _, result := range p.translations {
		if !domain.ValidVerseKey(result.AyahKey) {
			continue
		}
		m.Get(result.AyahKey, result.Surah, result.Ayah).addTranslation(result)
	}

	for _, result := range p.tafsirs {
		if !domain.ValidVerseKey(result.AyahKey) {
			continue
		}
		m.Get(result.AyahKey, result.Surah, result.Ayah).addTafsir(result)
	}

	for _, post := range p.posts {
		for _, ayahKey := range post.AyahKeys {
			key := domain.ParseVerseKey(ayahKey)
			if !key.Valid() {
				continue
			}
			m.Get(key.String(), key.Surah, key.Ayah).addPost(post)
			m.attached[post.PostID] = true
		}
	}

	return m
}

// setQuran keeps the highest-scored canonical text seen for the verse.
func (a *ayahAggregate) setQuran(result *domain.QuranResult) {
	if a.quran == nil || result.Score > a.quran.Score {
		a.quran = result
	}
	a.noteScore(result.Score)
	a.noteVerse(result.Surah, result.Ayah)
}

func (a *ayahAggregate) addTranslation(result domain.TranslationResult) {
	a.translations = append(a.translations, result)
	a.noteScore(result.Score)
	a.noteVerse(result.Surah, result.Ayah)
}

func (a *ayahAggregate) addTafsir(result domain.TafsirResult) {
	a.tafsirs = append(a.tafsirs, result)
	a.noteScore(result.Score)
	a.noteVerse(result.Surah, result.Ayah)
}

func (a *ayahAggregate) addPost(result domain.PostResult) {
	a.posts = append(a.posts, result)
	a.noteScore(result.Score)
}

// noteScore keeps topScore as the running max of contributing scores.
func (a *ayahAggregate) noteScore(score float64) {
	if score > a.topScore {
		a.topScore = score
	}
}

// noteVerse backfills the surah/ayah pair from the first contribution
// that actually carries it.
func (a *ayahAggregate) noteVerse(surah, ayah int) {
	if a.surah == 0 && surah > 0 {
		a.surah = surah
	}
	if a.ayah == 0 && ayah > 0 {
		a.ayah = ayah
	}
}

// finalize orders the aggregate's contents and freezes it into the
// immutable response shape. Translations and tafsirs matching the request
// language come first regardless of raw score; within each partition the
// sort is by descending score, ties preserving contribution order.
func (a *ayahAggregate) finalize(language string) domain.AyahResult {
	translations := sortByLanguage(a.translations, language,
		func(r domain.TranslationResult) string { return r.Lang },
		func(r domain.TranslationResult) float64 { return r.Score },
	)
	tafsirs := sortByLanguage(a.tafsirs, language,
		func(r domain.TafsirResult) string { return r.Lang },
		func(r domain.TafsirResult) float64 { return r.Score },
	)

	posts := make([]domain.PostResult, len(a.posts))
	copy(posts, a.posts)
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].Score > posts[j].Score })

	return domain.AyahResult{
		AyahKey:      a.ayahKey,
		Surah:        a.surah,
		Ayah:         a.ayah,
		Quran:        a.quran,
		Translations: translations,
		Tafsirs:      tafsirs,
		Posts:        posts,
		Courses:      []domain.CourseResult{},
		Articles:     []domain.ArticleResult{},
		TopScore:     a.topScore,
	}
}

// sortByLanguage partitions items into language matches and others, sorts
// each partition by descending score, and concatenates matches first.
func sortByLanguage[T any](items []T, language string, lang func(T) string, score func(T) float64) []T {
	preferred := make([]T, 0, len(items))
	other := make([]T, 0)
	for _, item := range items {
		if strings.EqualFold(lang(item), language) {
			preferred = append(preferred, item)
		} else {
			other = append(other, item)
		}
	}
	sort.SliceStable(preferred, func(i, j int) bool { return score(preferred[i]) > score(preferred[j]) })
	sort.SliceStable(other, func(i, j int) bool { return score(other[i]) > score(other[j]) })
	return append(preferred, other...)
}
