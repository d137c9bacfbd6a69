// Package search implements the consolidation engine: it fans a query out
// across the upstream spaces, aggregates verse-scoped results, enriches
// gaps from the fallback repositories, and finalizes the response.
package search

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/quran-omni/omnisearch/internal/domain"
	"github.com/quran-omni/omnisearch/internal/metrics"
)

// Config holds consolidation settings.
type Config struct {
	DefaultLanguage   string
	Limits            map[domain.SpaceType]int
	FallbackBatchSize int
}

const (
	defaultSpaceLimit   = 8
	defaultBatchSize    = 25
	defaultLanguageCode = "en"
)

// Service is the consolidation engine.
type Service struct {
	gateway      Gateway
	resolver     SpaceResolver
	verseText    VerseTextRepo
	translations TranslationRepo
	pool         Pool
	cfg          Config
	logger       *zap.Logger
}

// New creates a consolidation engine.
func New(
	gateway Gateway,
	resolver SpaceResolver,
	verseText VerseTextRepo,
	translations TranslationRepo,
	pool Pool,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = defaultLanguageCode
	}
	if cfg.FallbackBatchSize <= 0 {
		cfg.FallbackBatchSize = defaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		gateway:      gateway,
		resolver:     resolver,
		verseText:    verseText,
		translations: translations,
		pool:         pool,
		cfg:          cfg,
		logger:       logger,
	}
}

// dispatchedSpace is one fan-out task bound to its result slot.
type dispatchedSpace struct {
	space   domain.SpaceType
	spaceID string
	limit   int
}

// Search runs one consolidated search request.
func (s *Service) Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return domain.SearchResponse{}, domain.ErrEmptyQuery
	}

	// A client disconnect cancels the request context, but dispatched
	// upstream work must run to completion on its own timeouts.
	ctx = context.WithoutCancel(ctx)

	language := strings.ToLower(strings.TrimSpace(req.Language))
	if language == "" {
		language = s.cfg.DefaultLanguage
	}

	selected := domain.ParseSpaceList(req.Spaces)
	spaceIDs := s.resolver.Resolve(ctx)

	hits := s.fanOut(ctx, query, selected, spaceIDs, req.Limit)

	overview := ""
	if req.IncludeOverview {
		overview = s.generateOverview(ctx, query, selected, spaceIDs)
	}

	projected := s.project(hits)
	aggregates := s.aggregate(projected)
	s.ensureQuranText(ctx, query, spaceIDs, aggregates)
	s.ensureTranslations(aggregates)

	return s.finalize(query, overview, language, projected, aggregates), nil
}

// fanOut dispatches one retrieval task per resolvable selected space on
// the shared worker pool and blocks until every task completes. A
// per-space failure is downgraded to zero hits.
func (s *Service) fanOut(
	ctx context.Context,
	query string,
	selected []domain.SpaceType,
	spaceIDs map[domain.SpaceType]string,
	limitOverride int,
) []domain.MemoryHit {
	var dispatch []dispatchedSpace
	for _, st := range selected {
		spaceID := spaceIDs[st]
		if spaceID == "" {
			s.logger.Warn("missing space id, skipping space", zap.String("space", st.String()))
			continue
		}
		dispatch = append(dispatch, dispatchedSpace{
			space:   st,
			spaceID: spaceID,
			limit:   s.resolveLimit(st, limitOverride),
		})
	}
	if len(dispatch) == 0 {
		return nil
	}

	hitsBySlot := make([][]domain.MemoryHit, len(dispatch))
	var wg sync.WaitGroup
	for i, d := range dispatch {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			start := time.Now()
			spaceHits, err := s.gateway.Retrieve(ctx, query, d.space, d.spaceID, d.limit, "")
			metrics.RetrievalDuration.WithLabelValues(d.space.String()).Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.RetrievalTotal.WithLabelValues(d.space.String(), "error").Inc()
				s.logger.Warn("retrieval failed for space",
					zap.String("space", d.space.String()), zap.Error(err))
				return
			}
			metrics.RetrievalTotal.WithLabelValues(d.space.String(), "success").Inc()
			hitsBySlot[i] = spaceHits
		}
		if err := s.pool.Submit(task); err != nil {
			wg.Done()
			s.logger.Warn("failed to submit retrieval task",
				zap.String("space", d.space.String()), zap.Error(err))
		}
	}
	wg.Wait()

	var hits []domain.MemoryHit
	for _, slot := range hitsBySlot {
		hits = append(hits, slot...)
	}
	return hits
}

// generateOverview asks the gateway for an LLM synthesis. Best effort: a
// failure never fails the search request.
func (s *Service) generateOverview(
	ctx context.Context,
	query string,
	selected []domain.SpaceType,
	spaceIDs map[domain.SpaceType]string,
) string {
	if !s.gateway.OverviewEnabled() {
		return ""
	}
	var ids []string
	for _, st := range selected {
		if id := spaceIDs[st]; id != "" {
			ids = append(ids, id)
		}
	}
	overview, err := s.gateway.GenerateOverview(ctx, query, ids)
	if err != nil {
		metrics.OverviewTotal.WithLabelValues("error").Inc()
		s.logger.Warn("overview generation failed", zap.Error(err))
		return ""
	}
	if overview != "" {
		metrics.OverviewTotal.WithLabelValues("success").Inc()
	}
	return overview
}

// ensureQuranText fills aggregates missing canonical text: the local
// dataset first, then batched filtered re-queries upstream.
func (s *Service) ensureQuranText(
	ctx context.Context,
	query string,
	spaceIDs map[domain.SpaceType]string,
	aggregates *aggregateMap,
) {
	if aggregates.Len() == 0 {
		return
	}

	var stillMissing []string
	for _, agg := range aggregates.All() {
		if agg.quran != nil {
			continue
		}
		if verse, ok := s.verseText.Verse(agg.ayahKey); ok {
			agg.setQuran(&domain.QuranResult{
				Type:                 "quran",
				Ayah:                 verse.Ayah,
				AyahKey:              verse.AyahKey,
				Surah:                verse.Surah,
				Text:                 verse.Text,
				EditionID:            "quran-uthmani",
				EditionType:          "quran",
				Lang:                 "ar",
				Name:                 "Uthmani",
				SurahName:            verse.SurahName,
				SurahTransliteration: verse.SurahTransliteration,
				URL:                  quranComURL(verse.Surah, verse.Ayah),
				Score:                0,
			})
			continue
		}
		stillMissing = append(stillMissing, agg.ayahKey)
	}
	if len(stillMissing) == 0 {
		return
	}

	spaceID := spaceIDs[domain.SpaceQuran]
	if spaceID == "" {
		return
	}

	for _, batch := range batchKeys(stillMissing, s.cfg.FallbackBatchSize) {
		filter := buildAyahFilter(batch)
		batchHits, err := s.gateway.Retrieve(ctx, query, domain.SpaceQuran, spaceID, len(batch), filter)
		if err != nil {
			s.logger.Warn("failed to fetch quran text batch", zap.Error(err))
			continue
		}
		for _, hit := range batchHits {
			result := s.toQuranResult(hit)
			aggregates.Get(result.AyahKey, result.Surah, result.Ayah).setQuran(&result)
		}
	}
}

// ensureTranslations fills aggregates with zero translations from the
// fallback edition.
func (s *Service) ensureTranslations(aggregates *aggregateMap) {
	for _, agg := range aggregates.All() {
		if len(agg.translations) > 0 {
			continue
		}
		if result, ok := s.translations.Result(agg.ayahKey); ok {
			agg.addTranslation(result)
		}
	}
}

// finalize applies the ordering policy and builds the response.
func (s *Service) finalize(
	query, overview, language string,
	projected projectedHits,
	aggregates *aggregateMap,
) domain.SearchResponse {
	ayahResults := make([]domain.AyahResult, 0, aggregates.Len())
	for _, agg := range aggregates.All() {
		ayahResults = append(ayahResults, agg.finalize(language))
	}
	sort.SliceStable(ayahResults, func(i, j int) bool {
		return ayahResults[i].TopScore > ayahResults[j].TopScore
	})

	type scoredHit struct {
		score float64
		hit   any
	}
	var direct []scoredHit
	for _, post := range projected.posts {
		if aggregates.attached[post.PostID] {
			continue
		}
		direct = append(direct, scoredHit{post.Score, post})
	}
	for _, course := range projected.courses {
		direct = append(direct, scoredHit{course.Score, course})
	}
	for _, article := range projected.articles {
		direct = append(direct, scoredHit{article.Score, article})
	}
	sort.SliceStable(direct, func(i, j int) bool {
		return direct[i].score > direct[j].score
	})

	directHits := make([]any, 0, len(direct))
	for _, d := range direct {
		directHits = append(directHits, d.hit)
	}

	return domain.SearchResponse{
		Query:        query,
		Overview:     overview,
		DirectHits:   directHits,
		AyahResults:  ayahResults,
		TotalResults: len(directHits) + len(ayahResults),
	}
}

func (s *Service) resolveLimit(st domain.SpaceType, override int) int {
	if override > 0 {
		return override
	}
	if limit, ok := s.cfg.Limits[st]; ok && limit > 0 {
		return limit
	}
	return defaultSpaceLimit
}

// buildAyahFilter builds an exact-match OR chain over ayah keys for the
// upstream filter expression language.
func buildAyahFilter(ayahKeys []string) string {
	clauses := make([]string, 0, len(ayahKeys))
	for _, key := range ayahKeys {
		escaped := strings.ReplaceAll(key, "'", "''")
		clauses = append(clauses, "CAST(val('$.ayah_key') AS TEXT) = '"+escaped+"'")
	}
	return strings.Join(clauses, " OR ")
}

func batchKeys(keys []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(keys); start += size {
		end := min(start+size, len(keys))
		batches = append(batches, keys[start:end])
	}
	return batches
}
