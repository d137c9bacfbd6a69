package search

import (
	"strconv"

	"github.com/quran-omni/omnisearch/internal/domain"
	"github.com/quran-omni/omnisearch/internal/snippet"
)

// projectedHits groups typed projections by space type.
type projectedHits struct {
	quran        []domain.QuranResult
	translations []domain.TranslationResult
	tafsirs      []domain.TafsirResult
	posts        []domain.PostResult
	courses      []domain.CourseResult
	articles     []domain.ArticleResult
}

// project maps each raw hit into its typed record.
func (s *Service) project(hits []domain.MemoryHit) projectedHits {
	var p projectedHits
	for _, hit := range hits {
		switch hit.Space {
		case domain.SpaceQuran:
			p.quran = append(p.quran, s.toQuranResult(hit))
		case domain.SpaceTranslation:
			p.translations = append(p.translations, toTranslationResult(hit))
		case domain.SpaceTafsir:
			p.tafsirs = append(p.tafsirs, toTafsirResult(hit))
		case domain.SpacePost:
			p.posts = append(p.posts, toPostResult(hit))
		case domain.SpaceCourse:
			p.courses = append(p.courses, toCourseResult(hit))
		case domain.SpaceArticle:
			p.articles = append(p.articles, toArticleResult(hit))
		}
	}
	return p
}

// verseParts extracts the surah/ayah pair from metadata fields, falling
// back to parsing the raw ayah key when those are absent or zero.
func verseParts(meta domain.Metadata, ayahKey string) (int, int) {
	surah := meta.Int("surah")
	ayah := meta.Int("ayah")
	if surah == 0 || ayah == 0 {
		key := domain.ParseVerseKey(ayahKey)
		if surah == 0 {
			surah = key.Surah
		}
		if ayah == 0 {
			ayah = key.Ayah
		}
	}
	return surah, ayah
}

// toQuranResult prefers the local dataset text over the upstream excerpt:
// the bundled text carries full tashkeel, the upstream copy may not.
func (s *Service) toQuranResult(hit domain.MemoryHit) domain.QuranResult {
	meta := hit.Metadata
	ayahKey := meta.String("ayah_key")
	surah, ayah := verseParts(meta, ayahKey)

	text := hit.Text
	surahName, surahTranslit := "", ""
	if local, ok := s.verseText.Verse(ayahKey); ok {
		text = local.Text
		surahName = local.SurahName
		surahTranslit = local.SurahTransliteration
	}

	return domain.QuranResult{
		Type:                 "quran",
		Ayah:                 ayah,
		AyahKey:              ayahKey,
		Surah:                surah,
		Text:                 text,
		EditionID:            meta.String("edition_id"),
		EditionType:          meta.String("edition_type"),
		Lang:                 meta.String("lang"),
		Name:                 meta.String("name"),
		SurahName:            surahName,
		SurahTransliteration: surahTranslit,
		URL:                  meta.String("url"),
		Score:                hit.Score,
	}
}

func toTranslationResult(hit domain.MemoryHit) domain.TranslationResult {
	meta := hit.Metadata
	ayahKey := meta.String("ayah_key")
	surah, ayah := verseParts(meta, ayahKey)

	return domain.TranslationResult{
		Type:      "translation",
		Ayah:      ayah,
		AyahKey:   ayahKey,
		Surah:     surah,
		Text:      hit.Text,
		Author:    authorOrName(meta),
		EditionID: meta.String("edition_id"),
		Lang:      meta.String("lang"),
		Name:      meta.String("name"),
		URL:       meta.String("url"),
		Score:     hit.Score,
	}
}

func toTafsirResult(hit domain.MemoryHit) domain.TafsirResult {
	meta := hit.Metadata
	ayahKey := meta.String("ayah_key")
	surah, ayah := verseParts(meta, ayahKey)

	return domain.TafsirResult{
		Type:      "tafsir",
		Ayah:      ayah,
		AyahKey:   ayahKey,
		Surah:     surah,
		Text:      snippet.Clean(hit.Text, snippet.DefaultMaxChars),
		Author:    authorOrName(meta),
		EditionID: meta.String("edition_id"),
		Lang:      meta.String("lang"),
		Name:      meta.String("name"),
		URL:       meta.String("url"),
		Score:     hit.Score,
	}
}

func toPostResult(hit domain.MemoryHit) domain.PostResult {
	meta := hit.Metadata
	return domain.PostResult{
		Type:         "post",
		PostID:       meta.String("post_id"),
		ReflectionID: meta.String("reflection_id"),
		Text:         snippet.Clean(hit.Text, snippet.DefaultMaxChars),
		Username:     meta.String("username"),
		DisplayName:  meta.String("display_name"),
		AyahKeys:     meta.StringList("ayah_keys"),
		Surahs:       meta.IntList("surahs"),
		Category:     meta.String("category"),
		LikesCount:   meta.Int("likes_count"),
		CreatedAt:    meta.String("created_at"),
		URL:          meta.String("url"),
		Score:        hit.Score,
	}
}

func toCourseResult(hit domain.MemoryHit) domain.CourseResult {
	meta := hit.Metadata
	return domain.CourseResult{
		Type:        "course",
		CourseID:    meta.String("course_id"),
		CourseTitle: meta.String("course_title"),
		CourseSlug:  meta.String("course_slug"),
		LessonID:    meta.String("lesson_id"),
		LessonTitle: meta.String("lesson_title"),
		LessonSlug:  meta.String("lesson_slug"),
		Text:        snippet.Clean(hit.Text, snippet.DefaultMaxChars),
		Lang:        meta.String("lang"),
		Tags:        meta.StringList("tags"),
		URL:         meta.String("url"),
		Score:       hit.Score,
	}
}

func toArticleResult(hit domain.MemoryHit) domain.ArticleResult {
	meta := hit.Metadata
	return domain.ArticleResult{
		Type:  "article",
		Title: meta.String("title"),
		Slug:  meta.String("slug"),
		Text:  snippet.Clean(hit.Text, snippet.DefaultMaxChars),
		URL:   meta.String("url"),
		Score: hit.Score,
	}
}

func authorOrName(meta domain.Metadata) string {
	if author := meta.String("author"); author != "" {
		return author
	}
	return meta.String("name")
}

func quranComURL(surah, ayah int) string {
	return "https://quran.com/" + strconv.Itoa(surah) + "/" + strconv.Itoa(ayah)
}
