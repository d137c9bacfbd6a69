package domain

// Typed result records are pure projections of a MemoryHit into the fixed
// field set for one space type. JSON field names match the public API.

// QuranResult is a canonical-text hit for one verse. The surah fields
// are filled only when the local dataset supplied the text.
type QuranResult struct {
	Type                 string  `json:"type"`
	Ayah                 int     `json:"ayah"`
	AyahKey              string  `json:"ayah_key"`
	Surah                int     `json:"surah"`
	Text                 string  `json:"text"`
	EditionID            string  `json:"edition_id"`
	EditionType          string  `json:"edition_type"`
	Lang                 string  `json:"lang"`
	Name                 string  `json:"name"`
	SurahName            string  `json:"surah_name,omitempty"`
	SurahTransliteration string  `json:"surah_transliteration,omitempty"`
	URL                  string  `json:"url"`
	Score                float64 `json:"score"`
}

// TranslationResult is a translation hit for one verse.
type TranslationResult struct {
	Type      string  `json:"type"`
	Ayah      int     `json:"ayah"`
	AyahKey   string  `json:"ayah_key"`
	Surah     int     `json:"surah"`
	Text      string  `json:"text"`
	Author    string  `json:"author"`
	EditionID string  `json:"edition_id"`
	Lang      string  `json:"lang"`
	Name      string  `json:"name"`
	URL       string  `json:"url"`
	Score     float64 `json:"score"`
}

// TafsirResult is a commentary hit for one verse.
type TafsirResult struct {
	Type      string  `json:"type"`
	Ayah      int     `json:"ayah"`
	AyahKey   string  `json:"ayah_key"`
	Surah     int     `json:"surah"`
	Text      string  `json:"text"`
	Author    string  `json:"author"`
	EditionID string  `json:"edition_id"`
	Lang      string  `json:"lang"`
	Name      string  `json:"name"`
	URL       string  `json:"url"`
	Score     float64 `json:"score"`
}

// PostResult is a community reflection, possibly referencing several verses.
type PostResult struct {
	Type         string   `json:"type"`
	PostID       string   `json:"post_id"`
	ReflectionID string   `json:"reflection_id"`
	Text         string   `json:"text"`
	Username     string   `json:"username"`
	DisplayName  string   `json:"display_name"`
	AyahKeys     []string `json:"ayah_keys"`
	Surahs       []int    `json:"surahs"`
	Category     string   `json:"category"`
	LikesCount   int      `json:"likes_count"`
	CreatedAt    string   `json:"created_at"`
	URL          string   `json:"url"`
	Score        float64  `json:"score"`
}

// CourseResult is a course lesson hit.
type CourseResult struct {
	Type        string   `json:"type"`
	CourseID    string   `json:"course_id"`
	CourseTitle string   `json:"course_title"`
	CourseSlug  string   `json:"course_slug"`
	LessonID    string   `json:"lesson_id"`
	LessonTitle string   `json:"lesson_title"`
	LessonSlug  string   `json:"lesson_slug"`
	Text        string   `json:"text"`
	Lang        string   `json:"lang"`
	Tags        []string `json:"tags"`
	URL         string   `json:"url"`
	Score       float64  `json:"score"`
}

// ArticleResult is an article hit.
type ArticleResult struct {
	Type  string  `json:"type"`
	Title string  `json:"title"`
	Slug  string  `json:"slug"`
	Text  string  `json:"text"`
	URL   string  `json:"url"`
	Score float64 `json:"score"`
}

// AyahResult is the consolidated per-verse bundle. Courses and articles
// never attach to a verse, but the wire format carries both as empty
// arrays for every aggregate.
type AyahResult struct {
	AyahKey      string              `json:"ayah_key"`
	Surah        int                 `json:"surah"`
	Ayah         int                 `json:"ayah"`
	Quran        *QuranResult        `json:"quran"`
	Translations []TranslationResult `json:"translations"`
	Tafsirs      []TafsirResult      `json:"tafsirs"`
	Posts        []PostResult        `json:"posts"`
	Courses      []CourseResult      `json:"courses"`
	Articles     []ArticleResult     `json:"articles"`
	TopScore     float64             `json:"topScore"`
}

// SearchRequest is the inbound search request.
type SearchRequest struct {
	Query           string `json:"query"`
	Spaces          string `json:"spaces"`
	Language        string `json:"language"`
	Limit           int    `json:"limit"`
	IncludeOverview bool   `json:"includeOverview"`
}

// SearchResponse is the consolidated search response.
type SearchResponse struct {
	Query        string       `json:"query"`
	Overview     string       `json:"overview,omitempty"`
	DirectHits   []any        `json:"directHits"`
	AyahResults  []AyahResult `json:"ayahResults"`
	TotalResults int          `json:"totalResults"`
}
