package domain

import "strings"

// SpaceType identifies one upstream content partition.
type SpaceType string

const (
	SpaceQuran       SpaceType = "quran"
	SpaceTranslation SpaceType = "translation"
	SpaceTafsir      SpaceType = "tafsir"
	SpacePost        SpaceType = "post"
	SpaceCourse      SpaceType = "course"
	SpaceArticle     SpaceType = "article"
)

// AllSpaceTypes returns every space type in declaration order.
func AllSpaceTypes() []SpaceType {
	return []SpaceType{
		SpaceQuran,
		SpaceTranslation,
		SpaceTafsir,
		SpacePost,
		SpaceCourse,
		SpaceArticle,
	}
}

// String returns the canonical API name.
func (s SpaceType) String() string { return string(s) }

// EnvKey returns the upper-case name used in per-type override keys.
func (s SpaceType) EnvKey() string { return strings.ToUpper(string(s)) }

// ParseSpaceType maps a raw name to a SpaceType. Matching is
// case-insensitive and accepts plural synonyms.
func ParseSpaceType(raw string) (SpaceType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "quran":
		return SpaceQuran, true
	case "translation", "translations":
		return SpaceTranslation, true
	case "tafsir", "tafsirs":
		return SpaceTafsir, true
	case "post", "posts":
		return SpacePost, true
	case "course", "courses":
		return SpaceCourse, true
	case "article", "articles":
		return SpaceArticle, true
	default:
		return "", false
	}
}

// ParseSpaceList parses a comma-separated list of space names. Unrecognized
// entries are dropped; an empty or fully unrecognized list selects all
// space types.
func ParseSpaceList(raw string) []SpaceType {
	seen := make(map[SpaceType]struct{})
	var selected []SpaceType
	for _, entry := range strings.Split(raw, ",") {
		st, ok := ParseSpaceType(entry)
		if !ok {
			continue
		}
		if _, dup := seen[st]; dup {
			continue
		}
		seen[st] = struct{}{}
		selected = append(selected, st)
	}
	if len(selected) == 0 {
		return AllSpaceTypes()
	}
	return selected
}
