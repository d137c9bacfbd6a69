package domain

import (
	"reflect"
	"testing"
)

func TestParseSpaceType(t *testing.T) {
	tests := []struct {
		raw  string
		want SpaceType
		ok   bool
	}{
		{"quran", SpaceQuran, true},
		{"QURAN", SpaceQuran, true},
		{"translation", SpaceTranslation, true},
		{"translations", SpaceTranslation, true},
		{"Tafsirs", SpaceTafsir, true},
		{" posts ", SpacePost, true},
		{"courses", SpaceCourse, true},
		{"article", SpaceArticle, true},
		{"unknown", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseSpaceType(tt.raw)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseSpaceType(%q) = (%q, %v), want (%q, %v)",
					tt.raw, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseSpaceList(t *testing.T) {
	got := ParseSpaceList("quran, tafsirs,quran,bogus")
	want := []SpaceType{SpaceQuran, SpaceTafsir}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseSpaceList = %v, want %v", got, want)
	}
}

func TestParseSpaceList_EmptySelectsAll(t *testing.T) {
	for _, raw := range []string{"", "nope,also-nope", " , "} {
		got := ParseSpaceList(raw)
		if !reflect.DeepEqual(got, AllSpaceTypes()) {
			t.Errorf("ParseSpaceList(%q) = %v, want all space types", raw, got)
		}
	}
}
