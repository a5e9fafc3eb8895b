package feed

import (
	"testing"
)

func TestPageTypeFromTypology(t *testing.T) {
	tests := []struct {
		typology string
		expected PageType
	}{
		{"film", PageTypeFilm},
		{"Fiction", PageTypeFilm},
		{"Programmi Radio", PageTypeProgram},
		{"informazione notiziari", PageTypeProgram},
		{"SERIE AUDIO", PageTypeSeries},
		{"  serie audio ", PageTypeSeries},
		{"audiolibri", PageTypeGenre},
		{"", PageTypeGenre},
		{"serie", PageTypeGenre},
	}

	for _, tt := range tests {
		t.Run(tt.typology, func(t *testing.T) {
			if got := PageTypeFromTypology(tt.typology); got != tt.expected {
				t.Errorf("PageTypeFromTypology(%q) = %s, expected %s", tt.typology, got, tt.expected)
			}
		})
	}
}

func TestParsePageTypes(t *testing.T) {
	set, err := ParsePageTypes([]string{"SERIES,genre", "PROGRAMMA"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	for _, expected := range []PageType{PageTypeSeries, PageTypeGenre, PageTypeProgram} {
		if !set.Contains(expected) {
			t.Errorf("Expected set to contain %s", expected)
		}
	}
	if set.Contains(PageTypeFilm) {
		t.Error("Expected set not to contain FILM")
	}

	names := set.Strings()
	if len(names) != 3 || names[0] != "GENRE" || names[1] != "PROGRAM" || names[2] != "SERIES" {
		t.Errorf("Unexpected names: %v", names)
	}
}

func TestParsePageTypesInvalid(t *testing.T) {
	if _, err := ParsePageTypes([]string{"GENRE,PODCAST"}); err == nil {
		t.Error("Expected error for unknown type")
	}
	if _, err := ParsePageTypes([]string{" , "}); err == nil {
		t.Error("Expected error for empty list")
	}
}

func TestPageTypeSetAccepts(t *testing.T) {
	wanted := NewPageTypeSet(PageTypeFilm)

	if !wanted.Accepts(PageTypeFilm) {
		t.Error("Expected FILM to be accepted")
	}
	if !wanted.Accepts(PageTypeSeries) {
		t.Error("Expected SERIES to be accepted regardless of the filter")
	}
	if wanted.Accepts(PageTypeGenre) {
		t.Error("Expected GENRE to be rejected")
	}
	if wanted.Accepts(PageTypeProgram) {
		t.Error("Expected PROGRAM to be rejected")
	}
}
