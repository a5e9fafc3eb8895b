package feed

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type PageType string

const (
	PageTypeGenre   PageType = "GENRE"
	PageTypeProgram PageType = "PROGRAM"
	PageTypeFilm    PageType = "FILM"
	PageTypeSeries  PageType = "SERIES"
)

var typologyFolder = cases.Lower(language.Italian)

// PageTypeFromTypology classifies a catalog typology label. Labels outside the
// known taxonomy fall back to GENRE.
func PageTypeFromTypology(typology string) PageType {
	switch typologyFolder.String(strings.TrimSpace(typology)) {
	case "film", "fiction":
		return PageTypeFilm
	case "programmi radio", "informazione notiziari":
		return PageTypeProgram
	case "serie audio":
		return PageTypeSeries
	default:
		return PageTypeGenre
	}
}

// ParsePageType accepts the type names, plus the Italian spellings of the
// original command line.
func ParsePageType(name string) (PageType, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "GENRE", "GENERE":
		return PageTypeGenre, nil
	case "PROGRAM", "PROGRAMMA":
		return PageTypeProgram, nil
	case "FILM":
		return PageTypeFilm, nil
	case "SERIES", "SERIE":
		return PageTypeSeries, nil
	default:
		return "", fmt.Errorf("unknown page type %q (valid: GENRE, PROGRAM, FILM, SERIES)", name)
	}
}

type PageTypeSet map[PageType]struct{}

func NewPageTypeSet(types ...PageType) PageTypeSet {
	set := make(PageTypeSet, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}

// ParsePageTypes parses a list of names, each of which may itself be a comma
// separated list.
func ParsePageTypes(names []string) (PageTypeSet, error) {
	set := make(PageTypeSet)
	for _, entry := range names {
		for _, name := range strings.Split(entry, ",") {
			if strings.TrimSpace(name) == "" {
				continue
			}
			t, err := ParsePageType(name)
			if err != nil {
				return nil, err
			}
			set[t] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("no page types given")
	}
	return set, nil
}

func (s PageTypeSet) Contains(t PageType) bool {
	_, ok := s[t]
	return ok
}

// Accepts reports whether a page of type t is converted. Series pages are
// containers of episodes and are always accepted.
func (s PageTypeSet) Accepts(t PageType) bool {
	return t == PageTypeSeries || s.Contains(t)
}

func (s PageTypeSet) Strings() []string {
	names := make([]string, 0, len(s))
	for t := range s {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return names
}
