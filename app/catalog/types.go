package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Catalog page document served at <page-url>.json

type Page struct {
	Title       string       `json:"title"`
	PodcastInfo *PodcastInfo `json:"podcast_info"`
	TabMenu     []Tab        `json:"tab_menu"`
	Block       *Block       `json:"block"`
	TrackInfo   *TrackInfo   `json:"track_info"`

	fields fieldSet
}

func (p *Page) UnmarshalJSON(data []byte) error {
	type page Page
	if err := json.Unmarshal(data, (*page)(p)); err != nil {
		return err
	}
	return p.fields.decode(data)
}

type PodcastInfo struct {
	Description string           `json:"description"`
	Image       string           `json:"image"`
	Typology    string           `json:"typology"`
	Genres      []Named          `json:"genres"`
	Subgenres   []Named          `json:"subgenres"`
	DFP         *DFP             `json:"dfp"`
	Metadata    *PodcastMetadata `json:"metadata"`

	fields fieldSet
}

func (i *PodcastInfo) UnmarshalJSON(data []byte) error {
	type podcastInfo PodcastInfo
	if err := json.Unmarshal(data, (*podcastInfo)(i)); err != nil {
		return err
	}
	return i.fields.decode(data)
}

type DFP struct {
	EscapedGenres   []Named `json:"escaped_genres"`
	EscapedTypology []Named `json:"escaped_typology"`
}

type PodcastMetadata struct {
	ProductSources []Named `json:"product_sources"`
}

type Named struct {
	Name string `json:"name"`
}

type Tab struct {
	ContentType string `json:"content_type"`
	Weblink     string `json:"weblink"`
}

type Block struct {
	UpdateDate string `json:"update_date"`
	Cards      []Card `json:"cards"`

	fields fieldSet
}

func (b *Block) UnmarshalJSON(data []byte) error {
	type block Block
	if err := json.Unmarshal(data, (*block)(b)); err != nil {
		return err
	}
	return b.fields.decode(data)
}

type Card struct {
	TopTitle          string     `json:"toptitle"`
	Title             string     `json:"title"`
	UniqueName        string     `json:"uniquename"`
	Description       string     `json:"description"`
	CreateDate        string     `json:"create_date"`
	CreateTime        string     `json:"create_time"`
	Weblink           string     `json:"weblink"`
	Image             string     `json:"image"`
	Audio             *Audio     `json:"audio"`
	DownloadableAudio *Audio     `json:"downloadable_audio"`
	TrackInfo         *TrackInfo `json:"track_info"`
	Season            FlexString `json:"season"`
	Episode           FlexString `json:"episode"`

	fields fieldSet
}

func (c *Card) UnmarshalJSON(data []byte) error {
	type card Card
	if err := json.Unmarshal(data, (*card)(c)); err != nil {
		return err
	}
	return c.fields.decode(data)
}

type Audio struct {
	URL      string     `json:"url"`
	Duration FlexString `json:"duration"`

	fields fieldSet
}

func (a *Audio) UnmarshalJSON(data []byte) error {
	type audio Audio
	if err := json.Unmarshal(data, (*audio)(a)); err != nil {
		return err
	}
	return a.fields.decode(data)
}

// fieldSet holds the keys a decoded object carried with a non-null value.
// A nil set belongs to a value built in code and reports every key present.
type fieldSet map[string]struct{}

func (s *fieldSet) decode(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	set := make(fieldSet, len(raw))
	for key, value := range raw {
		if !bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			set[key] = struct{}{}
		}
	}
	*s = set
	return nil
}

func (s fieldSet) has(key string) bool {
	if s == nil {
		return true
	}
	_, ok := s[key]
	return ok
}

type TrackInfo struct {
	PageURL string `json:"page_url"`
	Date    string `json:"date"`
}

// HasAudio reports whether the card carries a playable audio reference.
func (c *Card) HasAudio() bool {
	return c.Audio != nil && c.Audio.URL != ""
}

// FlexString decodes JSON strings and numbers alike; the catalog is not
// consistent about season, episode and duration values.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*s = ""
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*s = FlexString(value)
		return nil
	}

	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return fmt.Errorf("unsupported value %s", raw)
	}
	*s = FlexString(raw)
	return nil
}

func (s FlexString) String() string {
	return string(s)
}

// MissingFieldError reports a required field absent from a page document.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// Validate checks the fields the feed conversion cannot do without.
// product_sources and the dfp escaped lists are optional and never reported.
// Required string fields must be present but may be empty.
func (p *Page) Validate() error {
	if p.PodcastInfo == nil {
		return &MissingFieldError{Field: "podcast_info"}
	}
	if p.PodcastInfo.Genres == nil {
		return &MissingFieldError{Field: "podcast_info.genres"}
	}
	if p.PodcastInfo.Subgenres == nil {
		return &MissingFieldError{Field: "podcast_info.subgenres"}
	}
	if p.PodcastInfo.DFP == nil {
		return &MissingFieldError{Field: "podcast_info.dfp"}
	}
	if p.TabMenu == nil {
		return &MissingFieldError{Field: "tab_menu"}
	}
	if p.Block == nil {
		return &MissingFieldError{Field: "block"}
	}
	if p.Block.Cards == nil {
		return &MissingFieldError{Field: "block.cards"}
	}

	if !p.fields.has("title") {
		return &MissingFieldError{Field: "title"}
	}
	if !p.PodcastInfo.fields.has("image") {
		return &MissingFieldError{Field: "podcast_info.image"}
	}
	if !p.Block.fields.has("update_date") {
		return &MissingFieldError{Field: "block.update_date"}
	}

	for i, card := range p.Block.Cards {
		if !card.HasAudio() {
			continue
		}
		if card.UniqueName == "" {
			return &MissingFieldError{Field: fmt.Sprintf("block.cards[%d].uniquename", i)}
		}
		for _, key := range []string{"toptitle", "create_date", "create_time"} {
			if !card.fields.has(key) {
				return &MissingFieldError{Field: fmt.Sprintf("block.cards[%d].%s", i, key)}
			}
		}
		if !card.Audio.fields.has("duration") {
			return &MissingFieldError{Field: fmt.Sprintf("block.cards[%d].audio.duration", i)}
		}
	}

	return nil
}
