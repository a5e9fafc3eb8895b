package feed

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/lysyi3m/raiplaysound-rss/app/catalog"
)

const enclosureType = "audio/mpeg"

type Builder struct {
	publisher Publisher
}

func NewBuilder(publisher Publisher) *Builder {
	return &Builder{publisher: publisher}
}

// Run maps a validated page into a feed. onPlaylist is called, in source
// order, for every card linking to a nested playlist.
func (b *Builder) Run(pageURL string, page *catalog.Page, onPlaylist func(link string) error) (*Feed, error) {
	info := page.PodcastInfo

	imageURL, err := resolveURL(pageURL, info.Image)
	if err != nil {
		return nil, fmt.Errorf("invalid image URL: %w", err)
	}

	feed := &Feed{
		Name:        NameFromURL(pageURL),
		URL:         pageURL,
		PageType:    PageTypeFromTypology(info.Typology),
		Title:       page.Title,
		Description: info.Description,
		ImageURL:    imageURL,
		Author:      b.publisher.Author,
		Language:    b.publisher.Language,
		OwnerEmail:  b.publisher.OwnerEmail,
		Categories:  collectCategories(info),
	}
	if strings.TrimSpace(feed.Description) == "" {
		feed.Description = page.Title
	}

	feed.UpdatedAt = ParseCatalogDate(page.Block.UpdateDate)
	if feed.UpdatedAt.IsZero() && page.TrackInfo != nil {
		feed.UpdatedAt = ParseCatalogDate(page.TrackInfo.Date)
	}

	for i := range page.Block.Cards {
		card := &page.Block.Cards[i]

		if strings.Contains(card.Weblink, "/playlist/") && onPlaylist != nil {
			if err := onPlaylist(card.Weblink); err != nil {
				return nil, err
			}
		}

		if !card.HasAudio() {
			continue
		}

		item, err := b.buildItem(pageURL, card)
		if err != nil {
			return nil, fmt.Errorf("card %s: %w", card.UniqueName, err)
		}
		feed.Items = append(feed.Items, item)
	}

	if feed.UpdatedAt.IsZero() && len(feed.Items) > 0 {
		feed.UpdatedAt = feed.Items[0].UpdatedAt
	}

	return feed, nil
}

func (b *Builder) buildItem(pageURL string, card *catalog.Card) (Item, error) {
	item := Item{
		GUID:          b.publisher.GUIDPrefix + card.UniqueName,
		Title:         card.TopTitle,
		Description:   card.Description,
		UpdatedAt:     ParseCatalogDate(card.CreateDate + " " + card.CreateTime),
		Duration:      card.Audio.Duration.String(),
		EnclosureType: enclosureType,
	}
	if strings.TrimSpace(item.Description) == "" {
		item.Description = card.Title
	}

	link := card.Weblink
	if card.TrackInfo != nil && card.TrackInfo.PageURL != "" {
		link = card.TrackInfo.PageURL
	}
	var err error
	if item.Link, err = resolveURL(pageURL, link); err != nil {
		return Item{}, fmt.Errorf("invalid link: %w", err)
	}
	if item.ImageURL, err = resolveURL(pageURL, card.Image); err != nil {
		return Item{}, fmt.Errorf("invalid image URL: %w", err)
	}

	if item.EnclosureURL, err = resolveURL(pageURL, card.Audio.URL); err != nil {
		return Item{}, fmt.Errorf("invalid audio URL: %w", err)
	}
	if card.DownloadableAudio != nil && card.DownloadableAudio.URL != "" {
		downloadURL, err := resolveURL(pageURL, card.DownloadableAudio.URL)
		if err != nil {
			return Item{}, fmt.Errorf("invalid downloadable audio URL: %w", err)
		}
		item.EnclosureURL = forceHTTPS(downloadURL)
	}

	// Half a season/episode pair would break ordering, keep both or neither.
	if card.Season != "" && card.Episode != "" {
		item.Season = card.Season.String()
		item.Episode = card.Episode.String()
	}

	return item, nil
}

func collectCategories(info *catalog.PodcastInfo) []string {
	var categories []string
	seen := make(map[string]struct{})
	add := func(names []catalog.Named) {
		for _, n := range names {
			if _, ok := seen[n.Name]; ok {
				continue
			}
			seen[n.Name] = struct{}{}
			categories = append(categories, n.Name)
		}
	}

	add(info.Genres)
	add(info.Subgenres)
	add(info.DFP.EscapedGenres)
	add(info.DFP.EscapedTypology)
	if info.Metadata != nil {
		add(info.Metadata.ProductSources)
	}

	return categories
}

func resolveURL(base, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

func forceHTTPS(raw string) string {
	if strings.HasPrefix(raw, "http:") {
		return "https:" + strings.TrimPrefix(raw, "http:")
	}
	return raw
}

// NameFromURL returns the last path segment of a page URL.
func NameFromURL(pageURL string) string {
	trimmed := strings.TrimRight(pageURL, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// FileNameFromURL returns the feed file name for a page URL.
func FileNameFromURL(pageURL string) string {
	return NameFromURL(pageURL) + ".xml"
}
