package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"time"
)

const (
	nsITunes = "http://www.itunes.com/dtds/podcast-1.0.dtd"
	nsAtom   = "http://www.w3.org/2005/Atom"
)

// Generator renders a Feed as RSS 2.0 with iTunes extensions. Output depends
// only on the feed, so converting the same snapshot twice is byte-identical.
type Generator struct {
	version string
}

func NewGenerator(version string) *Generator {
	return &Generator{version: version}
}

func (g *Generator) Run(feed *Feed) ([]byte, error) {
	if feed == nil {
		return nil, fmt.Errorf("feed is nil")
	}

	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(fmt.Sprintf(`<rss version="2.0" xmlns:itunes="%s" xmlns:atom="%s">`, nsITunes, nsAtom))
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", feed.Title, 4)
	g.writeElement(&buf, "link", feed.URL, 4)
	g.writeElement(&buf, "description", feed.Description, 4)
	g.writeElement(&buf, "language", feed.Language, 4)

	if !feed.UpdatedAt.IsZero() {
		g.writeElement(&buf, "pubDate", feed.UpdatedAt.Format(time.RFC1123Z), 4)
	}
	if latest := latestUpdate(feed.Items); !latest.IsZero() {
		g.writeElement(&buf, "lastBuildDate", latest.Format(time.RFC1123Z), 4)
	}
	g.writeElement(&buf, "generator", fmt.Sprintf("RaiPlaySound-RSS/%s", g.version), 4)

	if feed.ImageURL != "" {
		buf.WriteString("    <image>\n")
		g.writeElement(&buf, "url", feed.ImageURL, 6)
		g.writeElement(&buf, "title", feed.Title, 6)
		g.writeElement(&buf, "link", feed.URL, 6)
		buf.WriteString("    </image>\n")
		g.writeEmpty(&buf, "itunes:image", "href", feed.ImageURL, 4)
	}

	g.writeElement(&buf, "itunes:author", feed.Author, 4)
	if feed.OwnerEmail != "" {
		buf.WriteString("    <itunes:owner>\n")
		g.writeElement(&buf, "itunes:email", feed.OwnerEmail, 6)
		buf.WriteString("    </itunes:owner>\n")
	}

	for _, category := range feed.Categories {
		if category != "" {
			g.writeEmpty(&buf, "itunes:category", "text", category, 4)
		}
	}

	for _, item := range feed.Items {
		g.writeItem(&buf, item)
	}

	buf.WriteString("  </channel>\n</rss>\n")

	return buf.Bytes(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, item Item) {
	buf.WriteString("    <item>\n")

	g.writeElement(buf, "title", item.Title, 6)
	g.writeElement(buf, "link", item.Link, 6)

	if item.GUID != "" {
		buf.WriteString(`      <guid isPermaLink="false">`)
		xml.EscapeText(buf, []byte(item.GUID))
		buf.WriteString("</guid>\n")
	}

	if !item.UpdatedAt.IsZero() {
		g.writeElement(buf, "pubDate", item.UpdatedAt.Format(time.RFC1123Z), 6)
	}
	g.writeElement(buf, "description", item.Description, 6)

	if item.EnclosureURL != "" {
		buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" type=\"%s\" />\n",
			html.EscapeString(item.EnclosureURL),
			html.EscapeString(item.EnclosureType)))
	}

	g.writeElement(buf, "itunes:title", item.Title, 6)
	g.writeElement(buf, "itunes:summary", item.Description, 6)
	g.writeElement(buf, "itunes:duration", item.Duration, 6)
	if item.Season != "" && item.Episode != "" {
		g.writeElement(buf, "itunes:season", item.Season, 6)
		g.writeElement(buf, "itunes:episode", item.Episode, 6)
	}
	if item.ImageURL != "" {
		g.writeEmpty(buf, "itunes:image", "href", item.ImageURL, 6)
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) writeEmpty(buf *bytes.Buffer, tag, attr, value string, indent int) {
	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}
	buf.WriteString(fmt.Sprintf("<%s %s=\"%s\" />\n", tag, attr, html.EscapeString(value)))
}
