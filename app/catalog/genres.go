package catalog

import (
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// GenreURLs lists the genre hub pages linked from the genre index.
func (c *Client) GenreURLs(ctx context.Context, indexURL string) ([]string, error) {
	doc, base, err := c.fetchDocument(ctx, indexURL)
	if err != nil {
		return nil, err
	}

	var urls []string
	doc.Find("a.block").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			if resolved := resolve(base, href); resolved != "" {
				urls = append(urls, resolved)
			}
		}
	})

	return urls, nil
}

// ProgramURLs lists the root pages (one per article) of a genre hub page.
func (c *Client) ProgramURLs(ctx context.Context, genreURL string) ([]string, error) {
	doc, base, err := c.fetchDocument(ctx, genreURL)
	if err != nil {
		return nil, err
	}

	var urls []string
	doc.Find("article").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Find("a").First().Attr("href")
		if !ok {
			return
		}
		if resolved := resolve(base, href); resolved != "" {
			urls = append(urls, resolved)
		}
	})

	return urls, nil
}

func (c *Client) fetchDocument(ctx context.Context, target string) (*goquery.Document, *url.URL, error) {
	resp, err := c.get(ctx, target)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	// Links are relative to wherever redirects ended up.
	return doc, resp.Request.URL, nil
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
