// Package ingest imports idea candidates from RSS/Atom feeds. Each feed entry
// becomes an unused idea tagged with the feed's category; the pipeline treats
// them like any manually added idea.
package ingest

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/TobiSchelling/contentforge/internal/config"
	"github.com/TobiSchelling/contentforge/internal/database"
	"github.com/TobiSchelling/contentforge/internal/models"
	"github.com/TobiSchelling/contentforge/internal/sanitize"
)

const maxPerFeed = 20

// Result summarizes an import run.
type Result struct {
	Imported int
	Skipped  int
	Failed   int
}

// Importer pulls feed entries into the idea queue.
type Importer struct {
	db      *database.DB
	cfg     config.Ingest
	fetcher *textFetcher
}

// New creates a feed importer. Full-text fetching is optional and off by
// default; feed summaries are usually enough signal for curation.
func New(db *database.DB, cfg config.Ingest) *Importer {
	imp := &Importer{db: db, cfg: cfg}
	if cfg.FetchFullText {
		imp.fetcher = newTextFetcher(15 * time.Second)
	}
	return imp
}

// ImportAll parses every configured feed and stores new entries as ideas.
// Entries with private or non-HTTP URLs are skipped.
func (imp *Importer) ImportAll() *Result {
	result := &Result{}
	parser := gofeed.NewParser()

	for _, fc := range imp.cfg.Feeds {
		name := fc.Name
		if name == "" {
			name = extractSourceName(fc.URL)
		}
		category := fc.Category
		if category == "" {
			category = imp.cfg.DefaultCategory
		}

		imported, err := imp.importFeed(parser, fc.URL, name, category, result)
		if err != nil {
			log.Printf("failed to parse feed %s: %v", fc.URL, err)
			result.Failed++
			continue
		}
		log.Printf("imported %d ideas from %s", imported, name)
	}

	return result
}

func (imp *Importer) importFeed(parser *gofeed.Parser, feedURL, source, category string, result *Result) (int, error) {
	if !sanitize.ValidURL(feedURL) {
		return 0, fmt.Errorf("feed URL rejected: %s", feedURL)
	}

	feed, err := parser.ParseURL(feedURL)
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, item := range feed.Items {
		if imported >= maxPerFeed {
			break
		}

		idea := imp.ideaFromItem(item, source, category)
		if idea == nil {
			result.Skipped++
			continue
		}

		if err := imp.db.InsertIdea(*idea); err != nil {
			// Likely a duplicate id collision; rare enough to just log.
			log.Printf("failed to store idea from %s: %v", item.Link, err)
			result.Failed++
			continue
		}
		imported++
		result.Imported++
	}

	return imported, nil
}

// ideaFromItem converts a feed entry into an idea, or nil if the entry lacks
// usable text or points somewhere we refuse to fetch from.
func (imp *Importer) ideaFromItem(item *gofeed.Item, source, category string) *models.Idea {
	link := item.Link
	if link == "" {
		link = item.GUID
	}
	if link != "" && !sanitize.ValidURL(link) {
		log.Printf("skipping entry with blocked URL: %s", link)
		return nil
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil
	}

	text := summaryText(item)
	if imp.fetcher != nil && link != "" {
		if full := imp.fetcher.fetch(link); full != "" {
			text = full
		}
	}
	if text == "" {
		text = title
	}

	// Feed text goes through the same validation as typed-in ideas; an
	// entry that trips the injection filters is dropped, not stored.
	ideaText := title + ": " + text
	clean, err := sanitize.UserInput(ideaText, "idea")
	if err != nil || clean == "" {
		log.Printf("skipping entry %q: %v", title, err)
		return nil
	}

	idea := models.NewIdea(clean, category, "feed:"+source)
	idea.Title = title
	return &idea
}

func summaryText(item *gofeed.Item) string {
	if item.Content != "" {
		return stripHTML(item.Content)
	}
	if item.Description != "" {
		return stripHTML(item.Description)
	}
	return ""
}

func stripHTML(text string) string {
	var result strings.Builder
	inTag := false
	for _, r := range text {
		if r == '<' {
			inTag = true
			result.WriteRune(' ')
			continue
		}
		if r == '>' {
			inTag = false
			continue
		}
		if !inTag {
			result.WriteRune(r)
		}
	}

	s := result.String()
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#39;", "'")

	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

func extractSourceName(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil {
		return feedURL
	}
	host := strings.ToLower(u.Hostname())

	for _, prefix := range []string{"www.", "blog.", "blogs.", "rss.", "feeds."} {
		host = strings.TrimPrefix(host, prefix)
	}

	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		name := parts[len(parts)-2]
		return strings.ToUpper(name[:1]) + name[1:]
	}
	if host == "" {
		return feedURL
	}
	return strings.ToUpper(host[:1]) + host[1:]
}
