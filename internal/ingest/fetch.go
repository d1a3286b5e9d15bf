package ingest

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// textFetcher retrieves full article text via HTTP + readability extraction,
// for feeds whose entries only carry a teaser summary.
type textFetcher struct {
	client *http.Client
}

func newTextFetcher(timeout time.Duration) *textFetcher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &textFetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// fetch returns the readable text of the page, or "" when nothing substantial
// could be extracted. Failures are soft; the caller keeps the feed summary.
func (f *textFetcher) fetch(pageURL string) string {
	req, err := http.NewRequest("GET", pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "contentforge/1.0 (idea importer)")

	resp, err := f.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Printf("HTTP %d fetching %s", resp.StatusCode, pageURL)
		return ""
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}

	parsedURL, _ := url.Parse(pageURL)
	article, err := readability.FromReader(strings.NewReader(string(bodyBytes)), parsedURL)
	if err != nil {
		return ""
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) > 100 {
		return text
	}
	return ""
}
