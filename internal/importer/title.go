package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const maxPageSize = 1 << 20

// TitleFetcher looks up the title of a web page, for bookmarks added without one.
type TitleFetcher struct {
	client *http.Client
}

func NewTitleFetcher() *TitleFetcher {
	return &TitleFetcher{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Title fetches targetURL and returns its <title>, falling back to og:title.
func (f *TitleFetcher) Title(ctx context.Context, targetURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s returned status %d", targetURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	}
	if title == "" {
		return "", fmt.Errorf("%s has no title", targetURL)
	}
	return strings.Join(strings.Fields(title), " "), nil
}

// TitleOrURL returns the page title, or targetURL when it cannot be fetched.
func (f *TitleFetcher) TitleOrURL(ctx context.Context, targetURL string) string {
	title, err := f.Title(ctx, targetURL)
	if err != nil {
		return targetURL
	}
	return title
}
