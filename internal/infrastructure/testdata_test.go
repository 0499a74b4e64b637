package infrastructure

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/khinsider-go/internal/domain"
)

// fakeFetcher serves canned pages keyed by URL and records every fetch
type fakeFetcher struct {
	pages   map[string]string
	fetched []string
}

func (f *fakeFetcher) FetchText(ctx context.Context, url string) (string, error) {
	f.fetched = append(f.fetched, url)
	body, ok := f.pages[url]
	if !ok {
		return "", &domain.NetworkError{URL: url, Err: fmt.Errorf("unexpected status 404 Not Found")}
	}
	return body, nil
}

// catalogPage renders a catalog page the way the site lays out its song list
func catalogPage(hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>\n<table id=\"songlist\">\n")
	b.WriteString("<tr id=\"songlist_header\"><th>Song Name</th></tr>\n")
	for _, href := range hrefs {
		fmt.Fprintf(&b, "<tr>\n  <td class=\"clickable-row\"><a href=\"%s\">Track</a></td>\n", href)
		fmt.Fprintf(&b, "  <td class=\"clickable-row\"><a href=\"%s\">3:04</a></td>\n</tr>\n", href)
	}
	b.WriteString("<tr id=\"songlist_footer\"><th>Total</th></tr>\n</table>\n</body></html>")
	return b.String()
}

// detailPage renders an item page with an audio element
func detailPage(src string) string {
	return fmt.Sprintf("<html><body><p>Track</p>\n<audio id=\"audio\" controls src=\"%s\"></audio>\n</body></html>", src)
}
