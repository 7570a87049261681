package v1

import (
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"
)

const feedItemLimit = 20

// Feed serves the most recently ingested items as an RSS feed, newest first.
func (s *APIV1Service) Feed(c echo.Context) error {
	items := s.Store.Catalog().Items()

	sorted := make([]int, len(items))
	for i := range sorted {
		sorted[i] = i
	}
	sort.SliceStable(sorted, func(a, b int) bool {
		return items[sorted[a]].FetchedAt.After(items[sorted[b]].FetchedAt)
	})
	if len(sorted) > feedItemLimit {
		sorted = sorted[:feedItemLimit]
	}

	feed := &feeds.Feed{
		Title:       "Wat's New",
		Link:        &feeds.Link{Href: baseURL(c)},
		Description: "Recently ingested clubs, events and opportunities",
		Created:     time.Now().UTC(),
	}
	for _, idx := range sorted {
		item := items[idx]
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       item.Title,
			Link:        &feeds.Link{Href: item.Link},
			Description: item.SourceLabel + " / " + item.ItemType,
			Created:     item.FetchedAt,
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		return writeError(c, err)
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

func baseURL(c echo.Context) string {
	scheme := c.Scheme()
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + c.Request().Host
}
