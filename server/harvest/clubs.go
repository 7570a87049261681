package harvest

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/uwnexus/watsnew/server/ingest"
)

// ClubDirectoryBaseURL is the student union club directory.
const ClubDirectoryBaseURL = "https://clubs.wusa.ca"

// ParseClubListing extracts club detail-page URLs from a directory listing
// page. The listing links each club through a "Learn More" anchor.
func ParseClubListing(r io.Reader, baseURL string) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var urls []string
	seen := make(map[string]struct{})
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if strings.EqualFold(strings.TrimSpace(nodeText(n)), "learn more") {
				if href := attr(n, "href"); href != "" {
					full := href
					if !strings.HasPrefix(href, "http") {
						full = strings.TrimRight(baseURL, "/") + href
					}
					if _, dup := seen[full]; !dup {
						seen[full] = struct{}{}
						urls = append(urls, full)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return urls, nil
}

// ParseClubPage extracts a club record from a detail page. The club name is
// the first h1 (h2 as fallback) and the description is the text following
// the "Who we are" heading. A missing name yields a record that fails
// ingestion validation, which is the intended drop path.
func ParseClubPage(r io.Reader, pageURL string) (ingest.RawRecord, error) {
	record := ingest.RawRecord{
		Link:        pageURL,
		SourceLabel: "Uncategorized",
		ItemType:    "club",
	}

	doc, err := html.Parse(r)
	if err != nil {
		return record, err
	}

	var h1, h2 string
	var descParts []string
	var afterWhoWeAre bool

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h1":
				if h1 == "" {
					h1 = strings.TrimSpace(nodeText(n))
				}
			case "h2", "h3":
				text := strings.TrimSpace(nodeText(n))
				if n.Data == "h2" && h2 == "" {
					h2 = text
				}
				if strings.EqualFold(text, "who we are") {
					afterWhoWeAre = true
					return
				}
			case "p":
				if afterWhoWeAre {
					if text := strings.TrimSpace(nodeText(n)); text != "" {
						descParts = append(descParts, text)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	record.Title = h1
	if record.Title == "" {
		record.Title = h2
	}
	record.Description = strings.Join(descParts, " ")
	return record, nil
}

// nodeText concatenates the text content of a node's subtree.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// attr returns the value of the named attribute.
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
