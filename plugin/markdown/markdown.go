// Package markdown normalizes harvested descriptions before embedding.
// Harvest sources routinely return markdown-formatted snippets; embedding the
// raw markup skews similarity toward formatting tokens instead of content.
package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Service converts markdown to plain text.
type Service interface {
	// PlainText strips markdown syntax and returns the readable content.
	PlainText(source string) string
}

type service struct {
	md goldmark.Markdown
}

// NewService creates a markdown service.
func NewService() Service {
	return &service{
		md: goldmark.New(),
	}
}

func (s *service) PlainText(source string) string {
	src := []byte(source)
	doc := s.md.Parser().Parse(text.NewReader(src))

	var sb strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			// Separate block-level nodes with a space so headings and
			// paragraphs do not run together.
			if _, isBlock := n.(*ast.Paragraph); isBlock {
				sb.WriteByte(' ')
			} else if _, isHeading := n.(*ast.Heading); isHeading {
				sb.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.AutoLink:
			sb.Write(v.URL(src))
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(sb.String()), " ")
}
