package agent

import (
	"context"
	"strings"

	"golang.org/x/net/html"

	"github.com/deckshot/deckshot/pkg/capture/channel"
)

// ContentSurface extends the channel surface with access to the page's
// serialized HTML, used for the out-of-page affordance scan.
type ContentSurface interface {
	channel.Surface
	Content(ctx context.Context) (string, error)
}

// ProbePage answers GET_PAGE_INFO, cross-checking the in-page agent's
// affordance report against an independent scan of the serialized HTML.
// The scan can only add affordances, never remove them: the agent sees
// live computed styles, the scan sees markup the agent's fixed selector
// list might miss.
func (c *Client) ProbePage(ctx context.Context, s ContentSurface) (PageInfo, error) {
	info, err := c.PageInfo(ctx, s)
	if err != nil {
		return PageInfo{}, err
	}
	if !info.HasNavigationAffordance {
		if raw, contentErr := s.Content(ctx); contentErr == nil {
			info.HasNavigationAffordance = ScanAffordance(raw)
		}
	}
	return info, nil
}

// affordanceWords mark a control as an advance affordance when found in
// its attributes or text.
var affordanceWords = []string{"next", "advance", "forward"}

// ScanAffordance reports whether the HTML contains a plausible
// next/advance control. It parses tolerantly; malformed markup never
// fails, it just yields fewer matches.
func ScanAffordance(rawHTML string) bool {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return false
	}
	return scanNode(doc)
}

func scanNode(n *html.Node) bool {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "button", "a":
			if nodeLooksLikeAdvance(n) {
				return true
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if scanNode(child) {
			return true
		}
	}
	return false
}

func nodeLooksLikeAdvance(n *html.Node) bool {
	for _, attr := range n.Attr {
		switch attr.Key {
		case "rel":
			if strings.EqualFold(attr.Val, "next") {
				return true
			}
		case "aria-label", "class", "id", "data-testid", "title":
			if containsAffordanceWord(attr.Val) {
				return true
			}
		}
	}
	return containsAffordanceWord(textOf(n))
}

func containsAffordanceWord(s string) bool {
	lower := strings.ToLower(s)
	if strings.Contains(lower, "prev") {
		return false
	}
	for _, word := range affordanceWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}
