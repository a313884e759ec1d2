package graph

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// ExtractCanonicalLink returns the page's declared canonical URL: the
// href of the first <link rel="canonical"> element, resolved against
// baseURL. It returns "" when the document declares none or cannot be
// parsed. The result is not canonicalized; pass it through
// CanonicalizeURL before comparing.
func ExtractCanonicalLink(htmlContent, baseURL string) string {
	if strings.TrimSpace(htmlContent) == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	href := findCanonicalHref(doc)
	if href == "" {
		return ""
	}

	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return href
	}
	resolved, err := base.Parse(href)
	if err != nil {
		return href
	}
	return resolved.String()
}

func findCanonicalHref(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "link" {
		var rel, href string
		for _, attr := range n.Attr {
			switch strings.ToLower(attr.Key) {
			case "rel":
				rel = strings.ToLower(attr.Val)
			case "href":
				href = strings.TrimSpace(attr.Val)
			}
		}
		for _, token := range strings.Fields(rel) {
			if token == "canonical" && href != "" {
				return href
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findCanonicalHref(child); found != "" {
			return found
		}
	}
	return ""
}
