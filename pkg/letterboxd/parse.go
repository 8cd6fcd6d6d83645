package letterboxd

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// parseWatchlistPage extracts the films from one watchlist page and the
// total page count from the pagination footer (0 or 1 when the list fits
// on a single page).
func parseWatchlistPage(r io.Reader) ([]Film, int, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, 0, err
	}

	var films []Film
	pages := 0

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "li" {
			switch {
			case hasClass(n, "griditem"):
				if f, ok := filmFromGridItem(n); ok {
					films = append(films, f)
				}
			case hasClass(n, "paginate-page"):
				pages++
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return films, pages, nil
}

// filmFromGridItem reads the film data attributes off the first div
// inside a grid item.
func filmFromGridItem(li *html.Node) (Film, bool) {
	div := findFirstElement(li, "div")
	if div == nil {
		return Film{}, false
	}

	f := Film{
		ID:   attr(div, "data-film-id"),
		Name: attr(div, "data-item-full-display-name"),
		Slug: attr(div, "data-item-slug"),
	}
	if f.ID == "" {
		return Film{}, false
	}
	return f, true
}

func findFirstElement(n *html.Node, name string) *html.Node {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == name {
			return child
		}
		if found := findFirstElement(child, name); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attr(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
