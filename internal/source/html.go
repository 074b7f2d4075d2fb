package source

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

type htmlRow struct {
	td     []string
	th     []string
	onlyTH bool
	anyTH  bool
}

// parseHTMLTable reads the first <table> of a page as a value grid.
// Only <td> cells are data. A leading row made only of <th> cells is kept as
// the header row when no later row has <th> cells; spreadsheet exports put
// column letters and row numbers in <th>, and those are dropped.
func parseHTMLTable(r io.Reader) ([][]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	table := findElement(doc, "table")
	if table == nil {
		return nil, errNoTable
	}

	var rows []htmlRow
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "table":
				if n != table {
					return
				}
			case "tr":
				rows = append(rows, readRow(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)

	if len(rows) == 0 {
		return nil, nil
	}
	keepHeader := rows[0].onlyTH
	for _, row := range rows[1:] {
		if row.anyTH {
			keepHeader = false
			break
		}
	}

	var values [][]string
	for i, row := range rows {
		switch {
		case i == 0 && keepHeader:
			values = append(values, row.th)
		case len(row.td) > 0:
			values = append(values, row.td)
		}
	}
	return values, nil
}

func readRow(tr *html.Node) htmlRow {
	var row htmlRow
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "td":
			row.td = append(row.td, cellText(c))
		case "th":
			row.th = append(row.th, cellText(c))
			row.anyTH = true
		}
	}
	row.onlyTH = row.anyTH && len(row.td) == 0
	return row
}

// cellText joins the visible text of a cell, skipping scripts and styles
func cellText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
