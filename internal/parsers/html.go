package parsers

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"challan-service/pkg/errors"
)

// readHTMLTable reads the first <table> of an HTML document. The ESIC portal
// serves its employee list as HTML with an .xls extension.
func readHTMLTable(r io.Reader, source string, opts SheetOptions) (*Table, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidFormat, source, 0, "", "", err)
	}

	tableNode := findFirst(doc, atom.Table)
	if tableNode == nil {
		return nil, errors.ParseError(
			errors.CodeInvalidFormat,
			source,
			0,
			"table",
			"",
			fmt.Errorf("no <table> element found"),
		).WithSuggestion("download the employee list again from the ESIC portal")
	}

	var grid [][]string
	collectRows(tableNode, &grid)

	return fromGrid(source, "", grid, opts)
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

// collectRows walks table sections without descending into nested tables
func collectRows(n *html.Node, grid *[][]string) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Thead, atom.Tbody, atom.Tfoot:
			collectRows(c, grid)
		case atom.Tr:
			var row []string
			for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
				if cell.Type == html.ElementNode && (cell.DataAtom == atom.Td || cell.DataAtom == atom.Th) {
					row = append(row, cellText(cell))
				}
			}
			*grid = append(*grid, row)
		}
	}
}

func cellText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteByte(' ')
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
