package textquery

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/usestring/hyper-mcp/pkg/contenttype"
)

// queryCSS returns the trimmed text of each element matching selector.
// Elements without text are skipped.
func queryCSS(body []byte, selector string, maxResults int) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	c := newCollector(maxResults)
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return true
		}
		return c.add(text)
	})
	return c.result(), nil
}

func validateXPath(expression string) error {
	if _, err := xpath.Compile(expression); err != nil {
		return fmt.Errorf("invalid XPath expression: %w", err)
	}
	return nil
}

// queryXPath evaluates expression against an XML document, or an HTML one
// when format says so, returning the trimmed inner text of each node.
func queryXPath(body []byte, format contenttype.Format, expression string, maxResults int) (*Result, error) {
	var texts []string
	if format == contenttype.FormatHTML {
		doc, err := htmlquery.Parse(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("parse HTML: %w", err)
		}
		nodes, err := htmlquery.QueryAll(doc, expression)
		if err != nil {
			return nil, fmt.Errorf("invalid XPath expression: %w", err)
		}
		for _, n := range nodes {
			texts = append(texts, htmlquery.InnerText(n))
		}
	} else {
		doc, err := xmlquery.Parse(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("parse XML: %w", err)
		}
		nodes, err := xmlquery.QueryAll(doc, expression)
		if err != nil {
			return nil, fmt.Errorf("invalid XPath expression: %w", err)
		}
		for _, n := range nodes {
			texts = append(texts, n.InnerText())
		}
	}

	c := newCollector(maxResults)
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !c.add(t) {
			break
		}
	}
	return c.result(), nil
}
