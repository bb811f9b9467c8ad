package shape

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLOutline summarizes an HTML page: what it is about and the hooks a
// CSS or XPath query can use.
type HTMLOutline struct {
	Title   string            `json:"title,omitempty"`
	Meta    map[string]string `json:"meta,omitempty"`
	Tags    []TagCount        `json:"tags"`
	IDs     []string          `json:"ids,omitempty"`
	Classes []TagCount        `json:"classes,omitempty"`
	Forms   []HTMLForm        `json:"forms,omitempty"`
	Links   int               `json:"links"`
	Scripts int               `json:"scripts"`
}

// TagCount is a tag or class name with its number of occurrences.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// HTMLForm is a form and its named inputs.
type HTMLForm struct {
	Action string   `json:"action,omitempty"`
	Method string   `json:"method,omitempty"`
	Inputs []string `json:"inputs,omitempty"`
}

const maxClasses = 30

func inspectHTML(body []byte, maxIDs int) (*HTMLOutline, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	out := &HTMLOutline{
		Title:   strings.TrimSpace(doc.Find("title").First().Text()),
		Links:   doc.Find("a[href]").Length(),
		Scripts: doc.Find("script").Length(),
	}

	doc.Find("meta[name], meta[property]").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok {
			name, _ = s.Attr("property")
		}
		content, _ := s.Attr("content")
		if name == "" || content == "" {
			return
		}
		if out.Meta == nil {
			out.Meta = make(map[string]string)
		}
		out.Meta[name] = content
	})

	tags := make(map[string]int)
	classes := make(map[string]int)
	doc.Find("body *").Each(func(_ int, s *goquery.Selection) {
		tags[goquery.NodeName(s)]++
		if id, ok := s.Attr("id"); ok && id != "" && (maxIDs <= 0 || len(out.IDs) < maxIDs) {
			out.IDs = append(out.IDs, id)
		}
		if cls, ok := s.Attr("class"); ok {
			for _, c := range strings.Fields(cls) {
				classes[c]++
			}
		}
	})
	out.Tags = ranked(tags, 0)
	out.Classes = ranked(classes, maxClasses)

	doc.Find("form").Each(func(_ int, s *goquery.Selection) {
		form := HTMLForm{Method: strings.ToUpper(s.AttrOr("method", ""))}
		form.Action = s.AttrOr("action", "")
		s.Find("input[name], select[name], textarea[name]").Each(func(_ int, in *goquery.Selection) {
			form.Inputs = append(form.Inputs, in.AttrOr("name", ""))
		})
		out.Forms = append(out.Forms, form)
	})
	return out, nil
}

// ranked orders counts descending, then by name, keeping at most limit.
func ranked(counts map[string]int, limit int) []TagCount {
	out := make([]TagCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, TagCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
