package petfriends

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/petfriends-verifier/pkg/httpclient"
)

const maxSnippetLen = 512

// Decode turns a raw response into its status code and JSON object body.
// A payload that is not a JSON object yields an empty, non-nil Body; the
// status is returned either way.
func Decode(resp httpclient.Response) (int, Body) {
	if resp == nil {
		return 0, Body{}
	}
	return resp.StatusCode(), decodeBody(resp.Body())
}

func decodeBody(raw []byte) Body {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var body Body
	if err := dec.Decode(&body); err != nil || body == nil {
		return Body{}
	}
	// Anything after the object, even a stray closing bracket, is malformed.
	if _, err := dec.Token(); err != io.EOF {
		return Body{}
	}
	return body
}

// Describe renders a short diagnostic snippet of a raw payload for logs.
// HTML error pages are reduced to their title and first paragraph.
func Describe(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return "<empty>"
	}
	if looksLikeHTML(s) {
		if summary := htmlSummary(raw); summary != "" {
			return truncate(summary)
		}
	}
	return truncate(s)
}

func looksLikeHTML(s string) bool {
	prefix := strings.ToLower(s)
	if len(prefix) > 64 {
		prefix = prefix[:64]
	}
	return strings.HasPrefix(prefix, "<!doctype html") || strings.HasPrefix(prefix, "<html")
}

func htmlSummary(raw []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	para := strings.Join(strings.Fields(doc.Find("p").First().Text()), " ")
	switch {
	case title != "" && para != "":
		return title + ": " + para
	case title != "":
		return title
	default:
		return para
	}
}

func truncate(s string) string {
	if len(s) > maxSnippetLen {
		return s[:maxSnippetLen] + "..."
	}
	return s
}
