package loader

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// sniffLen is how much of a source is inspected for HTML markers.
const sniffLen = 2048

// looksLikeHTML reports whether the start of data is an HTML document.
func looksLikeHTML(data []byte) bool {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	head = bytes.ToLower(head)
	return bytes.Contains(head, []byte("<html")) || bytes.Contains(head, []byte("<!doctype"))
}

// pageTitle returns the trimmed <title> of an HTML document, or "".
func pageTitle(data []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
}
