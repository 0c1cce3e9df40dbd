package template

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Load reads template text from a file.
//
// Plain text files are returned as-is. HTML files (as produced by rich-text
// editors exporting DOCX templates) are reduced to their visible text so the
// extractor only sees prose and placeholders.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return extractHTMLText(string(data))
	default:
		return string(data), nil
	}
}

// extractHTMLText strips markup from an HTML template, preserving paragraph
// breaks so the letter structure survives extraction.
func extractHTMLText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML template: %w", err)
	}

	doc.Find("script, style").Remove()

	var sb strings.Builder
	doc.Find("p, h1, h2, h3, h4, li, div").Each(func(_ int, sel *goquery.Selection) {
		// Skip containers whose text is covered by their children.
		if sel.Children().Is("p, h1, h2, h3, h4, li, div") {
			return
		}
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			sb.WriteString(text)
			sb.WriteString("\n\n")
		}
	})

	text := strings.TrimSpace(sb.String())
	if text == "" {
		// No block elements: fall back to the document's flat text.
		text = strings.TrimSpace(doc.Text())
	}

	return text, nil
}
