package input

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Sentence length bounds for HTML input. Fragments below the minimum are
// navigation noise; chunks above the maximum are run-together boilerplate.
const (
	minSentenceLen = 8
	maxSentenceLen = 1000
)

// TextsFromHTML parses an HTML document and returns its visible text split
// into sentences.
func TextsFromHTML(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return splitSentences(visibleText(doc)), nil
}

// visibleText collects text nodes from HTML, skipping scripts/styles
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

// splitSentences splits text into sentences (simple heuristic)
func splitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			// Look ahead to avoid splitting on abbreviations
			if i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\t') {
				if sentence := strings.TrimSpace(current.String()); inBounds(sentence) {
					sentences = append(sentences, sentence)
				}
				current.Reset()
			}
		}
	}

	if current.Len() > 0 {
		if sentence := strings.TrimSpace(current.String()); inBounds(sentence) {
			sentences = append(sentences, sentence)
		}
	}

	return sentences
}

func inBounds(sentence string) bool {
	return len(sentence) >= minSentenceLen && len(sentence) <= maxSentenceLen
}
