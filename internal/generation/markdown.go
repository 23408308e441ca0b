package generation

import (
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/mexffff/PromptUzman/internal/prompt"
)

// markdown parses model responses; Linkify turns bare URLs into links.
var markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify))

func parse(src []byte) ast.Node {
	return markdown.Parser().Parse(text.NewReader(src))
}

// maxWrapperRunes bounds the prose around a fenced prompt ("İşte promptunuz:").
const maxWrapperRunes = 200

// ExtractPrompt unwraps a response that is one top-level fenced code block,
// optionally with a short lead-in or sign-off paragraph. Anything else, such
// as a prompt that itself contains example blocks, is returned whole and trimmed.
// An empty wrapping block yields "".
func ExtractPrompt(response string) string {
	src := []byte(response)
	var fence *ast.FencedCodeBlock
	wrapper := 0

	for n := parse(src).FirstChild(); n != nil; n = n.NextSibling() {
		switch block := n.(type) {
		case *ast.FencedCodeBlock:
			if fence != nil {
				return strings.TrimSpace(response)
			}
			fence = block
		case *ast.Paragraph:
			wrapper += utf8.RuneCount(linesText(block, src))
		default:
			return strings.TrimSpace(response)
		}
	}

	if fence == nil || wrapper > maxWrapperRunes {
		return strings.TrimSpace(response)
	}
	return strings.TrimSpace(string(linesText(fence, src)))
}

// linesText joins the raw source lines of a block node.
func linesText(n ast.Node, src []byte) []byte {
	var b []byte
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b = append(b, seg.Value(src)...)
	}
	return b
}

// ExtractSources returns the web links of a research response in document
// order. Duplicates are kept.
func ExtractSources(response string) []prompt.Source {
	src := []byte(response)
	sources := []prompt.Source{}

	_ = ast.Walk(parse(src), func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch link := n.(type) {
		case *ast.Link:
			uri := string(link.Destination)
			if isWebURI(uri) {
				title := strings.TrimSpace(nodeText(link, src))
				if title == "" {
					title = uri
				}
				sources = append(sources, prompt.Source{Title: title, URI: uri})
			}
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			if link.AutoLinkType != ast.AutoLinkURL {
				return ast.WalkContinue, nil
			}
			uri := string(link.URL(src))
			if isWebURI(uri) {
				sources = append(sources, prompt.Source{Title: string(link.Label(src)), URI: uri})
			}
		}
		return ast.WalkContinue, nil
	})
	return sources
}

// nodeText concatenates the inline text under n.
func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		default:
			b.WriteString(nodeText(c, src))
		}
	}
	return b.String()
}

func isWebURI(uri string) bool {
	return strings.HasPrefix(uri, "https://") || strings.HasPrefix(uri, "http://")
}
