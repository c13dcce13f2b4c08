package splitter

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"

	"coursetutor/internal/index"
)

// MarkdownSplitter pre-splits markdown at H1/H2 boundaries before applying
// the character window, so chunks do not straddle unrelated sections. Each
// chunk is prefixed with its section's header path for retrieval context.
type MarkdownSplitter struct {
	parser goldmark.Markdown
}

// NewMarkdownSplitter creates a markdown splitter with a goldmark parser.
func NewMarkdownSplitter() *MarkdownSplitter {
	return &MarkdownSplitter{
		parser: goldmark.New(
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
	}
}

type section struct {
	headerPath string
	content    string
}

// Split segments markdown into windowed chunks per H1/H2 section. The window
// invariants from Split hold within each section. Documents without headers
// fall back to plain character splitting.
func (m *MarkdownSplitter) Split(source string, maxSize, overlap int) ([]index.Chunk, error) {
	if maxSize <= 0 || overlap < 0 || overlap >= maxSize {
		return nil, fmt.Errorf("%w: maxSize=%d overlap=%d", ErrBadChunkParams, maxSize, overlap)
	}

	sections, err := m.sections([]byte(source))
	if err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return Split(source, maxSize, overlap)
	}

	var chunks []index.Chunk
	for _, sec := range sections {
		windows, err := Split(sec.content, maxSize, overlap)
		if err != nil {
			return nil, err
		}
		for _, w := range windows {
			text := w.Text
			if sec.headerPath != "" {
				text = sec.headerPath + "\n\n" + text
			}
			chunks = append(chunks, index.Chunk{Ord: len(chunks), Text: text})
		}
	}
	return chunks, nil
}

// sections parses the markdown and slices it at H1/H2 boundaries, pairing
// each slice with its header hierarchy ("# Unit 4 > ## Coupon Bonds").
func (m *MarkdownSplitter) sections(source []byte) ([]section, error) {
	reader := text.NewReader(source)
	doc := m.parser.Parser().Parse(reader)

	tree, err := toc.Inspect(doc, source,
		toc.MinDepth(1),
		toc.MaxDepth(2),
		toc.Compact(true),
	)
	if err != nil {
		return nil, fmt.Errorf("inspect TOC: %w", err)
	}
	if len(tree.Items) == 0 {
		return nil, nil
	}

	// Collect every H1/H2 heading in document order with its byte offset.
	type boundary struct {
		node  *ast.Heading
		start int
	}
	var bounds []boundary
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == ast.KindHeading {
			h := n.(*ast.Heading)
			if h.Level <= 2 && h.Lines().Len() > 0 {
				start := h.Lines().At(0).Start
				// Back up to the line start so the "#" markers stay with
				// their section.
				for start > 0 && source[start-1] != '\n' {
					start--
				}
				bounds = append(bounds, boundary{node: h, start: start})
			}
		}
		return ast.WalkContinue, nil
	})
	if len(bounds) == 0 {
		return nil, nil
	}

	var sections []section
	if pre := strings.TrimSpace(string(source[:bounds[0].start])); pre != "" {
		sections = append(sections, section{content: pre})
	}
	var lastH1 string
	for i, b := range bounds {
		end := len(source)
		if i+1 < len(bounds) {
			end = bounds[i+1].start
		}
		content := strings.TrimSpace(string(source[b.start:end]))
		title := string(b.node.Text(source))

		var path string
		switch b.node.Level {
		case 1:
			lastH1 = title
			path = "# " + title
		default:
			path = "## " + title
			if lastH1 != "" {
				path = "# " + lastH1 + " > " + path
			}
		}
		sections = append(sections, section{headerPath: path, content: content})
	}
	return sections, nil
}
