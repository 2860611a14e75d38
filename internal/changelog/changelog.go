// Package changelog extracts per-release notes from a markdown changelog.
package changelog

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ErrorType represents the type of error that occurred.
type ErrorType string

const (
	// ErrorTypeNotFound indicates no section matched the requested version.
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeIO indicates an input/output error.
	ErrorTypeIO ErrorType = "io"
)

// Error represents a changelog-related error with type information.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Section is one release entry of the changelog.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Path    string `json:"path"`
}

// describeSuffix matches the "-N-gHASH" tail git describe appends when the
// head is ahead of the latest tag.
var describeSuffix = regexp.MustCompile(`-\d+-g[0-9a-f]+$`)

// NormalizeVersion strips the dirty marker and the describe commit suffix so
// a resolved version maps back to the tag its changelog entry was written for.
// "v2.0.0-3-gabc123" and "v2.0.0-dirty" both normalize to "v2.0.0".
func NormalizeVersion(version string) string {
	normalized := strings.TrimSuffix(version, "-dirty")
	normalized = describeSuffix.ReplaceAllString(normalized, "")
	return normalized
}

// NotesFor parses the changelog at path and returns the section whose
// heading mentions the given version (after normalization).
func NotesFor(path, version string) (*Section, error) {
	sections, err := Parse(path)
	if err != nil {
		return nil, err
	}

	target := NormalizeVersion(version)
	// Tag conventions differ on the leading "v"; accept either spelling.
	bare := strings.TrimPrefix(target, "v")

	for i := range sections {
		title := sections[i].Title
		if strings.Contains(title, target) || strings.Contains(title, bare) {
			return &sections[i], nil
		}
	}

	return nil, &Error{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("no changelog section found for version %q", target),
	}
}

// Parse reads a markdown changelog and chunks it into per-heading sections.
func Parse(path string) ([]Section, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Type: ErrorTypeIO, Message: "failed to read changelog", Err: err}
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var sections []Section
	var currentTitle string
	var buffer strings.Builder

	flush := func() {
		if currentTitle == "" && buffer.Len() == 0 {
			return
		}
		sections = append(sections, Section{
			Title:   currentTitle,
			Content: strings.TrimSpace(buffer.String()),
			Path:    path,
		})
		buffer.Reset()
	}

	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		switch node := n.(type) {
		case *ast.Heading:
			if node.Level <= 3 { // release entries are H1-H3 by convention
				flush()
				currentTitle = string(node.Text(src))
			} else {
				buffer.WriteString("\n" + string(node.Text(src)) + "\n")
			}
		case *ast.Paragraph:
			buffer.WriteString("\n" + string(node.Text(src)) + "\n")
		case *ast.FencedCodeBlock:
			var code strings.Builder
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				code.Write(line.Value(src))
			}
			if code.Len() > 0 {
				buffer.WriteString("\n" + code.String() + "\n")
			}
		case *ast.List:
			buffer.WriteString("\n" + string(node.Text(src)) + "\n")
			// Item text is already captured; recursing would match loose-list
			// paragraphs a second time.
			return
		}

		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(doc)
	flush()

	return sections, nil
}
