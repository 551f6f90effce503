// Package frontmatter extracts optional YAML frontmatter from the start of
// a markdown document.
package frontmatter

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter holds the metadata fields recognized at the top of a document.
// Unknown YAML fields are ignored rather than rejected.
type Frontmatter struct {
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tags"`
}

// Parse extracts YAML frontmatter delimited by "---" lines from the start of
// content. It returns the parsed frontmatter and the remaining body. If no
// frontmatter is present, the closing delimiter is missing, or the YAML
// fails to parse, it returns (nil, content) with content unchanged.
func Parse(content string) (*Frontmatter, string) {
	trimmed := strings.TrimPrefix(content, "﻿")
	if !strings.HasPrefix(trimmed, "---") {
		return nil, content
	}

	afterOpening := trimmed[3:]
	afterOpening = stripLineEnding(afterOpening)

	closingPos, ok := findClosingDelimiter(afterOpening)
	if !ok {
		return nil, content
	}

	yamlContent := afterOpening[:closingPos]
	remaining := afterOpening[closingPos:]

	remaining = strings.TrimPrefix(remaining, "---")
	remaining = stripLineEnding(remaining)
	remaining = stripLineEnding(remaining)

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(yamlContent), &fm); err != nil {
		return nil, content
	}

	return &fm, remaining
}

// stripLineEnding removes a single leading "\r\n" or "\n", if present.
func stripLineEnding(s string) string {
	if rest, ok := strings.CutPrefix(s, "\r\n"); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(s, "\n"); ok {
		return rest
	}
	return s
}

// findClosingDelimiter returns the byte offset of a line consisting of
// exactly "---", searching from the start of content.
func findClosingDelimiter(content string) (int, bool) {
	pos := 0
	for len(content) > 0 {
		idx := strings.IndexByte(content, '\n')
		var line string
		if idx < 0 {
			line = content
		} else {
			line = content[:idx]
		}
		trimmedLine := strings.TrimSuffix(line, "\r")
		if trimmedLine == "---" {
			return pos, true
		}
		if idx < 0 {
			break
		}
		pos += idx + 1
		content = content[idx+1:]
	}
	return 0, false
}
