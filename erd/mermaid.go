package erd

import "strings"

const (
	mermaidFence = "```mermaid"
	closingFence = "```"
)

// splitLines splits src into lines, dropping the line terminators.
func splitLines(src string) []string {
	lines := strings.Split(src, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// diagramBounds returns the half-open range of lines holding the diagram.
// With a ```mermaid fence only the fenced lines are returned; an unclosed
// fence runs to the end of the file. Without a fence every line is returned.
func diagramBounds(lines []string) (start, end int) {
	for i, l := range lines {
		if strings.TrimSpace(l) != mermaidFence {
			continue
		}
		for j := i + 1; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == closingFence {
				return i + 1, j
			}
		}
		return i + 1, len(lines)
	}
	return 0, len(lines)
}

// HasMermaidBlock reports whether src contains a ```mermaid fence.
func HasMermaidBlock(src []byte) bool {
	for _, l := range splitLines(string(src)) {
		if strings.TrimSpace(l) == mermaidFence {
			return true
		}
	}
	return false
}
