package services

import (
	"regexp"
	"strings"
)

// fenceOnly matches a line that is solely a fence delimiter, optionally
// carrying a language tag.
var fenceOnly = regexp.MustCompile("^`{3,}[A-Za-z0-9_+-]*$")

// NormalizeArticle cleans up code-fence artifacts that LLMs commonly
// wrap Markdown output in. The steps run in a fixed order and each is
// idempotent, so renormalising already-clean text is a no-op:
//
//  1. strip one outer fence wrapping the entire body
//  2. drop remaining fence-only lines
//  3. de-indent a body that generation emitted as an indented block
//  4. close any unbalanced fence left over
func NormalizeArticle(body string) string {
	body = stripOuterFence(body)
	body = dropFenceLines(body)
	body = dedentCodeish(body)
	body = balanceFences(body)
	return body
}

// stripOuterFence removes one wrapping fence pair when the first line
// opens a fence and the last line closes it.
func stripOuterFence(body string) string {
	trimmed := strings.TrimSpace(body)
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return body
	}

	first := strings.TrimSpace(lines[0])
	last := strings.TrimSpace(lines[len(lines)-1])
	if !fenceOnly.MatchString(first) || !fenceOnly.MatchString(last) {
		return body
	}

	return strings.Join(lines[1:len(lines)-1], "\n")
}

// dropFenceLines removes every line that consists solely of a fence
// delimiter. These are stray generation artifacts, not real code
// blocks, in the article bodies this pipeline handles.
func dropFenceLines(body string) string {
	lines := strings.Split(body, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if fenceOnly.MatchString(strings.TrimSpace(line)) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// dedentCodeish strips indentation levels while at least half of the
// non-blank lines are indented by four spaces or a tab, which is how
// models sometimes render the whole article as a code block. Stripping
// repeats until the body no longer looks indented, so a deeply nested
// body fully dedents in a single call. Indented headings are brought
// back to column zero entirely.
func dedentCodeish(body string) string {
	for {
		lines := strings.Split(body, "\n")

		nonBlank, indented := 0, 0
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			nonBlank++
			if strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
				indented++
			}
		}
		if nonBlank == 0 || indented*2 < nonBlank {
			return body
		}

		for i, line := range lines {
			switch {
			case strings.HasPrefix(strings.TrimSpace(line), "#"):
				lines[i] = strings.TrimLeft(line, " \t")
			case strings.HasPrefix(line, "    "):
				lines[i] = line[4:]
			case strings.HasPrefix(line, "\t"):
				lines[i] = line[1:]
			}
		}
		body = strings.Join(lines, "\n")
	}
}

// balanceFences appends a closing fence if an odd number of fence
// toggles remains.
func balanceFences(body string) string {
	toggles := 0
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			toggles++
		}
	}
	if toggles%2 == 1 {
		return strings.TrimRight(body, "\n") + "\n```"
	}
	return body
}
