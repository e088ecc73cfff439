// Package cta decides where a call-to-action block goes inside a markdown
// post body.
package cta

import (
	"regexp"
	"strings"
)

var (
	markerRe = regexp.MustCompile(`(?i)<!--\s*cta(?:\s*:\s*([a-z0-9_-]+))?\s*-->`)

	h2Re = regexp.MustCompile(`^##\s`)
	h3Re = regexp.MustCompile(`^###\s`)

	fenceRe   = regexp.MustCompile("^\\s{0,3}(```|~~~)")
	listRe    = regexp.MustCompile(`^\s*([-*+]|\d+[.)])\s`)
	tableRe   = regexp.MustCompile(`^\s*\|`)
	quoteRe   = regexp.MustCompile(`^\s*>`)
	htmlRe    = regexp.MustCompile(`^\s*<`)
	headingRe = regexp.MustCompile(`^\s{0,3}#{1,6}(\s|$)`)
	linkRefRe = regexp.MustCompile(`^\s{0,3}\[[^\]]+\]:\s`)
)

// targetRatio is where, as a fraction of the line count, the CTA should land
// when the author did not place it.
const targetRatio = 0.4

// minLines is the shortest body that is split automatically.
const minLines = 3

type Result struct {
	Before string
	After  string
	// Marker is the exact marker text for explicit placement. Before+Marker+After
	// reproduces the input.
	Marker   string
	Variant  string
	Explicit bool
}

// Split finds the CTA insertion point in content. An explicit
// <!-- CTA --> or <!-- CTA:variant --> marker wins. Otherwise the CTA goes
// before the first h2 (then h3) at or after 40% of the body, and failing
// that at the blank line closest to that point that does not break a
// markdown block. When no point exists everything is returned in Before.
func Split(content string) Result {
	if loc := firstMarker(content); loc != nil {
		r := Result{
			Before:   content[:loc[0]],
			After:    content[loc[1]:],
			Marker:   content[loc[0]:loc[1]],
			Explicit: true,
		}
		if loc[2] >= 0 {
			r.Variant = strings.ToLower(content[loc[2]:loc[3]])
		}
		return r
	}

	whole := Result{Before: strings.TrimSpace(content)}

	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	if len(lines) < minLines {
		return whole
	}
	fenced := fencedLines(lines)
	target := int(float64(len(lines)) * targetRatio)

	at, skip := -1, 0
	if h := findHeading(lines, fenced, target, h2Re); h >= 0 {
		at = h
	} else if h := findHeading(lines, fenced, target, h3Re); h >= 0 {
		at = h
	}
	if at >= 0 {
		if at > 0 && isBlank(lines[at-1]) {
			at--
			skip = 1
		}
	} else if b := findBlank(lines, fenced, target); b >= 0 {
		at, skip = b, 1
	}
	if at < 0 {
		return whole
	}

	before := strings.TrimSpace(strings.Join(lines[:at], "\n"))
	after := strings.TrimSpace(strings.Join(lines[at+skip:], "\n"))
	if before == "" || after == "" {
		return whole
	}
	return Result{Before: before, After: after}
}

// firstMarker returns the submatch indexes of the first marker that is not
// inside a fenced code block.
func firstMarker(content string) []int {
	matches := markerRe.FindAllStringSubmatchIndex(content, -1)
	if matches == nil {
		return nil
	}
	fenced := fencedLines(strings.Split(content, "\n"))
	for _, loc := range matches {
		if !fenced[strings.Count(content[:loc[0]], "\n")] {
			return loc
		}
	}
	return nil
}

func findHeading(lines []string, fenced []bool, from int, re *regexp.Regexp) int {
	for i := from; i < len(lines); i++ {
		if !fenced[i] && re.MatchString(lines[i]) {
			return i
		}
	}
	return -1
}

// findBlank returns the splittable blank line nearest to target; on a tie the
// later line wins.
func findBlank(lines []string, fenced []bool, target int) int {
	best, bestDist := -1, 0
	for i := 1; i < len(lines)-1; i++ {
		if fenced[i] || !isBlank(lines[i]) {
			continue
		}
		if !splittableNeighbour(lines[i-1]) || !splittableNeighbour(lines[i+1]) {
			continue
		}
		d := i - target
		if d < 0 {
			d = -d
		}
		if best < 0 || d < bestDist || (d == bestDist && i > best) {
			best, bestDist = i, d
		}
	}
	return best
}

func splittableNeighbour(line string) bool {
	if isBlank(line) {
		return false
	}
	for _, re := range []*regexp.Regexp{listRe, tableRe, quoteRe, htmlRe, headingRe, linkRefRe} {
		if re.MatchString(line) {
			return false
		}
	}
	return true
}

// fencedLines marks every line that belongs to a fenced code block,
// delimiters included. An unclosed fence runs to the end.
func fencedLines(lines []string) []bool {
	out := make([]bool, len(lines))
	open := ""
	for i, line := range lines {
		m := fenceRe.FindStringSubmatch(line)
		switch {
		case open == "" && m != nil:
			open = m[1]
			out[i] = true
		case open != "":
			out[i] = true
			if m != nil && m[1] == open {
				open = ""
			}
		}
	}
	return out
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
