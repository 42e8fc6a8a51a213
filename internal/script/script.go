// Package script splits a comic script into panel beats.
package script

import (
	"bufio"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/abdulachik/panelforge/internal/prompt"
)

// Beat is the action of one panel.
type Beat struct {
	Number    int            `json:"number"`
	Page      int            `json:"page,omitempty"`
	Heading   string         `json:"heading,omitempty"`
	Action    string         `json:"action"`
	Camera    *prompt.Camera `json:"camera,omitempty"`
	StartLine int            `json:"start_line"`
	WordCount int            `json:"word_count"`
}

var (
	// "PANEL 3:", "Page 2, panel 1 -", "panel 4." with optional text after.
	panelHeading = regexp.MustCompile(`(?i)^\s*(?:page\s+(\d+)\s*[,.:-]?\s*)?panel\s+(\d+)\s*[:.)-]?\s*(.*)$`)
	// A line that is only a page heading.
	pageHeading = regexp.MustCompile(`(?i)^\s*page\s+(\d+)\s*[:.-]?\s*$`)
	// A leading "[close-up, low angle]" camera hint.
	cameraHint = regexp.MustCompile(`^\s*\[([^\]]*)\]\s*`)
)

// SplitFile reads a script file and splits it into beats.
func SplitFile(path string) ([]Beat, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return SplitLines(lines), nil
}

// Split splits script text into beats.
func Split(text string) []Beat {
	return SplitLines(strings.Split(text, "\n"))
}

// SplitLines splits script lines into beats numbered from 1.
//
// A script with panel headings gets one beat per heading. Otherwise each
// blank-line separated paragraph is a beat. Lines starting with "#" are
// comments.
func SplitLines(lines []string) []Beat {
	if hasPanelHeadings(lines) {
		return byHeadings(lines)
	}
	return byParagraphs(lines)
}

func hasPanelHeadings(lines []string) bool {
	for _, line := range lines {
		if panelHeading.MatchString(line) {
			return true
		}
	}
	return false
}

func byHeadings(lines []string) []Beat {
	var beats []Beat
	var current *Beat
	var body []string
	page := 0

	flush := func() {
		if current == nil {
			return
		}
		if b, ok := finish(*current, body); ok {
			beats = append(beats, b)
		}
		current, body = nil, nil
	}

	for i, line := range lines {
		if isComment(line) {
			continue
		}
		if m := pageHeading.FindStringSubmatch(line); m != nil {
			flush()
			page, _ = strconv.Atoi(m[1])
			continue
		}
		if idx := panelHeading.FindStringSubmatchIndex(line); idx != nil {
			flush()
			if idx[2] >= 0 {
				page, _ = strconv.Atoi(line[idx[2]:idx[3]])
			}
			heading := strings.TrimRight(strings.TrimSpace(line[:idx[6]]), " :.-)")
			current = &Beat{Page: page, Heading: heading, StartLine: i}
			body = []string{line[idx[6]:idx[7]]}
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush()

	return number(beats)
}

func byParagraphs(lines []string) []Beat {
	var beats []Beat
	var body []string
	start := 0

	flush := func() {
		if b, ok := finish(Beat{StartLine: start}, body); ok {
			beats = append(beats, b)
		}
		body = nil
	}

	for i, line := range lines {
		if isComment(line) {
			continue
		}
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if len(body) == 0 {
			start = i
		}
		body = append(body, line)
	}
	flush()

	return number(beats)
}

// finish joins a beat's body and pulls out its camera hint.
func finish(b Beat, body []string) (Beat, bool) {
	action := strings.Join(strings.Fields(strings.Join(body, " ")), " ")
	if m := cameraHint.FindStringSubmatch(action); m != nil {
		b.Camera = parseCamera(m[1])
		action = strings.TrimSpace(action[len(m[0]):])
	}
	if action == "" {
		return b, false
	}
	b.Action = action
	b.WordCount = len(strings.Fields(action))
	return b, true
}

// parseCamera reads "shot, angle, composition..." from a hint.
func parseCamera(hint string) *prompt.Camera {
	var fields []string
	for _, f := range strings.Split(hint, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return nil
	}

	c := &prompt.Camera{Shot: fields[0]}
	if len(fields) > 1 {
		c.Angle = fields[1]
	}
	if len(fields) > 2 {
		c.Composition = strings.Join(fields[2:], ", ")
	}
	return c
}

func number(beats []Beat) []Beat {
	for i := range beats {
		beats[i].Number = i + 1
	}
	return beats
}

func isComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}

// Mentions returns the names that appear in an action as whole words, in
// the order given.
func Mentions(action string, names []string) []string {
	var out []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
		if re.MatchString(action) {
			out = append(out, name)
		}
	}
	return out
}
