package services

import (
	"fmt"
	"strings"
)

// ParsedOption is one choice extracted from a pasted block.
type ParsedOption struct {
	Label   string
	Text    string
	Correct bool
}

// ParsedQuestion is one entry of the bulk-paste format:
//
//	Q: What is 2+2?
//	A) 1
//	B) 2
//	C) 3
//	D) 4 *
//
// A trailing * marks the correct option. "TEXT: expected" after the
// question declares a free-text answer instead of options. Entries are
// separated by blank lines. A question with neither options nor a TEXT
// line becomes a free-text question with custom answers allowed.
type ParsedQuestion struct {
	Type        string
	Text        string
	Options     []ParsedOption
	CorrectText *string
	AllowCustom bool
}

var optionMarkers = []string{"A)", "B)", "C)", "D)"}

// ParseQuestionBlock parses the pasted import text. It returns
// ErrImportEmpty when no questions are found and ErrImportMalformed
// (wrapped with the offending line) on structural errors.
func ParseQuestionBlock(text string) ([]*ParsedQuestion, error) {
	var questions []*ParsedQuestion
	var current *ParsedQuestion

	flush := func() {
		if current == nil {
			return
		}
		if len(current.Options) > 0 {
			current.Type = "MCQ"
		} else if current.CorrectText != nil {
			current.Type = "TEXT"
		} else {
			current.Type = "TEXT"
			current.AllowCustom = true
		}
		questions = append(questions, current)
		current = nil
	}

	for lineNum, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		if line == "" {
			flush()
			continue
		}

		switch {
		case strings.HasPrefix(line, "Q:"):
			flush()
			body := strings.TrimSpace(strings.TrimPrefix(line, "Q:"))
			if body == "" {
				return nil, fmt.Errorf("%w: empty question text at line %d", ErrImportMalformed, lineNum+1)
			}
			current = &ParsedQuestion{Text: body}

		case strings.HasPrefix(line, "TEXT:"):
			if current == nil {
				return nil, fmt.Errorf("%w: TEXT before any question at line %d", ErrImportMalformed, lineNum+1)
			}
			answer := strings.TrimSpace(strings.TrimPrefix(line, "TEXT:"))
			if answer != "" {
				current.CorrectText = &answer
			} else {
				current.AllowCustom = true
			}

		case matchOptionMarker(line) != "":
			if current == nil {
				return nil, fmt.Errorf("%w: option before any question at line %d", ErrImportMalformed, lineNum+1)
			}
			marker := matchOptionMarker(line)
			body := strings.TrimSpace(line[len(marker):])
			correct := false
			if strings.HasSuffix(body, "*") {
				correct = true
				body = strings.TrimSpace(strings.TrimSuffix(body, "*"))
			}
			if body == "" {
				return nil, fmt.Errorf("%w: empty option text at line %d", ErrImportMalformed, lineNum+1)
			}
			current.Options = append(current.Options, ParsedOption{
				Label:   strings.TrimSuffix(marker, ")"),
				Text:    body,
				Correct: correct,
			})

		default:
			// Continuation of the question text.
			if current == nil {
				return nil, fmt.Errorf("%w: unexpected text at line %d", ErrImportMalformed, lineNum+1)
			}
			current.Text += "\n" + line
		}
	}
	flush()

	if len(questions) == 0 {
		return nil, ErrImportEmpty
	}
	return questions, nil
}

// CorrectLabel returns the label of the option marked correct, or nil.
func (p *ParsedQuestion) CorrectLabel() *string {
	for _, opt := range p.Options {
		if opt.Correct {
			label := opt.Label
			return &label
		}
	}
	return nil
}

func matchOptionMarker(line string) string {
	for _, marker := range optionMarkers {
		if strings.HasPrefix(line, marker) {
			return marker
		}
	}
	return ""
}
