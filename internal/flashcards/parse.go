package flashcards

import "strings"

// ParsedCard is one question/answer pair read from bulk text.
type ParsedCard struct {
	Question string
	Answer   string
}

// ParseBulk reads cards from free text. Two layouts are accepted and may be
// mixed:
//
//	Q: What is the capital of France?
//	A: Paris
//
//	What is the capital of France? Paris
//
// A question line without an answer on the same line takes the next plain
// line as its answer. Lines that cannot be paired are counted as skipped.
func ParseBulk(content string) ([]ParsedCard, int) {
	var cards []ParsedCard
	skipped := 0
	pending := ""

	emit := func(q, a string) {
		cards = append(cards, ParsedCard{Question: q, Answer: a})
		pending = ""
	}

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if rest, ok := cutLabel(line, "Q:"); ok {
			if pending != "" {
				skipped++
			}
			pending = rest
			if pending == "" {
				skipped++
			}
			continue
		}
		if rest, ok := cutLabel(line, "A:"); ok {
			if pending == "" || rest == "" {
				skipped++
				pending = ""
				continue
			}
			emit(pending, rest)
			continue
		}

		if pending != "" {
			emit(pending, line)
			continue
		}

		if q, a, ok := strings.Cut(line, "?"); ok {
			q = strings.TrimSpace(q) + "?"
			a = strings.TrimSpace(a)
			if a == "" {
				pending = q
				continue
			}
			emit(q, a)
			continue
		}

		skipped++
	}

	if pending != "" {
		skipped++
	}
	return cards, skipped
}

func cutLabel(line, label string) (string, bool) {
	if len(line) < len(label) || !strings.EqualFold(line[:len(label)], label) {
		return "", false
	}
	return strings.TrimSpace(line[len(label):]), true
}
