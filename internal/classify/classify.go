// Package classify tags inbound guest messages so the orchestrator can
// route blessings and questions into the curated review queue.
package classify

import "strings"

type Kind string

const (
	KindBlessing Kind = "blessing"
	KindQuestion Kind = "question"
	KindFreeform Kind = "freeform"
)

// Curated reports whether messages of this kind are copied into the
// review queue.
func (k Kind) Curated() bool {
	return k == KindBlessing || k == KindQuestion
}

// Classifier decides the kind of a guest message. Implementations are
// swappable; the orchestrator never depends on how the decision is made.
type Classifier interface {
	Classify(text string) Kind
}

// Keyword classifies by scanning fixed lexicons. Question intent wins
// over weak blessing signals except when no question markers exist at
// all.
type Keyword struct {
	blessings []string
	questions []string
	openers   []string
}

func NewKeyword() *Keyword {
	return &Keyword{
		blessings: []string{
			"新婚快乐", "百年好合", "白头偕老", "早生贵子", "永结同心",
			"祝福", "祝愿", "恭喜", "幸福美满", "甜甜蜜蜜",
			"congratulations", "best wishes", "wish you",
		},
		questions: []string{
			"？", "?", "吗", "呢", "什么", "怎么", "怎样", "如何",
			"为什么", "哪里", "哪儿", "几点", "几号", "多少", "何时", "谁",
			"how ", "what ", "when ", "where ", "why ", "who ",
		},
		openers: []string{"祝", "愿", "恭喜", "wish", "congrat"},
	}
}

func (k *Keyword) Classify(text string) Kind {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return KindFreeform
	}

	hasBlessing := containsAny(lowered, k.blessings)
	hasQuestion := containsAny(lowered, k.questions)

	switch {
	case hasBlessing && !hasQuestion:
		return KindBlessing
	case hasQuestion:
		return KindQuestion
	case startsWithAny(lowered, k.openers):
		return KindBlessing
	default:
		return KindFreeform
	}
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func startsWithAny(text string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}
