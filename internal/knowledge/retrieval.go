package knowledge

import (
	"fmt"
	"log"
	"strings"
)

// Mode selects how context is retrieved for a query. Process-wide, not
// per-request.
type Mode string

const (
	ModeKeyword  Mode = "keyword"
	ModeFulltext Mode = "fulltext"
	ModeHybrid   Mode = "hybrid"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeKeyword:
		return ModeKeyword, nil
	case ModeFulltext:
		return ModeFulltext, nil
	case ModeHybrid, Mode(""):
		return ModeHybrid, nil
	default:
		return "", fmt.Errorf("unknown retrieval mode %q", s)
	}
}

// Retrieval is the context selected for one query. Text is what gets
// embedded into the system prompt; Empty reports that nothing matched.
type Retrieval struct {
	Text string
	Mode Mode
}

func (r Retrieval) Empty() bool {
	return strings.TrimSpace(r.Text) == ""
}

// Retrieve selects grounding context for the query. It never fails: a
// storage error is logged and degrades to an empty result, because a
// missing-context answer beats a hard failure mid-conversation.
func (s *Service) Retrieve(tenantID uint, query string) Retrieval {
	switch s.mode {
	case ModeKeyword:
		return s.retrieveKeyword(tenantID, query)
	case ModeFulltext:
		return s.retrieveFulltext(tenantID)
	default: // hybrid
		result := s.retrieveKeyword(tenantID, query)
		if result.Empty() {
			return s.retrieveFulltext(tenantID)
		}
		return result
	}
}

func (s *Service) retrieveKeyword(tenantID uint, query string) Retrieval {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return Retrieval{Mode: ModeKeyword}
	}

	// Matches come back in chunk-index order, not ranked by relevance.
	chunks, err := s.chunks.SearchByTokens(tenantID, tokens, s.maxChunks)
	if err != nil {
		log.Printf("keyword retrieval failed, continuing without context: %v", err)
		return Retrieval{Mode: ModeKeyword}
	}

	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		parts = append(parts, chunk.Text)
	}
	return Retrieval{Text: strings.Join(parts, "\n\n"), Mode: ModeKeyword}
}

func (s *Service) retrieveFulltext(tenantID uint) Retrieval {
	docs, err := s.docs.ListByTenantID(tenantID)
	if err != nil {
		log.Printf("fulltext retrieval failed, continuing without context: %v", err)
		return Retrieval{Mode: ModeFulltext}
	}

	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		parts = append(parts, "# "+doc.OriginalName+"\n"+doc.FullText)
	}
	return Retrieval{Text: strings.Join(parts, "\n\n"), Mode: ModeFulltext}
}
