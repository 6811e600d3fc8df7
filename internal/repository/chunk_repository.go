package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"guestdesk/internal/model"
)

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// SearchByTokens returns chunks whose text contains any of the tokens
// (case-insensitive), scoped to the tenant, ordered by chunk position
// and capped at limit. Tokens are matched as plain substrings.
func (r *ChunkRepository) SearchByTokens(tenantID uint, tokens []string, limit int) ([]model.Chunk, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	conds := make([]string, 0, len(tokens))
	args := make([]interface{}, 0, len(tokens))
	for _, token := range tokens {
		conds = append(conds, "LOWER(text) LIKE ?")
		args = append(args, "%"+escapeLike(strings.ToLower(token))+"%")
	}

	var chunks []model.Chunk
	err := r.db.
		Where("tenant_id = ?", tenantID).
		Where(strings.Join(conds, " OR "), args...).
		Order("idx ASC, id ASC").
		Limit(limit).
		Find(&chunks).Error
	if err != nil {
		return nil, fmt.Errorf("search chunks failed: %w", err)
	}
	return chunks, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
