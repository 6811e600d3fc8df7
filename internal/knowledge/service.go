// Package knowledge owns the tenant knowledge base: document ingestion
// and chunk retrieval for grounding conversation turns.
package knowledge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"guestdesk/internal/chunker"
	"guestdesk/internal/model"
	"guestdesk/internal/parser"
)

// MaxFileSize caps a single upload before parsing.
const MaxFileSize = 10 << 20 // 10 MiB

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrFileTooLarge = errors.New("file exceeds the 10 MiB limit")
	ErrNotFound     = errors.New("document not found")
)

// DocumentStore persists documents and their chunks, scoped per tenant.
type DocumentStore interface {
	CreateWithChunks(doc *model.Document, chunks []model.Chunk) error
	ListByTenantID(tenantID uint) ([]model.Document, error)
	GetByIDAndTenantID(id, tenantID uint) (*model.Document, error)
	DeleteByIDAndTenantID(id, tenantID uint) error
	DeleteByTenantID(tenantID uint) error
}

// ChunkStore answers token queries over a tenant's chunks.
type ChunkStore interface {
	SearchByTokens(tenantID uint, tokens []string, limit int) ([]model.Chunk, error)
}

type Service struct {
	docs         DocumentStore
	chunks       ChunkStore
	mode         Mode
	maxChunks    int
	chunkSize    int
	chunkOverlap int
}

func NewService(docs DocumentStore, chunks ChunkStore, mode Mode, maxChunks, chunkSize, chunkOverlap int) *Service {
	if maxChunks <= 0 {
		maxChunks = 5
	}
	if chunkSize <= 0 {
		chunkSize = chunker.DefaultTargetSize
	}
	if chunkOverlap <= 0 {
		chunkOverlap = chunker.DefaultOverlap
	}
	return &Service{
		docs:         docs,
		chunks:       chunks,
		mode:         mode,
		maxChunks:    maxChunks,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// FileInput is one uploaded file.
type FileInput struct {
	Name string
	Data []byte
}

// FileResult reports the outcome of one file in a batch; Err is nil on
// success.
type FileResult struct {
	OriginalName string
	DocumentID   uint
	ChunkCount   int
	Err          error
}

// Ingest parses, chunks, and persists one document for the tenant.
func (s *Service) Ingest(tenantID uint, file FileInput) (*model.Document, int, error) {
	if tenantID == 0 || strings.TrimSpace(file.Name) == "" {
		return nil, 0, ErrInvalidInput
	}
	if len(file.Data) == 0 {
		return nil, 0, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}
	if len(file.Data) > MaxFileSize {
		return nil, 0, ErrFileTooLarge
	}

	format, err := parser.FormatFromFilename(file.Name)
	if err != nil {
		return nil, 0, err
	}
	text, err := parser.Parse(file.Data, format)
	if err != nil {
		return nil, 0, err
	}

	segments := chunker.Split(text, s.chunkSize, s.chunkOverlap)
	if len(segments) == 0 {
		return nil, 0, parser.ErrEmptyContent
	}

	doc := &model.Document{
		TenantID:     tenantID,
		StoredName:   uuid.NewString() + "." + string(format),
		OriginalName: file.Name,
		Format:       string(format),
		ByteSize:     int64(len(file.Data)),
		FullText:     text,
	}
	chunks := make([]model.Chunk, len(segments))
	for i, segment := range segments {
		chunks[i] = model.Chunk{Text: segment, Idx: i}
	}

	if err := s.docs.CreateWithChunks(doc, chunks); err != nil {
		return nil, 0, err
	}
	return doc, len(chunks), nil
}

// IngestBatch processes files sequentially, continuing past individual
// failures; the caller gets one result per file in input order.
func (s *Service) IngestBatch(tenantID uint, files []FileInput) []FileResult {
	results := make([]FileResult, 0, len(files))
	for _, file := range files {
		doc, count, err := s.Ingest(tenantID, file)
		result := FileResult{OriginalName: file.Name, Err: err}
		if err == nil {
			result.DocumentID = doc.ID
			result.ChunkCount = count
		}
		results = append(results, result)
	}
	return results
}

// ReplaceAll deletes every document of the tenant and then ingests the
// batch. The deletion error surfaces; batch failures stay per-file.
func (s *Service) ReplaceAll(tenantID uint, files []FileInput) ([]FileResult, error) {
	if tenantID == 0 {
		return nil, ErrInvalidInput
	}
	if err := s.docs.DeleteByTenantID(tenantID); err != nil {
		return nil, err
	}
	return s.IngestBatch(tenantID, files), nil
}

func (s *Service) ListDocuments(tenantID uint) ([]model.Document, error) {
	if tenantID == 0 {
		return nil, ErrInvalidInput
	}
	return s.docs.ListByTenantID(tenantID)
}

func (s *Service) DeleteDocument(tenantID, documentID uint) error {
	if tenantID == 0 || documentID == 0 {
		return ErrInvalidInput
	}
	doc, err := s.docs.GetByIDAndTenantID(documentID, tenantID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrNotFound
	}
	return s.docs.DeleteByIDAndTenantID(documentID, tenantID)
}

func (s *Service) DeleteAllDocuments(tenantID uint) error {
	if tenantID == 0 {
		return ErrInvalidInput
	}
	return s.docs.DeleteByTenantID(tenantID)
}
