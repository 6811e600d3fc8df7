package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"guestdesk/internal/knowledge"
	"guestdesk/internal/parser"
	"guestdesk/internal/transport/http/response"
)

type KnowledgeHandler struct {
	knowledgeService *knowledge.Service
}

func NewKnowledgeHandler(knowledgeService *knowledge.Service) *KnowledgeHandler {
	return &KnowledgeHandler{knowledgeService: knowledgeService}
}

type fileResultPayload struct {
	OriginalName string `json:"original_name"`
	DocumentID   uint   `json:"document_id,omitempty"`
	ChunkCount   int    `json:"chunk_count,omitempty"`
	Code         int    `json:"code"`
	Error        string `json:"error,omitempty"`
}

// Upload accepts a multipart form with one or more "files" entries and
// ingests each into the tenant's knowledge base. A bad file does not
// abort the batch; its failure is reported in its own result entry.
func (h *KnowledgeHandler) Upload(c *gin.Context) {
	tenantID, ok := getTenantIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	files, err := formFiles(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		return
	}

	results := h.knowledgeService.IngestBatch(tenantID, files)
	response.OK(c, gin.H{"results": toFileResultPayloads(results)})
}

// Replace wipes the tenant's knowledge base and ingests the uploaded
// batch in its place.
func (h *KnowledgeHandler) Replace(c *gin.Context) {
	tenantID, ok := getTenantIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	files, err := formFiles(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		return
	}

	results, err := h.knowledgeService.ReplaceAll(tenantID, files)
	if err != nil {
		if errors.Is(err, knowledge.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "replace documents failed")
		}
		return
	}
	response.OK(c, gin.H{"results": toFileResultPayloads(results)})
}

func (h *KnowledgeHandler) List(c *gin.Context) {
	tenantID, ok := getTenantIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	docs, err := h.knowledgeService.ListDocuments(tenantID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, docs)
}

func (h *KnowledgeHandler) Delete(c *gin.Context) {
	tenantID, ok := getTenantIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	docID, err := parseUintParam(c, "id")
	if err != nil || docID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}

	if err := h.knowledgeService.DeleteDocument(tenantID, docID); err != nil {
		switch {
		case errors.Is(err, knowledge.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, knowledge.ErrNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		}
		return
	}
	response.OK(c, gin.H{"deleted_document_id": docID})
}

func (h *KnowledgeHandler) DeleteAll(c *gin.Context) {
	tenantID, ok := getTenantIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	if err := h.knowledgeService.DeleteAllDocuments(tenantID); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete documents failed")
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

func formFiles(c *gin.Context) ([]knowledge.FileInput, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, errors.New("invalid multipart form")
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return nil, errors.New("no files in form field 'files'")
	}

	files := make([]knowledge.FileInput, 0, len(headers))
	for _, header := range headers {
		data, err := readFormFile(header)
		if err != nil {
			return nil, err
		}
		files = append(files, knowledge.FileInput{Name: header.Filename, Data: data})
	}
	return files, nil
}

func readFormFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, errors.New("read uploaded file failed")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, knowledge.MaxFileSize+1))
	if err != nil {
		return nil, errors.New("read uploaded file failed")
	}
	return data, nil
}

func toFileResultPayloads(results []knowledge.FileResult) []fileResultPayload {
	payloads := make([]fileResultPayload, 0, len(results))
	for _, r := range results {
		p := fileResultPayload{OriginalName: r.OriginalName}
		if r.Err != nil {
			p.Code = ingestErrorCode(r.Err)
			p.Error = r.Err.Error()
		} else {
			p.DocumentID = r.DocumentID
			p.ChunkCount = r.ChunkCount
		}
		payloads = append(payloads, p)
	}
	return payloads
}

func ingestErrorCode(err error) int {
	switch {
	case errors.Is(err, knowledge.ErrFileTooLarge):
		return response.CodeFileTooLarge
	case errors.Is(err, parser.ErrUnsupportedFormat):
		return response.CodeUnsupportedFormat
	default:
		return response.CodeBadRequest
	}
}
