package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"guestdesk/internal/ai"
	"guestdesk/internal/chat"
	"guestdesk/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *chat.Service
}

func NewChatHandler(chatService *chat.Service) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type GuestTurnRequest struct {
	SessionID   string `json:"session_id" binding:"max=64"`
	Content     string `json:"content" binding:"max=4000"`
	DisplayName string `json:"display_name" binding:"max=128"`
}

// GuestTurn is the public guest entry point. The tenant is named by the
// URL, not a token; an unknown session id starts a new session and
// returns the greeting.
func (h *ChatHandler) GuestTurn(c *gin.Context) {
	tenantID64, err := strconv.ParseUint(c.Param("tenant_id"), 10, 64)
	if err != nil || tenantID64 == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid tenant id")
		return
	}

	var req GuestTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.chatService.HandleTurn(c.Request.Context(), chat.TurnInput{
		SessionID:   req.SessionID,
		TenantID:    uint(tenantID64),
		Content:     req.Content,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, chat.ErrOwnershipConflict):
			response.Error(c, http.StatusForbidden, response.CodeOwnershipConflict, err.Error())
		case errors.Is(err, ai.ErrUnavailable), errors.Is(err, ai.ErrRejected), errors.Is(err, ai.ErrEmptyOutput):
			status, code, message := generationErrorResponse(err)
			response.Error(c, status, code, message)
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "chat turn failed")
		}
		return
	}

	response.OK(c, result)
}

func (h *ChatHandler) ListSessions(c *gin.Context) {
	tenantID, ok := getTenantIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	sessions, err := h.chatService.ListSessions(tenantID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list sessions failed")
		return
	}
	response.OK(c, sessions)
}

func (h *ChatHandler) GetTranscript(c *gin.Context) {
	tenantID, ok := getTenantIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	sessionID := c.Param("id")
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, parseErr := strconv.Atoi(raw); parseErr == nil && parsed > 0 {
			limit = parsed
		}
	}

	messages, err := h.chatService.GetTranscript(sessionID, tenantID, limit)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, chat.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get transcript failed")
		}
		return
	}
	response.OK(c, messages)
}

func (h *ChatHandler) ClearSession(c *gin.Context) {
	tenantID, ok := getTenantIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	sessionID := c.Param("id")
	if err := h.chatService.ClearMessages(c.Request.Context(), sessionID, tenantID); err != nil {
		switch {
		case errors.Is(err, chat.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, chat.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "clear session failed")
		}
		return
	}
	response.OK(c, gin.H{"cleared_session_id": sessionID})
}

func (h *ChatHandler) DeleteSession(c *gin.Context) {
	tenantID, ok := getTenantIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	sessionID := c.Param("id")
	if err := h.chatService.DeleteSession(c.Request.Context(), sessionID, tenantID); err != nil {
		switch {
		case errors.Is(err, chat.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, chat.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete session failed")
		}
		return
	}
	response.OK(c, gin.H{"deleted_session_id": sessionID})
}

func (h *ChatHandler) ListCurated(c *gin.Context) {
	tenantID, ok := getTenantIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	kind := c.Query("kind")
	unreadOnly := c.Query("unread") == "true"

	list, err := h.chatService.ListCurated(tenantID, kind, unreadOnly)
	if err != nil {
		if errors.Is(err, chat.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list curated messages failed")
		}
		return
	}
	response.OK(c, list)
}

func (h *ChatHandler) MarkCuratedRead(c *gin.Context) {
	tenantID, ok := getTenantIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid curated message id")
		return
	}

	if err := h.chatService.MarkCuratedRead(id, tenantID); err != nil {
		switch {
		case errors.Is(err, chat.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, chat.ErrCuratedNotFound):
			response.Error(c, http.StatusNotFound, response.CodeCuratedNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "mark curated message failed")
		}
		return
	}
	response.OK(c, gin.H{"read_id": id})
}

// generationErrorResponse separates the backend failure classes: an
// unreachable backend is retryable (503), a rejected request or an
// empty reply is an upstream fault the guest should not retry (502).
func generationErrorResponse(err error) (int, int, string) {
	switch {
	case errors.Is(err, ai.ErrRejected):
		return http.StatusBadGateway, response.CodeLLMRejected, "assistant backend rejected the request"
	case errors.Is(err, ai.ErrEmptyOutput):
		return http.StatusBadGateway, response.CodeLLMEmptyOutput, "assistant returned no reply"
	default:
		return http.StatusServiceUnavailable, response.CodeLLMUnavailable, "assistant is temporarily unavailable"
	}
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	u, err := strconv.ParseUint(c.Param(key), 10, 64)
	return uint(u), err
}
