package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"guestdesk/internal/tenant"
	"guestdesk/internal/transport/http/middleware"
	"guestdesk/internal/transport/http/response"
)

type AuthHandler struct {
	tenantService *tenant.Service
}

type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=64"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
	DisplayName string `json:"display_name" binding:"max=128"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

func NewAuthHandler(tenantService *tenant.Service) *AuthHandler {
	return &AuthHandler{tenantService: tenantService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.tenantService.Register(tenant.RegisterInput{
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, tenant.ErrUsernameExists):
			response.Error(c, http.StatusBadRequest, response.CodeUsernameExists, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "register failed")
		}
		return
	}

	response.OK(c, gin.H{
		"token": result.Token,
		"tenant": gin.H{
			"id":           result.Tenant.ID,
			"username":     result.Tenant.Username,
			"display_name": result.Tenant.DisplayName,
		},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.tenantService.Login(tenant.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, tenant.ErrInvalidCredential):
			response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "login failed")
		}
		return
	}

	response.OK(c, gin.H{
		"token": result.Token,
		"tenant": gin.H{
			"id":           result.Tenant.ID,
			"username":     result.Tenant.Username,
			"display_name": result.Tenant.DisplayName,
		},
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	tenantID, ok := getTenantIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	current, err := h.tenantService.GetByID(tenantID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch current tenant failed")
		return
	}
	if current == nil {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "tenant not found")
		return
	}

	response.OK(c, gin.H{
		"id":           current.ID,
		"username":     current.Username,
		"display_name": current.DisplayName,
	})
}

func getTenantIDFromContext(c *gin.Context) (uint, bool) {
	tenantIDAny, exists := c.Get(middleware.ContextTenantIDKey)
	if !exists {
		return 0, false
	}
	tenantID, ok := tenantIDAny.(uint)
	return tenantID, ok
}
