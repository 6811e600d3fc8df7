package response

import "github.com/gin-gonic/gin"

const (
	CodeOK                 = 0
	CodeBadRequest         = 40000
	CodeUsernameExists     = 40001
	CodeUnsupportedFormat  = 40002
	CodeFileTooLarge       = 40003
	CodeUnauthorized       = 40100
	CodeInvalidCredentials = 40101
	CodeOwnershipConflict  = 40300
	CodeSessionNotFound    = 40401
	CodeDocumentNotFound   = 40402
	CodeCuratedNotFound    = 40403
	CodeInternalServer     = 50000
	CodeLLMRejected        = 50201
	CodeLLMEmptyOutput     = 50202
	CodeLLMUnavailable     = 50300
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}
