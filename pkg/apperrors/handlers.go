package apperrors

import (
	"log"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// GinErrorHandler writes AppErrors as JSON responses.
type GinErrorHandler struct {
	Debug bool
}

func (h *GinErrorHandler) HandleGinError(c *gin.Context, err *AppError) {
	if err.HTTPCode >= 500 {
		log.Printf("Server error: %v", err)
	}

	c.JSON(err.HTTPCode, ErrorResponse{Error: err})
}

// HandleError is the shortcut used by handlers.
func HandleError(c *gin.Context, err *AppError) {
	handler := &GinErrorHandler{Debug: true}
	handler.HandleGinError(c, err)
}
