package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/AnTengye/contractdesk/backend/export"
	"github.com/AnTengye/contractdesk/backend/pipeline"
	"github.com/AnTengye/contractdesk/backend/pkg/logger"
	"github.com/AnTengye/contractdesk/backend/service"
)

func init() {
	// report validation failures under their JSON names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// validationErrors maps each invalid field to the rule it broke
func validationErrors(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}

// bindError answers a failed request bind with 400 and, when the body parsed
// but broke a rule, the field map
func bindError(c *gin.Context, err error) {
	if fields := validationErrors(err); fields != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
}

// respondError maps service and pipeline errors to their HTTP status
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrContractNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
	case errors.Is(err, service.ErrNoAttachment), errors.Is(err, service.ErrBlobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No attachment"})
	case errors.Is(err, service.ErrAttachmentTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Attachment too large"})
	case errors.Is(err, pipeline.ErrEmptySelection):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No contracts selected"})
	case errors.Is(err, export.ErrNoRows):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No data to export"})
	default:
		logger.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
