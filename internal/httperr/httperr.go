package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

var defaultMessages = map[string]string{
	CodeAuthenticationFailed: "Invalid credentials.",
	CodePermissionDenied:     "Access denied.",
	CodeNotFound:             "Not found.",
	CodeUnsupportedFormat:    "Only CSV files are allowed.",
	CodeInvalidEncoding:      "The file is not valid UTF-8 text.",
	CodeValidationFailed:     "Invalid input.",
	CodeConflict:             "Already exists.",
	CodeStorageError:         "Something went wrong. Please try again.",
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// Status maps a business code to an HTTP status.
func Status(code string) int {
	switch code {
	case CodeAuthenticationFailed:
		return http.StatusUnauthorized
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case CodeInvalidEncoding:
		return http.StatusUnprocessableEntity
	case CodeValidationFailed:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message is the user-facing text for err. Storage failures never leak
// their cause.
func Message(err error) string {
	var be BusinessError
	if errors.As(err, &be) {
		if be.Message != "" && be.Code != CodeStorageError {
			return be.Message
		}
		return defaultMessages[be.Code]
	}
	return defaultMessages[CodeStorageError]
}

// Abort writes err as JSON and stops the handler chain.
func Abort(c *gin.Context, err error) {
	code := CodeOf(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(Status(code), HTTPError{
		Code:    code,
		Message: Message(err),
	})
}
