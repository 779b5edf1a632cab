package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/beesaferoot/rental-engine/internal/apperr"
)

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusFor maps an error kind onto its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindInvalidInput, apperr.KindBusinessRule:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes err and stops the handler chain. Internal failures
// are logged with the request id and reported with a generic message.
func (g *Gateway) abortWithError(c *gin.Context, err error) {
	e := apperr.As(err)
	status := StatusFor(e.Kind)
	message := e.Message
	if e.Kind == apperr.KindInternal {
		g.logger.ErrorContext(c.Request.Context(), "request failed",
			"request_id", requestID(c),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		message = "internal server error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorBody{Error: e.Code(), Message: message})
}

// bindError turns a binding or validation failure into InvalidInput.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describeField(fe))
		}
		return apperr.InvalidInput("%s", strings.Join(msgs, "; "))
	}
	return apperr.InvalidInput("malformed request body: %v", err)
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "isodate":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	case "role":
		return fmt.Sprintf("%s must be one of OWNER, TENANT, ADMIN", fe.Field())
	default:
		return fmt.Sprintf("%s failed validation %q", fe.Field(), fe.Tag())
	}
}
