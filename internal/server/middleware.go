package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aleph-Alpha/docsearch/internal/apperr"
	"github.com/Aleph-Alpha/docsearch/internal/logger"
)

// Request identity headers, set by the authenticating gateway in front of
// this service.
const (
	headerGroupUID  = "X-Group-UID"
	headerUserUID   = "X-User-UID"
	headerUserEmail = "X-User-Email"
)

// apiError is the external error shape. Internal details never leak; the
// message comes from the tagged application error only.
type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

// ErrorMapper translates tagged application errors into HTTP responses.
// It is the single place where error kinds meet status codes.
func ErrorMapper(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		kind := apperr.KindOf(err)
		status := statusForKind(kind)

		if status >= 500 {
			log.Error("request failed", err, map[string]interface{}{
				"path":   c.FullPath(),
				"status": status,
			})
		}

		msg := err.Error()
		if kind == apperr.KindInternal {
			msg = "internal error"
		}

		c.JSON(status, errorEnvelope{Error: apiError{
			Message: msg,
			Code:    kind.String(),
		}})
	}
}

func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalid:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnsupported:
		return http.StatusUnsupportedMediaType
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindTokenExpired:
		return http.StatusUnauthorized
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// identity is the caller extracted from the gateway headers.
type identity struct {
	GroupUID string
	UserUID  string
	Email    string
}

func identityFrom(c *gin.Context) (identity, error) {
	id := identity{
		GroupUID: c.GetHeader(headerGroupUID),
		UserUID:  c.GetHeader(headerUserUID),
		Email:    c.GetHeader(headerUserEmail),
	}
	if id.GroupUID == "" {
		return identity{}, apperr.New(apperr.KindInvalid, "missing "+headerGroupUID+" header")
	}
	return id, nil
}
