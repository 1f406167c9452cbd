package middleware

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hospital-portal/pkg/errors"
	"github.com/jwalitptl/hospital-portal/pkg/httputil"
)

var validationMessages = map[string]string{
	"required":   "Field is required",
	"email":      "Invalid email format",
	"min":        "Value is too short",
	"max":        "Value is too long",
	"oneof":      "Value is not allowed",
	"datetime":   "Date must be YYYY-MM-DD",
	"bloodgroup": "Unknown blood group",
}

// ErrorHandler turns the last error a handler attached with c.Error into the
// JSON error envelope. Validator errors list the offending fields.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last().Err

		var verrs validator.ValidationErrors
		if stderrors.As(lastErr, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				msg := validationMessages[fe.Tag()]
				if msg == "" {
					msg = fe.Error()
				}
				fields[fe.Field()] = msg
			}
			httputil.RespondWithValidationError(c, fields)
			return
		}

		err := classify(lastErr)
		if errors.Is(err, errors.ErrInternal) || !isAppError(err) {
			log.Error().
				Err(lastErr).
				Str("request_id", c.GetString(ContextRequestID)).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Msg("Request error")
		}
		httputil.RespondWithError(c, err)
	}
}

// classify maps body decoding failures onto bad requests.
func classify(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		maxErr    *http.MaxBytesError
	)
	switch {
	case stderrors.As(err, &syntaxErr), stderrors.As(err, &typeErr):
		return errors.BadRequest("malformed request body", err)
	case stderrors.As(err, &maxErr):
		return errors.BadRequest("request body too large", err)
	case stderrors.Is(err, io.EOF), stderrors.Is(err, io.ErrUnexpectedEOF):
		return errors.BadRequest("request body is required", err)
	}
	return err
}

func isAppError(err error) bool {
	var appErr *errors.AppError
	return stderrors.As(err, &appErr)
}
