package response

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

// MIMEProblemJSON is the content type of ProblemDetails responses.
const MIMEProblemJSON = "application/problem+json"

// APIResponse is the standard success response shape.
type APIResponse struct {
	Data    any    `json:"data"`
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Path    string `json:"path"`
}

// ProblemDetails is an RFC 7807 body for validation failures.
type ProblemDetails struct {
	Type     string              `json:"type"`
	Title    string              `json:"title"`
	Status   int                 `json:"status"`
	Detail   string              `json:"detail,omitempty"`
	Instance string              `json:"instance,omitempty"`
	Errors   map[string][]string `json:"errors"`
}

// APIError is the standard error response shape.
type APIError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Path    string `json:"path"`
	Status  int    `json:"status"`
}

// pathFromContext returns the request path from Echo context.
func pathFromContext(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().URL.Path
}

// OK sends a 200 response with data.
func OK(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, APIResponse{
		Data:    data,
		Status:  http.StatusOK,
		Message: message,
		Path:    pathFromContext(c),
	})
}

// Error sends a JSON error response using APIError.
func Error(c echo.Context, status int, message, errDetail string) error {
	return c.JSON(status, APIError{
		Message: message,
		Error:   errDetail,
		Path:    pathFromContext(c),
		Status:  status,
	})
}

// BadRequest sends 400 with message and error detail.
func BadRequest(c echo.Context, message, errDetail string) error {
	return Error(c, http.StatusBadRequest, message, errDetail)
}

// InternalError sends 500 with message and error detail.
func InternalError(c echo.Context, message, errDetail string) error {
	return Error(c, http.StatusInternalServerError, message, errDetail)
}

// ValidationProblem sends 400 as application/problem+json with detail.
func ValidationProblem(c echo.Context, detail string) error {
	body, err := json.Marshal(ProblemDetails{
		Type:     "https://tools.ietf.org/html/rfc7231#section-6.5.1",
		Title:    "One or more validation errors occurred.",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: pathFromContext(c),
		Errors:   map[string][]string{},
	})
	if err != nil {
		return err
	}
	return c.Blob(http.StatusBadRequest, MIMEProblemJSON, body)
}
