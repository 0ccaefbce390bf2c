package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/akave-ai/logviewer/internal/auth"
	"github.com/akave-ai/logviewer/internal/logging"
	"github.com/akave-ai/logviewer/internal/logviewer"
	"github.com/akave-ai/logviewer/internal/model"
	"github.com/akave-ai/logviewer/internal/response"
)

// MsgLogsTooLarge is the problem detail returned when the window is too big
// for the log source to open.
const MsgLogsTooLarge = "Unable to view logs, due to size"

// dateLayouts are tried in order for startDate and endDate.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// LogViewerHandler serves /api/logviewer. It forwards to a Viewer and owns
// no state besides the level switch it shares with the root logger.
type LogViewerHandler struct {
	Viewer logviewer.Viewer
	Levels *logging.LevelSwitch
	Now    func() time.Time
	// Location applies to dates sent without a zone. The log files are
	// stamped in the same location.
	Location *time.Location
	Logger   zerolog.Logger
}

// NewLogViewerHandler panics when viewer or levels is nil.
func NewLogViewerHandler(viewer logviewer.Viewer, levels *logging.LevelSwitch, logger zerolog.Logger) *LogViewerHandler {
	if viewer == nil {
		panic("handler: nil log viewer")
	}
	if levels == nil {
		panic("handler: nil level switch")
	}
	return &LogViewerHandler{Viewer: viewer, Levels: levels, Now: time.Now, Location: time.Local, Logger: logger}
}

type savedSearchRequest struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

type setLogLevelRequest struct {
	EventLevel string `json:"eventLevel" validate:"required,loglevel"`
}

// CanViewLogs reports whether the window can be opened (GET /can-view-logs).
func (h *LogViewerHandler) CanViewLogs(c echo.Context) error {
	period, err := h.period(c)
	if err != nil {
		return response.BadRequest(c, "invalid date range", err.Error())
	}
	return response.OK(c, h.canView(period), "")
}

// GetNumberOfErrors returns the error count in the window (GET /error-count).
func (h *LogViewerHandler) GetNumberOfErrors(c echo.Context) error {
	period, ok, err := h.guardedPeriod(c)
	if !ok {
		return err
	}
	n, err := h.Viewer.GetNumberOfErrors(c.Request().Context(), period)
	if err != nil {
		return h.internal(c, "count errors", err)
	}
	return response.OK(c, n, "")
}

// GetLogLevelCounts returns entry counts per level (GET /level-counts).
func (h *LogViewerHandler) GetLogLevelCounts(c echo.Context) error {
	period, ok, err := h.guardedPeriod(c)
	if !ok {
		return err
	}
	counts, err := h.Viewer.GetLogLevelCounts(c.Request().Context(), period)
	if err != nil {
		return h.internal(c, "count levels", err)
	}
	return response.OK(c, counts, "")
}

// GetMessageTemplates returns distinct templates, most frequent first
// (GET /message-templates).
func (h *LogViewerHandler) GetMessageTemplates(c echo.Context) error {
	period, ok, err := h.guardedPeriod(c)
	if !ok {
		return err
	}
	templates, err := h.Viewer.GetMessageTemplates(c.Request().Context(), period)
	if err != nil {
		return h.internal(c, "list message templates", err)
	}
	return response.OK(c, templates, "")
}

// GetLogs returns one page of entries (GET /logs).
func (h *LogViewerHandler) GetLogs(c echo.Context) error {
	pageNumber := 1
	if err := echo.QueryParamsBinder(c).Int("pageNumber", &pageNumber).BindError(); err != nil {
		return response.BadRequest(c, "invalid pageNumber", err.Error())
	}
	period, ok, err := h.guardedPeriod(c)
	if !ok {
		return err
	}

	direction := model.Descending
	if v := c.QueryParam("orderDirection"); v != "" {
		direction = model.ParseDirection(v)
	}
	params := c.QueryParams()
	levels := append(append([]string(nil), params["logLevels[]"]...), params["logLevels"]...)

	page, err := h.Viewer.GetLogs(c.Request().Context(), period, model.LogQuery{
		FilterExpression: c.QueryParam("filterExpression"),
		PageNumber:       pageNumber,
		OrderDirection:   direction,
		LogLevels:        levels,
	})
	if err != nil {
		return h.internal(c, "query logs", err)
	}
	return response.OK(c, page, "")
}

// GetSavedSearches lists saved searches (GET /saved-searches).
func (h *LogViewerHandler) GetSavedSearches(c echo.Context) error {
	list, err := h.Viewer.GetSavedSearches(c.Request().Context())
	if err != nil {
		return h.internal(c, "list saved searches", err)
	}
	return response.OK(c, list, "")
}

// PostSavedSearch adds a saved search (POST /saved-searches).
func (h *LogViewerHandler) PostSavedSearch(c echo.Context) error {
	var req savedSearchRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid JSON body", err.Error())
	}
	list, err := h.Viewer.AddSavedSearch(c.Request().Context(), req.Name, req.Query)
	if err != nil {
		return h.internal(c, "add saved search", err)
	}
	return response.OK(c, list, "")
}

// DeleteSavedSearch removes a saved search (POST /saved-searches/delete).
func (h *LogViewerHandler) DeleteSavedSearch(c echo.Context) error {
	var req savedSearchRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid JSON body", err.Error())
	}
	list, err := h.Viewer.DeleteSavedSearch(c.Request().Context(), req.Name, req.Query)
	if err != nil {
		return h.internal(c, "delete saved search", err)
	}
	return response.OK(c, list, "")
}

// GetLogLevel returns the current minimum level (GET /log-level).
func (h *LogViewerHandler) GetLogLevel(c echo.Context) error {
	return response.OK(c, h.Viewer.GetLogLevel(), "")
}

// SetLogLevel replaces the minimum level (POST /log-level). The level comes
// from the eventLevel query parameter or the JSON body.
func (h *LogViewerHandler) SetLogLevel(c echo.Context) error {
	var req setLogLevelRequest
	if v := c.QueryParam("eventLevel"); v != "" {
		req.EventLevel = v
	} else if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid JSON body", err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "invalid eventLevel", err.Error())
	}
	level, err := model.ParseLogLevel(req.EventLevel)
	if err != nil {
		return response.BadRequest(c, "invalid eventLevel", err.Error())
	}

	previous := h.Levels.MinimumLevel()
	h.Levels.SetMinimumLevel(level)
	ev := h.Logger.Info()
	if principal, ok := auth.PrincipalFrom(c); ok {
		ev = ev.Str("by", principal.Subject)
	}
	ev.Stringer("from", previous).
		Stringer("to", level).
		Msg("log level changed")
	return response.OK(c, level.String(), "log level updated")
}

func (h *LogViewerHandler) canView(period model.LogTimePeriod) bool {
	return h.Viewer.CanHandleLargeLogs() || h.Viewer.CheckCanOpenLogs(period)
}

// guardedPeriod parses the window and applies the size guard. When ok is
// false the response has already been written and err is its result.
func (h *LogViewerHandler) guardedPeriod(c echo.Context) (model.LogTimePeriod, bool, error) {
	period, err := h.period(c)
	if err != nil {
		return period, false, response.BadRequest(c, "invalid date range", err.Error())
	}
	if !h.canView(period) {
		return period, false, response.ValidationProblem(c, MsgLogsTooLarge)
	}
	return period, true, nil
}

func (h *LogViewerHandler) period(c echo.Context) (model.LogTimePeriod, error) {
	start, err := parseDate(c.QueryParam("startDate"), h.Location)
	if err != nil {
		return model.LogTimePeriod{}, fmt.Errorf("startDate: %w", err)
	}
	end, err := parseDate(c.QueryParam("endDate"), h.Location)
	if err != nil {
		return model.LogTimePeriod{}, fmt.Errorf("endDate: %w", err)
	}
	return model.NewLogTimePeriod(start, end, h.Now()), nil
}

var errBadDate = errors.New("unrecognised date")

// parseDate returns nil for an empty value. Values without a zone are read
// in loc.
func parseDate(v string, loc *time.Location) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", errBadDate, v)
}

func (h *LogViewerHandler) internal(c echo.Context, op string, err error) error {
	h.Logger.Error().Err(err).Str("op", op).Str("path", c.Path()).Msg("log viewer request failed")
	return response.InternalError(c, op+" failed", err.Error())
}
