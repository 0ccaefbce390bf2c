package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/akave-ai/logviewer/internal/propertyeditor"
	"github.com/akave-ai/logviewer/internal/response"
)

// PropertyEditorHandler serves the date/time property editor configuration.
type PropertyEditorHandler struct {
	DateTime propertyeditor.ConfigurationEditor
}

func NewPropertyEditorHandler() *PropertyEditorHandler {
	return &PropertyEditorHandler{DateTime: propertyeditor.NewDateTimeConfigurationEditor()}
}

// GetDateTimeConfig returns the default configuration
// (GET /api/propertyeditors/datetime/config).
func (h *PropertyEditorHandler) GetDateTimeConfig(c echo.Context) error {
	return response.OK(c, h.DateTime.DefaultConfiguration(), "")
}

// PostDateTimeEditorConfig materializes a stored configuration for the value
// editor (POST /api/propertyeditors/datetime/config/editor). An empty body
// stands for the configuration of a new property.
func (h *PropertyEditorHandler) PostDateTimeEditorConfig(c echo.Context) error {
	var cfg map[string]any
	if err := c.Bind(&cfg); err != nil {
		return response.BadRequest(c, "invalid JSON body", err.Error())
	}
	if cfg == nil {
		return response.OK(c, h.DateTime.ToValueEditor(propertyeditor.NewDateTimeConfiguration()), "")
	}
	return response.OK(c, h.DateTime.ToValueEditor(cfg), "")
}
