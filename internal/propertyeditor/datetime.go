package propertyeditor

// PickTimeKey enables the time part of the date/time picker.
const PickTimeKey = "pickTime"

// DateTimeConfiguration is the stored configuration of a date/time property.
type DateTimeConfiguration struct {
	Format     string `json:"format"`
	OffsetTime bool   `json:"offsetTime"`
}

// DefaultDateTimeFormat is the display format of a new date/time property.
const DefaultDateTimeFormat = "YYYY-MM-DD HH:mm:ss"

// NewDateTimeConfiguration returns the configuration of a new property.
func NewDateTimeConfiguration() DateTimeConfiguration {
	return DateTimeConfiguration{Format: DefaultDateTimeFormat}
}

// NewDateTimeConfigurationEditor returns the editor for date/time properties.
// The time picker is always on.
func NewDateTimeConfigurationEditor() ConfigurationEditor {
	return ConfigurationEditor{
		Defaults:  map[string]any{PickTimeKey: true},
		Overrides: map[string]any{PickTimeKey: true},
	}
}
