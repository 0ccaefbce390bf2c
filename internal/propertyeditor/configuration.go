// Package propertyeditor supplies the configuration editing UIs need for
// property editors.
package propertyeditor

import (
	"encoding/json"
	"maps"
)

// ConfigurationEditor describes the configuration of a property editor:
// the defaults a new instance starts from, and the overrides applied every
// time a stored configuration is materialized for the value editor.
type ConfigurationEditor struct {
	Defaults  map[string]any
	Overrides map[string]any
}

// DefaultConfiguration returns a fresh copy of the defaults.
func (e ConfigurationEditor) DefaultConfiguration() map[string]any {
	out := make(map[string]any, len(e.Defaults))
	maps.Copy(out, e.Defaults)
	return out
}

// ToValueEditor converts configuration with the general transformation and
// then applies the overrides, which always win.
func (e ConfigurationEditor) ToValueEditor(configuration any) map[string]any {
	out := ToValueEditor(configuration)
	maps.Copy(out, e.Overrides)
	return out
}

// ToValueEditor is the general transformation from a stored configuration to
// the map handed to a value editor. nil gives an empty map, maps are copied,
// and any other value is converted through its JSON field names. Values that
// cannot be represented as a JSON object give an empty map.
func ToValueEditor(configuration any) map[string]any {
	switch c := configuration.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		out := make(map[string]any, len(c))
		maps.Copy(out, c)
		return out
	}
	data, err := json.Marshal(configuration)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}
