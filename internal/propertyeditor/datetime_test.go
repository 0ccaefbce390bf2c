package propertyeditor

import "testing"

func TestDateTimeDefaultConfiguration(t *testing.T) {
	editor := NewDateTimeConfigurationEditor()
	cfg := editor.DefaultConfiguration()
	if cfg[PickTimeKey] != true {
		t.Fatalf("default configuration should enable the time picker: %v", cfg)
	}
	if len(cfg) != 1 {
		t.Fatalf("default configuration should hold a single option: %v", cfg)
	}

	cfg[PickTimeKey] = false
	if editor.DefaultConfiguration()[PickTimeKey] != true {
		t.Fatalf("callers must not be able to mutate the defaults")
	}
}

func TestDateTimeToValueEditorForcesPickTime(t *testing.T) {
	editor := NewDateTimeConfigurationEditor()

	tests := []struct {
		name   string
		config any
	}{
		{"nil", nil},
		{"map with pickTime false", map[string]any{PickTimeKey: false, "format": "YYYY"}},
		{"typed configuration", DateTimeConfiguration{Format: "DD/MM/YYYY", OffsetTime: true}},
		{"pointer to typed configuration", &DateTimeConfiguration{Format: "HH:mm"}},
		{"not an object", 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := editor.ToValueEditor(tt.config)
			if out[PickTimeKey] != true {
				t.Fatalf("pickTime = %v, want true", out[PickTimeKey])
			}
		})
	}
}

func TestToValueEditorKeepsOtherOptions(t *testing.T) {
	editor := NewDateTimeConfigurationEditor()
	out := editor.ToValueEditor(DateTimeConfiguration{Format: "DD/MM/YYYY", OffsetTime: true})
	if out["format"] != "DD/MM/YYYY" || out["offsetTime"] != true {
		t.Fatalf("typed fields should survive the transformation: %v", out)
	}

	in := map[string]any{PickTimeKey: false}
	_ = editor.ToValueEditor(in)
	if in[PickTimeKey] != false {
		t.Fatalf("the input map must not be modified")
	}
}
