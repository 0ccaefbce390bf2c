package config

import (
	"github.com/go-playground/validator/v10"

	"github.com/akave-ai/logviewer/internal/model"
)

// NewValidator returns a validator with the "loglevel" tag registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		_, err := model.ParseLogLevel(fl.Field().String())
		return err == nil
	})
	return v
}

// MinimumLevel returns the configured initial log level.
func (l LoggingConfig) MinimumLevel() model.LogLevel {
	lvl, err := model.ParseLogLevel(l.Level)
	if err != nil {
		return model.LevelInformation
	}
	return lvl
}
