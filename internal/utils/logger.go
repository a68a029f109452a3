package utils

import (
	"go.uber.org/zap"
)

// NewLogger builds the process logger. Development mode uses the console
// encoder, anything else the production JSON encoder.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
