package sentry

import (
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"

	"tentacles/pkg/errors"
)

func TestConvertLevel(t *testing.T) {
	tests := map[errors.Level]sentry.Level{
		errors.LevelDebug:   sentry.LevelDebug,
		errors.LevelInfo:    sentry.LevelInfo,
		errors.LevelWarning: sentry.LevelWarning,
		errors.LevelError:   sentry.LevelError,
		errors.LevelFatal:   sentry.LevelFatal,
		errors.Level("?"):   sentry.LevelInfo,
	}
	for in, expected := range tests {
		assert.Equal(t, expected, convertLevel(in), in)
	}
}

func TestNewWithoutDSN(t *testing.T) {
	// an empty DSN disables sending but is valid
	tracker, err := New("", "test")
	assert.NoError(t, err)
	assert.NotNil(t, tracker)
}
