package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMappingError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := &MappingError{Mapping: "api", Message: "evaluation failed", Cause: cause}

	assert.Equal(t, "mapping api: evaluation failed", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, &MappingError{Mapping: "api"})
	assert.NotErrorIs(t, err, &MappingError{Mapping: "other"})
}

func TestMappingError_NoName(t *testing.T) {
	t.Parallel()

	err := &MappingError{Message: "bad state"}
	assert.Equal(t, "mapping error: bad state", err.Error())
}

func TestConfigError(t *testing.T) {
	t.Parallel()

	cause := errors.New("parse failure")
	err := &ConfigError{Field: "mappings[0].pattern", Message: "pattern is required", Cause: cause}

	assert.Equal(t, "config error at mappings[0].pattern: pattern is required", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestAdapterError(t *testing.T) {
	t.Parallel()

	err := &AdapterError{Handler: 42}

	assert.Contains(t, err.Error(), "int")
	assert.ErrorIs(t, err, ErrNoAdapter)
}
