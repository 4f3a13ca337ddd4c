package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleSettings struct {
	Separator  string `yaml:"csv_separator" validate:"required,separator"`
	BasePeriod int    `yaml:"base_period" validate:"gte=1900,lte=2100"`
	Output     string `yaml:"output" validate:"oneof=console file both"`
	File       string `yaml:"file" validate:"omitempty,filename"`
}

func TestStructValidator_Valid(t *testing.T) {
	v := NewStructValidator("yaml")
	err := v.Validate(sampleSettings{Separator: ";", BasePeriod: 2020, Output: "both", File: "results.csv"})
	assert.NoError(t, err)
}

func TestStructValidator_Invalid(t *testing.T) {
	v := NewStructValidator("yaml")

	tests := []struct {
		name     string
		settings sampleSettings
		field    string
		message  string
	}{
		{
			name:     "separator too long",
			settings: sampleSettings{Separator: ";;", BasePeriod: 2020, Output: "file"},
			field:    "csv_separator",
			message:  "single character",
		},
		{
			name:     "quote separator",
			settings: sampleSettings{Separator: `"`, BasePeriod: 2020, Output: "file"},
			field:    "csv_separator",
			message:  "single character",
		},
		{
			name:     "base period out of range",
			settings: sampleSettings{Separator: ",", BasePeriod: 20, Output: "file"},
			field:    "base_period",
			message:  "greater than or equal to 1900",
		},
		{
			name:     "unknown output",
			settings: sampleSettings{Separator: ",", BasePeriod: 2020, Output: "syslog"},
			field:    "output",
			message:  "must be one of: console, file, both",
		},
		{
			name:     "file with path",
			settings: sampleSettings{Separator: ",", BasePeriod: 2020, Output: "file", File: "../x.csv"},
			field:    "file",
			message:  "plain file name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.settings)
			require.Error(t, err)

			var verrs Errors
			require.True(t, errors.As(err, &verrs))
			require.Len(t, verrs, 1)
			assert.Contains(t, verrs[0].Field, tt.field)
			assert.Contains(t, verrs[0].Message, tt.message)
			assert.Contains(t, err.Error(), "validation failed")
		})
	}
}

func TestStructValidator_CollectsAllFields(t *testing.T) {
	err := NewStructValidator("yaml").Validate(sampleSettings{})
	require.Error(t, err)

	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 3)
}
