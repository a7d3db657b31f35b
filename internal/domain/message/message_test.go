package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		tmpl     string
		params   Params
		expected string
	}{
		{
			name:     "single placeholder",
			tmpl:     "no more than %{max_length} characters",
			params:   Params{"max_length": 256},
			expected: "no more than 256 characters",
		},
		{
			name:     "repeated and multiple placeholders",
			tmpl:     "%{a}-%{b}-%{a}",
			params:   Params{"a": "x", "b": 2},
			expected: "x-2-x",
		},
		{
			name:     "missing value keeps placeholder",
			tmpl:     "hello %{name}",
			params:   Params{"other": 1},
			expected: "hello %{name}",
		},
		{
			name:     "nil params",
			tmpl:     "static %{text}",
			params:   nil,
			expected: "static %{text}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.tmpl, tt.params))
		})
	}
}

func TestPluralize(t *testing.T) {
	const (
		singular = "%{count} character"
		plural   = "%{count} characters"
	)

	tests := []struct {
		count    int
		expected string
	}{
		{count: 0, expected: "0 characters"},
		{count: 1, expected: "1 character"},
		{count: 2, expected: "2 characters"},
		{count: 256, expected: "256 characters"},
	}

	for _, tt := range tests {
		got := Pluralize(tt.count, singular, plural, Params{"count": tt.count})
		assert.Equal(t, tt.expected, got)
	}
}
