package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLength(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name     string
		value    any
		min      int
		allowNil bool
		want     any
		wantErr  string
	}{
		{name: "valid", value: "Chess", min: 2, want: "Chess"},
		{name: "returns untrimmed", value: "  Go  ", min: 2, want: "  Go  "},
		{name: "whitespace only", value: "    ", min: 1, wantErr: "Name must be at least 1 characters"},
		{name: "too short after trim", value: " a ", min: 2, wantErr: "Name must be at least 2 characters"},
		{name: "counts runes", value: "ÄÖ", min: 2, want: "ÄÖ"},
		{name: "nil rejected", value: nil, min: 2, wantErr: "Name cannot be empty"},
		{name: "nil allowed", value: nil, min: 2, allowNil: true, want: nil},
		{name: "nil pointer allowed", value: (*string)(nil), min: 2, allowNil: true, want: nil},
		{name: "pointer value", value: str("Pointer"), min: 2, want: "Pointer"},
		{name: "number", value: json.Number("12"), min: 1, wantErr: "Name must be a string"},
		{name: "bool", value: true, min: 1, wantErr: "Name must be a string"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateLength("Name", tc.value, tc.min, tc.allowNil)
			if tc.wantErr != "" {
				require.EqualError(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFieldValidatorsUseTheirLabels(t *testing.T) {
	_, err := ValidateGameTitle("C")
	assert.EqualError(t, err, "Game title must be at least 2 characters")

	_, err = ValidatePublisherName(nil)
	assert.EqualError(t, err, "Publisher name cannot be empty")

	_, err = ValidateCategoryName("")
	assert.EqualError(t, err, "Category name must be at least 1 characters")

	_, err = ValidateGameDescription("too short")
	assert.EqualError(t, err, "Description must be at least 10 characters")

	description, err := ValidatePublisherDescription(nil)
	require.NoError(t, err)
	assert.Nil(t, description)

	description, err = ValidateGameDescription("Long enough to pass")
	require.NoError(t, err)
	require.NotNil(t, description)
	assert.Equal(t, "Long enough to pass", *description)
}

func TestValidateStarRating(t *testing.T) {
	tests := []struct {
		value   any
		want    *float64
		wantErr string
	}{
		{value: nil},
		{value: json.Number("0"), want: ptr(0.0)},
		{value: json.Number("5"), want: ptr(5.0)},
		{value: 4.2, want: ptr(4.2)},
		{value: 3, want: ptr(3.0)},
		{value: json.Number("-0.1"), wantErr: "starRating must be between 0 and 5"},
		{value: 5.01, wantErr: "starRating must be between 0 and 5"},
		{value: "4", wantErr: "starRating must be a number"},
		{value: false, wantErr: "starRating must be a number"},
	}

	for _, tc := range tests {
		got, err := ValidateStarRating(tc.value)
		if tc.wantErr != "" {
			assert.EqualError(t, err, tc.wantErr, "value %v", tc.value)
			continue
		}
		require.NoError(t, err, "value %v", tc.value)
		assert.Equal(t, tc.want, got, "value %v", tc.value)
	}
}

func TestParseReferenceID(t *testing.T) {
	tests := []struct {
		value   any
		want    int64
		wantErr string
	}{
		{value: json.Number("7"), want: 7},
		{value: json.Number("7.0"), want: 7},
		{value: float64(3), want: 3},
		{value: int64(9), want: 9},
		{value: 2, want: 2},
		{value: nil, wantErr: "publisherId cannot be empty"},
		{value: json.Number("1.5"), wantErr: "publisherId must be an integer"},
		{value: "7", wantErr: "publisherId must be an integer"},
		{value: 2.5, wantErr: "publisherId must be an integer"},
		{value: json.Number("1e30"), wantErr: "publisherId must be an integer"},
		{value: json.Number("99999999999999999999"), wantErr: "publisherId must be an integer"},
		{value: 1e30, wantErr: "publisherId must be an integer"},
		{value: json.Number("-1e30"), wantErr: "publisherId must be an integer"},
	}

	for _, tc := range tests {
		got, err := ParseReferenceID(FieldPublisherID, tc.value)
		if tc.wantErr != "" {
			assert.EqualError(t, err, tc.wantErr, "value %v", tc.value)
			continue
		}
		require.NoError(t, err, "value %v", tc.value)
		assert.Equal(t, tc.want, got)
	}
}

func ptr[T any](v T) *T { return &v }
