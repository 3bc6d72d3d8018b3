package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/peterldowns/testy/assert"
)

func TestParseLookback(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"6", 6, false},
		{"6M", 6, false},
		{" 12m ", 12, false},
		{"6 months", 6, false},
		{"1 Month", 1, false},
		{"36", 36, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"six", 0, true},
		{"", 0, true},
		{"2.5", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLookback(tt.in)
		if tt.wantErr {
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedInput))
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, got, tt.want)
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, UserMessage(nil), "")
	assert.Equal(t, UserMessage(fmt.Errorf("fetch daily bars: %w", ErrNotFound)), "No data for this ticker")
	assert.Equal(t, UserMessage(ErrFormatChanged), "Unexpected error occurred")
	assert.Equal(t, UserMessage(errors.New("boom")), "Unexpected error occurred")

	bad := fmt.Errorf("%w: rows 3 outside [5, 20]", ErrMalformedInput)
	assert.Equal(t, UserMessage(bad), bad.Error())
}

func TestPreview(t *testing.T) {
	r := &Result{Rows: 2, Display: make([]ReturnBar, 5)}
	assert.Equal(t, len(r.Preview()), 2)

	r.Rows = 10
	assert.Equal(t, len(r.Preview()), 5)
}
