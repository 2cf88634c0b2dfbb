package failure_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/UnknownOlympus/compass/internal/failure"
	"github.com/UnknownOlympus/compass/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want models.Reason
	}{
		{"nil error", nil, models.ReasonOK},
		{"no match", fmt.Errorf("nominatim: %w", failure.ErrNoMatch), models.ReasonNoMatch},
		{"invalid input", fmt.Errorf("radius: %w", failure.ErrInvalidInput), models.ReasonInvalidInput},
		{"transport", fmt.Errorf("%w: connection refused", failure.ErrTransport), models.ReasonTransport},
		{"malformed", fmt.Errorf("%w: unexpected EOF", failure.ErrMalformed), models.ReasonMalformed},
		{"deadline", fmt.Errorf("request: %w", context.DeadlineExceeded), models.ReasonTransport},
		{"canceled", context.Canceled, models.ReasonTransport},
		{"unknown", errors.New("boom"), models.ReasonUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, failure.Classify(tt.err))
		})
	}
}

func TestReasonFailed(t *testing.T) {
	assert.False(t, models.ReasonOK.Failed())
	assert.False(t, models.ReasonNoMatch.Failed())
	assert.True(t, models.ReasonTransport.Failed())
	assert.True(t, models.ReasonMalformed.Failed())
	assert.True(t, models.ReasonInvalidInput.Failed())
	assert.True(t, models.ReasonUnknown.Failed())
}
