package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"recruit_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestEndSpanSeparatesRefusalsFromFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"already completed", &util.AlreadyCompletedError{AttemptID: 7}, codes.Unset},
		{"not active", fmt.Errorf("record answer: %w", util.ErrAttemptNotActive), codes.Unset},
		{"permission", util.ErrPermissionDenied, codes.Unset},
		{"storage", fmt.Errorf("load attempt 7: %w", errors.New("driver: bad connection")), codes.Error},
		{"ok", nil, codes.Unset},
	}

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	for _, tc := range cases {
		_, span := tp.Tracer("test").Start(context.Background(), tc.name)
		endSpan(span, tc.err)
	}

	ended := rec.Ended()
	require.Len(t, ended, len(cases))
	for i, tc := range cases {
		assert.Equal(t, tc.name, ended[i].Name())
		assert.Equal(t, tc.want, ended[i].Status().Code, tc.name)
	}
}
