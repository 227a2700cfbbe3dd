package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestFromContext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	if got := FromContext(ctx); got != DefaultLogger() {
		t.Errorf("logger without context value, got: %v, expected default logger", got)
	}

	logger := zap.NewNop().Sugar()
	ctx = WithLogger(ctx, logger)
	if got := FromContext(ctx); got != logger {
		t.Errorf("logger from context, got: %v, expected: %v", got, logger)
	}
}

func TestLevelToZapLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in       string
		expected zapcore.Level
	}{
		{in: "debug", expected: zapcore.DebugLevel},
		{in: " INFO ", expected: zapcore.InfoLevel},
		{in: "ERROR", expected: zapcore.ErrorLevel},
		{in: "", expected: zapcore.WarnLevel},
		{in: "bogus", expected: zapcore.WarnLevel},
	}
	for _, test := range tests {
		if got := levelToZapLevel(test.in); got != test.expected {
			t.Errorf("level for %q, got: %v, expected: %v", test.in, got, test.expected)
		}
	}
}
