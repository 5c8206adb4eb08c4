package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		verbose   bool
		wantDebug bool
		wantInfo  bool
	}{
		{name: "default shows warnings only", wantDebug: false, wantInfo: false},
		{name: "verbose shows info", verbose: true, wantDebug: false, wantInfo: true},
		{name: "debug shows everything", debug: true, wantDebug: true, wantInfo: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := WithLogger(context.Background(), New(&buf, tt.debug, tt.verbose))

			Debug(ctx, "debug message")
			Info(ctx, "info message")
			Warn(ctx, "warn message")

			out := buf.String()
			assert.Equal(t, tt.wantDebug, strings.Contains(out, "debug message"))
			assert.Equal(t, tt.wantInfo, strings.Contains(out, "info message"))
			assert.Contains(t, out, "warn message")
		})
	}
}

func TestWith_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(&buf, false, true))
	ctx = With(ctx, "issue_id", 42)

	Info(ctx, "rendering")
	Error(ctx, "failed", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "issue_id=42")
	assert.Contains(t, out, "boom")
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}
