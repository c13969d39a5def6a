package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestInit_EmptyDSNIsNoop(t *testing.T) {
	shutdown := Init(Config{}, zerolog.Nop())
	assert.NotNil(t, shutdown)
	assert.NotPanics(t, shutdown)
}

func TestCaptureAndBreadcrumb_WithoutClient(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		CaptureError(ctx, errors.New("boom"))
		CaptureError(ctx, nil)
		AddBreadcrumb(ctx, "ragflow", "GET /datasets", map[string]interface{}{"status": 200})
	})
}
