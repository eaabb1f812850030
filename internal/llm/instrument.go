package llm

import (
	"context"
	"fmt"
	"time"

	"contract-validator/internal/shared/metrics"
	"contract-validator/internal/shared/telemetry"
)

// Call runs one completion for a named pipeline stage, recording its
// outcome and latency. Errors are prefixed with the stage name.
func Call(ctx context.Context, client ChatClient, stage string, req ChatRequest) (string, error) {
	start := time.Now()
	raw, err := client.Complete(ctx, req)
	fields := map[string]any{
		"stage":       stage,
		"model":       req.Model,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		metrics.IncLLMRequest(stage, metrics.OutcomeFailed)
		fields["error"] = err
		telemetry.Error("llm.request.failed", fields)
		return "", fmt.Errorf("%s: %w", stage, err)
	}
	metrics.IncLLMRequest(stage, metrics.OutcomeSuccess)
	fields["response_bytes"] = len(raw)
	telemetry.Info("llm.request.complete", fields)
	return raw, nil
}
