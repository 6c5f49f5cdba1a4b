package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// traceEvent mirrors the §6 structured trace wire shape.
type traceEvent struct {
	Service       string `json:"service"`
	Phase         string `json:"phase"`
	CorrelationID string `json:"correlation_id,omitempty"`
	RunID         string `json:"run_id,omitempty"`
	TraceID       string `json:"trace_id,omitempty"`
	Path          string `json:"path"`
	Method        string `json:"method"`
	Status        int    `json:"status,omitempty"`
	DurationMs    int64  `json:"duration_ms,omitempty"`
	Message       string `json:"message"`
}

func emitTrace(ev traceEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Println(string(data))
}

// EvalTraceMiddleware emits request_start/request_end trace lines only for
// requests carrying X-Flaim-Eval-Run or X-Flaim-Eval-Trace — eval harnesses
// opt in explicitly, ordinary traffic is unaffected.
func EvalTraceMiddleware(c *fiber.Ctx) error {
	runID := c.Get("X-Flaim-Eval-Run")
	traceID := c.Get("X-Flaim-Eval-Trace")
	if runID == "" && traceID == "" {
		return c.Next()
	}

	correlationID := c.Get("X-Correlation-ID")
	start := time.Now()

	emitTrace(traceEvent{
		Service:       "auth-worker",
		Phase:         "request_start",
		CorrelationID: correlationID,
		RunID:         runID,
		TraceID:       traceID,
		Path:          c.Path(),
		Method:        c.Method(),
		Message:       "request received",
	})

	err := c.Next()

	emitTrace(traceEvent{
		Service:       "auth-worker",
		Phase:         "request_end",
		CorrelationID: correlationID,
		RunID:         runID,
		TraceID:       traceID,
		Path:          c.Path(),
		Method:        c.Method(),
		Status:        c.Response().StatusCode(),
		DurationMs:    time.Since(start).Milliseconds(),
		Message:       "request completed",
	})

	return err
}
