package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/oleiade/autoversion/internal/logging"
)

// toolMiddleware wraps a ToolHandler to add correlation ID, logging and recovery.
type toolMiddleware struct {
	name string
	next ToolHandler
}

func (m toolMiddleware) Handle(ctx context.Context, request mcp.CallToolRequest) (res *mcp.CallToolResult, err error) {
	// Correlation and timing
	requestID := uuid.New().String()
	ctx = logging.ContextWithRequestID(ctx, requestID)
	start := time.Now()

	// Extract arguments for logging
	args := request.GetArguments()
	logging.RequestStart(ctx, m.name, args)

	// Panic safety: a panicking handler yields an error result, it never
	// tears down the server.
	defer func() {
		if rec := recover(); rec != nil {
			panicErr := fmt.Errorf("panic: %v", rec)
			logging.RequestEnd(ctx, m.name, false, time.Since(start), panicErr)
			res = mcp.NewToolResultError(fmt.Sprintf("internal error in %s handler", m.name))
			err = nil
		}
	}()

	res, err = m.next.Handle(ctx, request)
	logging.RequestEnd(ctx, m.name, err == nil, time.Since(start), err)
	return res, err
}

// WithToolMiddleware decorates a ToolHandler with centralized boilerplate.
func WithToolMiddleware(name string, h ToolHandler) ToolHandler {
	return toolMiddleware{name: name, next: h}
}

// promptMiddleware wraps a PromptHandler to add correlation ID, logging and recovery.
type promptMiddleware struct {
	name string
	next PromptHandler
}

func (m promptMiddleware) Handle(ctx context.Context, request mcp.GetPromptRequest) (res *mcp.GetPromptResult, err error) {
	requestID := uuid.New().String()
	ctx = logging.ContextWithRequestID(ctx, requestID)
	start := time.Now()

	// Normalize arguments to map[string]interface{} for logging
	args := map[string]interface{}{}
	for k, v := range request.Params.Arguments {
		args[k] = v
	}
	logging.RequestStart(ctx, m.name, args)

	defer func() {
		if rec := recover(); rec != nil {
			panicErr := fmt.Errorf("panic: %v", rec)
			logging.RequestEnd(ctx, m.name, false, time.Since(start), panicErr)
			res = nil
			err = panicErr
		}
	}()

	res, err = m.next.Handle(ctx, request)
	logging.RequestEnd(ctx, m.name, err == nil, time.Since(start), err)
	return res, err
}

// WithPromptMiddleware decorates a PromptHandler with centralized boilerplate.
func WithPromptMiddleware(name string, h PromptHandler) PromptHandler {
	return promptMiddleware{name: name, next: h}
}
