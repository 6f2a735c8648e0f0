package contract

import "context"

// ToolGateway executes the operations the model requested in one Acting
// step. Implementations run independent requests concurrently and must
// return one result per request, in request order; per-tool failures are
// reported inside the ToolResult, not as the error.
type ToolGateway interface {
	Execute(ctx context.Context, reqs []ToolRequest) ([]ToolResult, error)
}
