package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"coursetutor/internal/session"
	"coursetutor/internal/source"
)

// makeAskHandler creates the ask_unit tool handler. The flow per call:
// 1. Optionally switch the generation model (clears conversation memory)
// 2. Select the requested unit (index built lazily on first use)
// 3. Run the retrieval -> prompt -> generation pipeline
// 4. Return the aggregated answer (MCP tools return whole results, so the
// fragment stream is drained server-side)
func makeAskHandler(sess *session.Session) func(
	context.Context, *mcp.CallToolRequest, AskUnitInput,
) (*mcp.CallToolResult, AskUnitOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskUnitInput) (
		*mcp.CallToolResult, AskUnitOutput, error,
	) {
		if input.Model != "" {
			if err := sess.SetModel(input.Model); err != nil {
				return nil, AskUnitOutput{}, err
			}
		}
		if err := sess.SelectUnit(input.Unit); err != nil {
			return nil, AskUnitOutput{}, err
		}

		answer, err := sess.Ask(ctx, input.Question, nil)
		if err != nil {
			// Out-of-scope is an answer, not a failure.
			if errors.Is(err, session.ErrOutOfScope) {
				return nil, AskUnitOutput{
					Unit:    input.Unit,
					Model:   sess.Model(),
					Message: "The selected unit's material does not cover this question.",
				}, nil
			}
			return nil, AskUnitOutput{}, fmt.Errorf("answer question: %w", err)
		}

		return nil, AskUnitOutput{
			Answer: answer,
			Unit:   input.Unit,
			Model:  sess.Model(),
		}, nil
	}
}

// makeListUnitsHandler creates the list_units tool handler.
func makeListUnitsHandler(catalog *source.Catalog) func(
	context.Context, *mcp.CallToolRequest, ListUnitsInput,
) (*mcp.CallToolResult, ListUnitsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListUnitsInput) (
		*mcp.CallToolResult, ListUnitsOutput, error,
	) {
		units := catalog.Units()
		infos := make([]UnitInfo, 0, len(units))
		for _, u := range units {
			infos = append(infos, UnitInfo{Key: u.Key, Name: u.Name})
		}
		return nil, ListUnitsOutput{Units: infos, Count: len(infos)}, nil
	}
}

// makeResetHandler creates the reset_session tool handler.
func makeResetHandler(sess *session.Session) func(
	context.Context, *mcp.CallToolRequest, ResetSessionInput,
) (*mcp.CallToolResult, ResetSessionOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ResetSessionInput) (
		*mcp.CallToolResult, ResetSessionOutput, error,
	) {
		sess.Clear()
		return nil, ResetSessionOutput{Cleared: true}, nil
	}
}
