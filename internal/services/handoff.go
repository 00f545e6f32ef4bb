package services

import (
	"context"
	"encoding/json"
	"fmt"

	executions "cloud.google.com/go/workflows/executions/apiv1"
	"cloud.google.com/go/workflows/executions/apiv1/executionspb"

	"github.com/Lllllllleong/resultwatch/internal/gcp"
	"github.com/Lllllllleong/resultwatch/internal/models"
)

// Handoff starts downstream processing of a published result.
type Handoff interface {
	Start(ctx context.Context, payload models.HandoffPayload) (string, error)
}

// WorkflowHandoff starts a Cloud Workflows execution with the payload as its
// argument.
type WorkflowHandoff struct {
	client *executions.Client
	parent string
}

func NewWorkflowHandoff(client *executions.Client, projectID, location, workflowID string) *WorkflowHandoff {
	return &WorkflowHandoff{
		client: client,
		parent: gcp.WorkflowParent(projectID, location, workflowID),
	}
}

// Start returns the execution name.
func (h *WorkflowHandoff) Start(ctx context.Context, payload models.HandoffPayload) (string, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal workflow payload: %w", err)
	}
	req := &executionspb.CreateExecutionRequest{
		Parent: h.parent,
		Execution: &executionspb.Execution{
			Argument: string(payloadBytes),
		},
	}
	exec, err := h.client.CreateExecution(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to trigger workflow execution: %w", err)
	}
	return exec.GetName(), nil
}
