package gcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkflowParent(t *testing.T) {
	require.Equal(t,
		"projects/p1/locations/us-central1/workflows/publish-results",
		WorkflowParent("p1", "us-central1", "publish-results"))
}

func TestNewFirestoreClientRequiresProject(t *testing.T) {
	_, err := NewFirestoreClient(context.Background(), "")
	require.Error(t, err)
}
