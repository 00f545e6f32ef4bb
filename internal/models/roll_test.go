package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSequencePriorityFirst(t *testing.T) {
	r := RollRange{Prefix: "24UECC", Start: 8002, End: 8006, Priority: 8004}
	require.Equal(t, []int{8004, 8002, 8003, 8005, 8006}, r.Sequence())
}

func TestSequenceProperties(t *testing.T) {
	testCases := []RollRange{
		{Prefix: "X", Start: 1, End: 1, Priority: 1},
		{Prefix: "X", Start: 1, End: 10, Priority: 1},
		{Prefix: "X", Start: 1, End: 10, Priority: 10},
		{Prefix: "X", Start: 8002, End: 8069, Priority: 8022},
		{Prefix: "X", Start: -3, End: 3, Priority: 0},
	}

	for _, r := range testCases {
		seq := r.Sequence()
		require.Len(t, seq, r.Size())
		require.Equal(t, r.Priority, seq[0])

		seen := map[int]bool{}
		for _, n := range seq {
			require.False(t, seen[n], "duplicate roll %d", n)
			require.GreaterOrEqual(t, n, r.Start)
			require.LessOrEqual(t, n, r.End)
			seen[n] = true
		}
		for i := 2; i < len(seq); i++ {
			require.Less(t, seq[i-1], seq[i])
		}
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, RollRange{Prefix: "A", Start: 1, End: 5, Priority: 3}.Validate())
	require.Error(t, RollRange{Prefix: "", Start: 1, End: 5, Priority: 3}.Validate())
	require.Error(t, RollRange{Prefix: "A", Start: 5, End: 1, Priority: 3}.Validate())
	require.Error(t, RollRange{Prefix: "A", Start: 1, End: 5, Priority: 6}.Validate())
	require.Error(t, RollRange{Prefix: "A", Start: 1, End: 5, Priority: 0}.Validate())
}

func TestLabel(t *testing.T) {
	r := RollRange{Prefix: "24UECC"}
	require.Equal(t, "24UECC8022", r.Label(8022))
}

func TestBatchReportCounts(t *testing.T) {
	b := BatchReport{Items: []ItemResult{
		{Roll: 1, Status: ItemDownloaded},
		{Roll: 2, Status: ItemSkipped, Reason: "boom"},
		{Roll: 3, Status: ItemDownloaded},
	}}
	require.Equal(t, 2, b.Downloaded())
	require.Equal(t, 1, b.Skipped())
	require.Equal(t, "success", Success.String())
	require.Equal(t, "not-ready", NotReady.String())
}
