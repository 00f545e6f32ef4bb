package services

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/Lllllllleong/resultwatch/internal/models"
)

// Ledger records every run and answers whether a run has already published
// the results.
type Ledger interface {
	Published(ctx context.Context) (bool, string, error)
	Record(ctx context.Context, rec models.RunRecord) error
}

type FirestoreLedger struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreLedger(client *firestore.Client, collection string) *FirestoreLedger {
	return &FirestoreLedger{client: client, collection: collection}
}

// Published reports whether any earlier run finished with outcome success,
// and that run's id.
func (l *FirestoreLedger) Published(ctx context.Context) (bool, string, error) {
	docs, err := l.client.Collection(l.collection).
		Where("outcome", "==", models.Success.String()).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return false, "", fmt.Errorf("failed to query for published runs: %w", err)
	}
	if len(docs) > 0 {
		return true, docs[0].Ref.ID, nil
	}
	return false, "", nil
}

func (l *FirestoreLedger) Record(ctx context.Context, rec models.RunRecord) error {
	if _, err := l.client.Collection(l.collection).Doc(rec.RunID).Set(ctx, rec); err != nil {
		return fmt.Errorf("failed to write run record %s: %w", rec.RunID, err)
	}
	return nil
}
