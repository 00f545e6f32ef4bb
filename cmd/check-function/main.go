package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Lllllllleong/resultwatch/internal/config"
	"github.com/Lllllllleong/resultwatch/internal/models"
	"github.com/Lllllllleong/resultwatch/internal/services"
)

var (
	checker *services.Checker
	once    sync.Once
	initErr error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Cloud Scheduler publishes to Pub/Sub, which arrives as a CloudEvent.
	functions.CloudEvent("CheckResults", checkResults)
	functions.HTTP("CheckResultsHTTP", checkResultsHTTP)
}

// main is required by the Go Functions Framework.
func main() {}

func setup() error {
	once.Do(func() {
		var cfg *config.Config
		cfg, initErr = config.Load(os.Getenv("RESULTWATCH_CONFIG"))
		if initErr != nil {
			return
		}
		// clients live as long as the instance
		checker, _, initErr = services.NewResultChecker(context.Background(), cfg)
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
	}
	return initErr
}

func checkResults(ctx context.Context, e cloudevents.Event) error {
	if err := setup(); err != nil {
		return err
	}
	slog.Info("Received scheduled check.", "eventId", e.ID(), "source", e.Source())

	// NotReady is a normal outcome; only a failed run marks the invocation failed.
	_, err := checker.Check(ctx)
	return err
}

func checkResultsHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := setup(); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(models.CheckResponse{Outcome: models.Failed.String(), Error: err.Error()})
		return
	}

	res, err := checker.Check(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
	if encErr := json.NewEncoder(w).Encode(res.Response(err)); encErr != nil {
		slog.Error("Failed to write response.", "error", encErr)
	}
}
