package db

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"auth-graphql/metrics"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect creates the process-wide client and returns without waiting for the server.
// Connection state is reported from the driver's heartbeats for the lifetime of the
// client; the driver keeps reconnecting on its own.
func Connect(uri string, logger *slog.Logger, m *metrics.Metrics) (*mongo.Client, error) {
	w := newConnectionWatcher(logger, m)
	opts := options.Client().ApplyURI(uri).SetServerMonitor(w.monitor())

	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}
	return client, nil
}

// connectionWatcher logs every failed heartbeat and the first success after a failure
// (or after startup), and mirrors the last heartbeat result in the gauge.
type connectionWatcher struct {
	logger    *slog.Logger
	metrics   *metrics.Metrics
	connected atomic.Bool
}

func newConnectionWatcher(logger *slog.Logger, m *metrics.Metrics) *connectionWatcher {
	return &connectionWatcher{logger: logger, metrics: m}
}

func (w *connectionWatcher) monitor() *event.ServerMonitor {
	return &event.ServerMonitor{
		ServerHeartbeatSucceeded: func(e *event.ServerHeartbeatSucceededEvent) {
			w.succeeded(e.ConnectionID)
		},
		ServerHeartbeatFailed: func(e *event.ServerHeartbeatFailedEvent) {
			w.failed(e.ConnectionID, e.Failure)
		},
	}
}

func (w *connectionWatcher) succeeded(server string) {
	w.metrics.MongoConnected.Set(1)
	if w.connected.Swap(true) {
		return
	}
	w.logger.Info("Connected to mongo", "server", server)
}

func (w *connectionWatcher) failed(server string, err error) {
	w.metrics.MongoConnected.Set(0)
	w.connected.Store(false)
	w.logger.Error("Error connecting to mongo", "server", server, "error", err)
}

func Disconnect(ctx context.Context, client *mongo.Client) error {
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect mongo client: %w", err)
	}
	return nil
}
