// Package messagelog is an optional Observer collaborator that
// records every OCPP envelope a session sends or receives into MongoDB. The
// engine never depends on it: it is wired in only by applications (see
// cmd/centralsystem) that want a persistence trail, matching §1's framing
// of persistence as an external collaborator.
package messagelog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Direction identifies which way a logged message travelled.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Entry is one logged OCPP envelope.
type Entry struct {
	StationID   string    `bson:"station_id"`
	Direction   Direction `bson:"direction"`
	MessageType string    `bson:"message_type"` // Call, CallResult, CallError
	Action      string    `bson:"action,omitempty"`
	UniqueID    string    `bson:"unique_id"`
	RawMessage  []byte    `bson:"raw_message"`
	Timestamp   time.Time `bson:"timestamp"`
}

// Observer is the interface the session wiring code calls on every frame;
// it is defined here (not in internal/session) so the engine package never
// imports mongo-driver.
type Observer interface {
	Observe(ctx context.Context, entry Entry)
}

// Mongo persists Entries to a single MongoDB collection.
type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

// Config configures a Mongo observer.
type Config struct {
	URI               string
	Database          string
	Collection        string
	ConnectionTimeout time.Duration
}

// Dial connects to MongoDB and returns a ready-to-use observer.
func Dial(ctx context.Context, cfg Config, logger *slog.Logger) (*Mongo, error) {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.ConnectionTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	clientOpts := options.Client().ApplyURI(cfg.URI).SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("messagelog: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("messagelog: ping: %w", err)
	}

	collection := client.Database(cfg.Database).Collection(cfg.Collection)
	logger.Info("messagelog connected", "database", cfg.Database, "collection", cfg.Collection)

	return &Mongo{client: client, collection: collection, logger: logger}, nil
}

// Observe inserts entry. Insert failures are logged, not returned, since a
// logging failure must never affect the session it's observing (§1:
// persistence is an external collaborator, out of the engine's critical
// path).
func (m *Mongo) Observe(ctx context.Context, entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	insertCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := m.collection.InsertOne(insertCtx, bsonEntry(entry)); err != nil {
		m.logger.Warn("messagelog: failed to persist entry", "error", err, "station_id", entry.StationID)
	}
}

func bsonEntry(e Entry) bson.M {
	return bson.M{
		"station_id":   e.StationID,
		"direction":    e.Direction,
		"message_type": e.MessageType,
		"action":       e.Action,
		"unique_id":    e.UniqueID,
		"raw_message":  e.RawMessage,
		"timestamp":    e.Timestamp,
	}
}

// Close disconnects the underlying MongoDB client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
