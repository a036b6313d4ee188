// Package audit keeps the settings change trail.
package audit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// SettingType classifies an audited change.
type SettingType string

const (
	SettingPIN           SettingType = "pin_change"
	SettingPhone         SettingType = "phone_change"
	SettingAddress       SettingType = "address_change"
	SettingWalletAdded   SettingType = "wallet_added"
	SettingWalletRemoved SettingType = "wallet_removed"
	SettingNotifications SettingType = "notification_change"
)

const collectionName = "settings_audit"

// Entry is one settings change. Secrets such as PINs are never stored in the values.
type Entry struct {
	ID          string      `bson:"_id" json:"id"`
	UserID      string      `bson:"user_id" json:"user_id"`
	SettingType SettingType `bson:"setting_type" json:"setting_type"`
	OldValue    string      `bson:"old_value,omitempty" json:"old_value,omitempty"`
	NewValue    string      `bson:"new_value,omitempty" json:"new_value,omitempty"`
	IPAddress   string      `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	DeviceID    string      `bson:"device_id,omitempty" json:"device_id,omitempty"`
	CreatedAt   time.Time   `bson:"created_at" json:"created_at"`
}

// Recorder persists and lists audit entries.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error)
}

func stamp(entry Entry) (Entry, error) {
	if entry.UserID == "" {
		return Entry{}, errors.New("audit entry requires a user id")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return entry, nil
}

// MongoRecorder stores entries in the settings_audit collection.
type MongoRecorder struct {
	collection *mongo.Collection
}

// NewMongoRecorder binds the recorder to db.
func NewMongoRecorder(db *mongo.Database) *MongoRecorder {
	return &MongoRecorder{collection: db.Collection(collectionName)}
}

// EnsureIndexes creates the lookup indexes by user, type and time.
func (r *MongoRecorder) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "setting_type", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create settings audit indexes: %w", err)
	}
	return nil
}

// Record inserts an entry.
func (r *MongoRecorder) Record(ctx context.Context, entry Entry) error {
	entry, err := stamp(entry)
	if err != nil {
		return err
	}
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListByUser returns the newest entries for userID first.
func (r *MongoRecorder) ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find audit entries: %w", err)
	}
	var entries []Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode audit entries: %w", err)
	}
	return entries, nil
}

// MemoryRecorder keeps entries in process.
type MemoryRecorder struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryRecorder returns an empty in-memory recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (r *MemoryRecorder) Record(_ context.Context, entry Entry) error {
	entry, err := stamp(entry)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *MemoryRecorder) ListByUser(_ context.Context, userID string, limit int) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Entry
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
