package repository

import (
	"TimerBot/bot/chat"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// chainDocument stores a chain as JSON so that step params decode the same
// way from every backend.
type chainDocument struct {
	UserID    string    `bson:"user_id"`
	Chain     string    `bson:"chain"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// EnsureChainIndexes creates the unique user index and, for a positive ttl,
// the index expiring idle sessions.
func (m *MongoDB) EnsureChainIndexes(ctx context.Context, ttl time.Duration) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(chatSessionsCollection)

	models := []mongo.IndexModel{
		{Keys: bson.D{{"user_id", 1}}, Options: options.Index().SetUnique(true)},
	}
	if ttl > 0 {
		models = append(models, mongo.IndexModel{
			Keys:    bson.D{{"updated_at", 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())),
		})
	}

	if _, err = collection.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("mongodb create indexes: %w", err)
	}
	return nil
}

// SaveChain upserts the user's chain.
func (m *MongoDB) SaveChain(ctx context.Context, c *chat.Chain) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(chatSessionsCollection)

	c.UpdatedAt = time.Now()
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding chain: %w", err)
	}

	doc := chainDocument{UserID: c.UserID, Chain: string(data), UpdatedAt: c.UpdatedAt}
	filter := bson.D{{"user_id", c.UserID}}
	update := bson.D{{"$set", doc}}
	opts := options.Update().SetUpsert(true)

	_, err = collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// LoadChain returns the user's chain, or nil when there is none.
func (m *MongoDB) LoadChain(ctx context.Context, userID string) (*chat.Chain, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(chatSessionsCollection)

	filter := bson.D{{"user_id", userID}}

	var doc chainDocument
	err = collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return decodeChain(doc.Chain)
}

// DeleteChain removes the user's chain.
func (m *MongoDB) DeleteChain(ctx context.Context, userID string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(chatSessionsCollection)

	filter := bson.D{{"user_id", userID}}

	_, err = collection.DeleteOne(ctx, filter)
	return err
}

// decodeChain returns an empty chain for undecodable data; the session store
// then drops it as corrupt.
func decodeChain(data string) (*chat.Chain, error) {
	var c chat.Chain
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return &chat.Chain{}, nil
	}
	return &c, nil
}
