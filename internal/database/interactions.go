package repository

import (
	"TimerBot/entity"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SaveInteraction inserts a history record and trims the user's history.
func (m *MongoDB) SaveInteraction(rec entity.InteractionRecord) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(interactionsCollection)

	_, err = collection.InsertOne(m.ctx, rec)
	if err != nil {
		return fmt.Errorf("mongodb insert interaction: %w", err)
	}

	filter := bson.D{{"user_id", rec.UserID}}
	count, err := collection.CountDocuments(m.ctx, filter)
	if err != nil {
		return fmt.Errorf("mongodb count interactions: %w", err)
	}

	if count > historyLimit {
		opts := options.FindOne().SetSort(bson.D{{"created_at", -1}}).SetSkip(historyLimit - 1)
		var cutoff entity.InteractionRecord
		err = collection.FindOne(m.ctx, filter, opts).Decode(&cutoff)
		if err != nil {
			return fmt.Errorf("mongodb find cutoff interaction: %w", err)
		}

		deleteFilter := bson.D{
			{"user_id", rec.UserID},
			{"created_at", bson.D{{"$lt", cutoff.CreatedAt}}},
		}
		_, err = collection.DeleteMany(m.ctx, deleteFilter)
		if err != nil {
			return fmt.Errorf("mongodb trim interactions: %w", err)
		}
	}

	return nil
}

// GetInteractions returns the user's history, newest first.
func (m *MongoDB) GetInteractions(userID string, limit, offset int) ([]entity.InteractionRecord, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(interactionsCollection)

	filter := bson.D{{"user_id", userID}}
	opts := options.Find().
		SetSort(bson.D{{"created_at", -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find interactions: %w", err)
	}
	defer cursor.Close(m.ctx)

	var records []entity.InteractionRecord
	if err = cursor.All(m.ctx, &records); err != nil {
		return nil, fmt.Errorf("mongodb decode interactions: %w", err)
	}

	return records, nil
}
