package repository

import (
	"Genie/bot/dialog"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const conversationStatesCollection = "conversation_states"

type conversationStateDoc struct {
	ConversationID string    `bson:"conversation_id"`
	Version        int64     `bson:"version"`
	State          []byte    `bson:"state"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

// SaveConversationState writes the state blob if the stored version is still
// the expected one. A concurrent writer surfaces as a duplicate key on upsert.
func (m *MongoDB) SaveConversationState(ctx context.Context, conversationID string, expected, next int64, blob []byte) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationStatesCollection)

	filter := bson.D{{"conversation_id", conversationID}, {"version", expected}}
	update := bson.D{{"$set", bson.D{
		{"state", blob},
		{"version", next},
		{"updated_at", time.Now()},
	}}}
	opts := options.Update().SetUpsert(true)

	_, err = collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s expected version %d", dialog.ErrStaleState, conversationID, expected)
		}
		return fmt.Errorf("mongodb update error: %w", err)
	}
	return nil
}

// LoadConversationState returns a nil blob when the conversation has no state.
func (m *MongoDB) LoadConversationState(ctx context.Context, conversationID string) ([]byte, int64, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, 0, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationStatesCollection)

	filter := bson.D{{"conversation_id", conversationID}}

	var doc conversationStateDoc
	err = collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("mongodb find error: %w", err)
	}

	return doc.State, doc.Version, nil
}

// DeleteConversationState removes the state of a conversation.
func (m *MongoDB) DeleteConversationState(ctx context.Context, conversationID string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationStatesCollection)

	filter := bson.D{{"conversation_id", conversationID}}

	_, err = collection.DeleteOne(ctx, filter)
	return err
}
