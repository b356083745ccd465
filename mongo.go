package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// Timeout operations after N seconds
	connectTimeout           = 5
	connectionStringTemplate = "mongodb://%s:%s@%s"
)

// MongoStore implements Store on a MongoDB collection. Documents are keyed by
// their numeric id (mirrored into _id), so the collection enforces id
// uniqueness for free.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to the cluster described by cfg and pings it to
// verify the connection string.
func NewMongoStore(ctx context.Context, cfg Config) (*MongoStore, error) {
	connectionURI := fmt.Sprintf(connectionStringTemplate, cfg.MongoUsername, cfg.MongoPassword, cfg.MongoEndpoint)

	ctx, cancel := context.WithTimeout(ctx, connectTimeout*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connectionURI))
	if err != nil {
		log.Errorf("Failed to create client: %v", err)
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Errorf("Failed to ping cluster: %v", err)
		return nil, err
	}

	log.Info("Connected to MongoDB!")
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.MongoDatabase).Collection("posts"),
	}, nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) All(ctx context.Context) ([]Document, error) {
	cursor, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []Document
	if err := cursor.All(ctx, &docs); err != nil {
		log.Errorf("Failed marshalling %v", err)
		return nil, err
	}
	for _, doc := range docs {
		delete(doc, "_id")
	}
	return docs, nil
}

func (s *MongoStore) Get(ctx context.Context, id int64) (Document, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStore) FindByTitle(ctx context.Context, title string) (Document, error) {
	return s.findOne(ctx, bson.M{"title": title})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (Document, error) {
	var doc Document
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Errorf("Failed marshalling %v", err)
		return nil, err
	}
	delete(doc, "_id")
	return doc, nil
}

func (s *MongoStore) Insert(ctx context.Context, doc Document) error {
	id, ok := asInt64(doc["id"])
	if !ok {
		return fmt.Errorf("document has no integer id")
	}
	stored := copyDocument(doc)
	stored["_id"] = id

	if _, err := s.coll.InsertOne(ctx, stored); err != nil {
		log.Errorf("Could not create post: %v", err)
		return err
	}
	return nil
}

func (s *MongoStore) Replace(ctx context.Context, id int64, doc Document) (Document, error) {
	stored := copyDocument(doc)
	stored["id"] = id
	stored["_id"] = id

	after := options.After
	opt := options.FindOneAndReplaceOptions{ReturnDocument: &after}

	var updated Document
	err := s.coll.FindOneAndReplace(ctx, bson.M{"_id": id}, stored, &opt).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Errorf("Could not save post: %v", err)
		return nil, err
	}
	delete(updated, "_id")
	return updated, nil
}

func (s *MongoStore) Patch(ctx context.Context, id int64, fields Document) (Document, error) {
	set := copyDocument(fields)
	set["id"] = id
	update := bson.M{"$set": set}

	after := options.After
	opt := options.FindOneAndUpdateOptions{ReturnDocument: &after}

	var updated Document
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, &opt).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Errorf("Could not save post: %v", err)
		return nil, err
	}
	delete(updated, "_id")
	return updated, nil
}

func (s *MongoStore) Delete(ctx context.Context, id int64) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		log.Errorf("Could not delete post: %v", err)
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
