package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"funnelworks/internal/model"
)

// LeadRepo handles MongoDB operations for captured leads
type LeadRepo interface {
	Save(ctx context.Context, lead *model.LeadRecord) error
	GetBySession(ctx context.Context, sessionID string) (*model.LeadRecord, error)
	ListByTool(ctx context.Context, tool model.ToolID, limit int64) ([]*model.LeadRecord, error)
	EnsureIndexes(ctx context.Context) error
}

type leadRepo struct {
	collection *mongo.Collection
}

// NewLeadRepo creates a new lead repository
func NewLeadRepo(db *mongo.Database) LeadRepo {
	return &leadRepo{
		collection: db.Collection("leads"),
	}
}

// Save upserts by session id, so a replayed completion never duplicates a lead
func (r *leadRepo) Save(ctx context.Context, lead *model.LeadRecord) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"sessionId": lead.SessionID}, lead, opts)
	return err
}

func (r *leadRepo) GetBySession(ctx context.Context, sessionID string) (*model.LeadRecord, error) {
	var lead model.LeadRecord
	err := r.collection.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&lead)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// ListByTool returns the newest leads first. An empty tool lists every tool.
func (r *leadRepo) ListByTool(ctx context.Context, tool model.ToolID, limit int64) ([]*model.LeadRecord, error) {
	filter := bson.M{}
	if tool != "" {
		filter["toolId"] = tool
	}
	opts := options.Find().SetSort(bson.D{{Key: "completedAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var leads []*model.LeadRecord
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

func (r *leadRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sessionId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "toolId", Value: 1}, {Key: "completedAt", Value: -1}}},
	})
	return err
}
