package services

import (
	"context"
	"errors"
	"os"
	"time"

	mongo_client "portfolioadvisor/clients/mongo"
	"portfolioadvisor/types"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gopkg.in/mgo.v2/bson"
)

var (
	ErrHoldingNotFound  = errors.New("holding not found")
	ErrDuplicateHolding = errors.New("holding for this symbol already exists")
)

// HoldingUpdate carries the mutable fields of a holding; nil means unchanged.
type HoldingUpdate struct {
	Shares       *int64     `json:"shares"`
	AvgCost      *float64   `json:"avgCost"`
	HoldingSince *time.Time `json:"holdingSince"`
}

type HoldingServiceI interface {
	ListHoldings(ctx context.Context, userID string) ([]types.Holding, error)
	AddHolding(ctx context.Context, holding types.Holding) (*types.Holding, error)
	UpdateHolding(ctx context.Context, userID, holdingID string, update HoldingUpdate) (*types.Holding, error)
	DeleteHolding(ctx context.Context, userID, holdingID string) error
	UpsertHoldings(ctx context.Context, userID string, holdings []types.Holding) (int, error)
}

type holdingService struct{}

func NewHoldingService() HoldingServiceI {
	return &holdingService{}
}

func holdingsCollection() *mongo.Collection {
	return mongo_client.Client.Database(os.Getenv("DATABASE")).Collection("holdings")
}

func (h *holdingService) ListHoldings(ctx context.Context, userID string) ([]types.Holding, error) {
	findOptions := options.Find()
	findOptions.SetSort(bson.M{"symbol": 1})
	cursor, err := holdingsCollection().Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	holdings := []types.Holding{}
	if err := cursor.All(ctx, &holdings); err != nil {
		return nil, err
	}
	return holdings, nil
}

func (h *holdingService) AddHolding(ctx context.Context, holding types.Holding) (*types.Holding, error) {
	collection := holdingsCollection()

	count, err := collection.CountDocuments(ctx, bson.M{"userId": holding.UserID, "symbol": holding.Symbol})
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateHolding
	}

	if holding.HoldingSince.IsZero() {
		holding.HoldingSince = time.Now().UTC()
	}
	holding.CreatedAt = time.Now().UTC()

	result, err := collection.InsertOne(ctx, holding)
	if err != nil {
		return nil, err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		holding.ID = oid
	}
	return &holding, nil
}

func (h *holdingService) UpdateHolding(ctx context.Context, userID, holdingID string, update HoldingUpdate) (*types.Holding, error) {
	oid, err := primitive.ObjectIDFromHex(holdingID)
	if err != nil {
		return nil, ErrHoldingNotFound
	}

	set := bson.M{}
	if update.Shares != nil {
		set["shares"] = *update.Shares
	}
	if update.AvgCost != nil {
		set["avgCost"] = *update.AvgCost
	}
	if update.HoldingSince != nil {
		set["holdingSince"] = *update.HoldingSince
	}
	if len(set) == 0 {
		return nil, errors.New("nothing to update")
	}

	filter := bson.M{"_id": oid, "userId": userID}
	var updated types.Holding
	findOptions := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = holdingsCollection().FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, findOptions).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, ErrHoldingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (h *holdingService) DeleteHolding(ctx context.Context, userID, holdingID string) error {
	oid, err := primitive.ObjectIDFromHex(holdingID)
	if err != nil {
		return ErrHoldingNotFound
	}

	result, err := holdingsCollection().DeleteOne(ctx, bson.M{"_id": oid, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrHoldingNotFound
	}
	return nil
}

// UpsertHoldings writes imported positions keyed by symbol, replacing any
// existing entry for the same symbol. Returns how many rows were written.
func (h *holdingService) UpsertHoldings(ctx context.Context, userID string, holdings []types.Holding) (int, error) {
	collection := holdingsCollection()
	written := 0
	for _, holding := range holdings {
		holding.UserID = userID
		update := bson.M{"$set": bson.M{
			"userId":       userID,
			"symbol":       holding.Symbol,
			"name":         holding.Name,
			"isin":         holding.ISIN,
			"exchange":     holding.Exchange,
			"shares":       holding.Shares,
			"avgCost":      holding.AvgCost,
			"holdingSince": holding.HoldingSince,
		}}
		updateOptions := options.Update().SetUpsert(true)
		_, err := collection.UpdateOne(ctx, bson.M{"userId": userID, "symbol": holding.Symbol}, update, updateOptions)
		if err != nil {
			zap.L().Error("Failed to upsert imported holding", zap.String("symbol", holding.Symbol), zap.Error(err))
			continue
		}
		written++
	}
	return written, nil
}
