package services

import (
	"context"
	"os"
	"time"

	mongo_client "portfolioadvisor/clients/mongo"
	"portfolioadvisor/types"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/mgo.v2/bson"
)

type PreferenceServiceI interface {
	// GetPreference returns nil without error when the user has none.
	GetPreference(ctx context.Context, userID string) (*types.InvestmentPreference, error)
	UpsertPreference(ctx context.Context, pref types.InvestmentPreference) error
}

type preferenceService struct{}

func NewPreferenceService() PreferenceServiceI {
	return &preferenceService{}
}

func preferencesCollection() *mongo.Collection {
	return mongo_client.Client.Database(os.Getenv("DATABASE")).Collection("investment_preferences")
}

func (p *preferenceService) GetPreference(ctx context.Context, userID string) (*types.InvestmentPreference, error) {
	var pref types.InvestmentPreference
	err := preferencesCollection().FindOne(ctx, bson.M{"userId": userID}).Decode(&pref)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (p *preferenceService) UpsertPreference(ctx context.Context, pref types.InvestmentPreference) error {
	pref.UpdatedAt = time.Now().UTC()
	updateOptions := options.Replace().SetUpsert(true)
	_, err := preferencesCollection().ReplaceOne(ctx, bson.M{"userId": pref.UserID}, pref, updateOptions)
	return err
}
