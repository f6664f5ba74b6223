package accountuser

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Tolpa-999/PerfumBackend/pkg/db"
)

// collection names
const (
	COLLECTION_NAME_ACCOUNT_USERS = "users"
)

type AccountUserDBService struct {
	DBClient *mongo.Client
	timeout  int
	dbName   string
}

func NewAccountUserDBService(configs db.DBConfig) (*AccountUserDBService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	defer cancel()

	dbClient, err := mongo.Connect(ctx,
		options.Client().ApplyURI(configs.URI),
		options.Client().SetMaxConnIdleTime(time.Duration(configs.IdleConnTimeout)*time.Second),
		options.Client().SetMaxPoolSize(configs.MaxPoolSize),
	)

	if err != nil {
		return nil, err
	}

	ctx, conCancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	err = dbClient.Ping(ctx, nil)
	defer conCancel()

	if err != nil {
		return nil, err
	}

	auDBSc := &AccountUserDBService{
		DBClient: dbClient,
		timeout:  configs.Timeout,
		dbName:   configs.DBName,
	}

	if configs.RunIndexCreation {
		auDBSc.CreateDefaultIndexes()
	}
	return auDBSc, nil
}

func (dbService *AccountUserDBService) getContext() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(dbService.timeout)*time.Second)
}

func (dbService *AccountUserDBService) collectionAccountUsers() *mongo.Collection {
	return dbService.DBClient.Database(dbService.dbName).Collection(COLLECTION_NAME_ACCOUNT_USERS)
}

func (dbService *AccountUserDBService) CreateDefaultIndexes() {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionAccountUsers().Indexes().CreateMany(
		ctx, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "resetPasswordToken", Value: 1}},
				Options: options.Index().SetSparse(true),
			},
			{
				Keys: bson.D{{Key: "refreshTokens.token", Value: 1}},
			},
			{
				Keys: bson.D{{Key: "timestamps.createdAt", Value: 1}},
			},
		},
	)
	if err != nil {
		slog.Error("Error creating indexes for account users", slog.String("error", err.Error()))
	}
}
