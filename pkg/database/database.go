package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/pokedex/pkg/util"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// SamplesCollection holds the creature records
const SamplesCollection = "samples_pokemon"

const defaultMongoConnectionString = "mongodb://localhost:27017/"
const defaultMongoDatabase = "pokedex"
const connectTimeout = 30 * time.Second

type MongoInstance struct {
	Client   *mongo.Client
	Database *mongo.Database

	// Address is the host list of the connection string, safe to log
	Address string
}

type Config struct {
	ConnectionString string
	Database         string
}

// ConfigFromEnvironment reads POKEDEX_MONGODB_CONNECTION (or MONGO_URI) and
// POKEDEX_MONGODB_DATABASE. When no database is configured the one named in
// the connection string path is used.
func ConfigFromEnvironment() Config {
	config := Config{
		ConnectionString: defaultMongoConnectionString,
	}

	env := util.GetEnvironmentVariables()

	if env["POKEDEX_MONGODB_CONNECTION"] != "" {
		config.ConnectionString = env["POKEDEX_MONGODB_CONNECTION"]
	} else if env["MONGO_URI"] != "" {
		config.ConnectionString = env["MONGO_URI"]
	}

	if env["POKEDEX_MONGODB_DATABASE"] != "" {
		config.Database = env["POKEDEX_MONGODB_DATABASE"]
	}

	return config
}

func Connect(ctx context.Context) (*MongoInstance, error) {
	return ConnectWithConfig(ctx, ConfigFromEnvironment())
}

func ConnectWithConfig(ctx context.Context, config Config) (*MongoInstance, error) {
	parsed, err := connstring.ParseAndValidate(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("invalid mongodb connection string: %w", err)
	}

	address := strings.Join(parsed.Hosts, ",")

	dbName := config.Database
	if dbName == "" {
		dbName = parsed.Database
	}
	if dbName == "" {
		dbName = defaultMongoDatabase
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(config.ConnectionString))
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", address, err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		if disconnectErr := client.Disconnect(context.Background()); disconnectErr != nil {
			log.Debug().Err(disconnectErr).Str("address", address).Msg("Failed to disconnect after ping failure")
		}
		return nil, fmt.Errorf("connecting to %s: %w", address, err)
	}

	log.Info().Str("address", address).Str("database", dbName).Msg("Connected to MongoDB")

	return &MongoInstance{
		Client:   client,
		Database: client.Database(dbName),
		Address:  address,
	}, nil
}

func (m *MongoInstance) GetCollection(collectionName string) *mongo.Collection {
	return m.Database.Collection(collectionName)
}

func (m *MongoInstance) Disconnect(ctx context.Context) error {
	if err := m.Client.Disconnect(ctx); err != nil {
		return err
	}

	log.Info().Str("address", m.Address).Msg("MongoDB disconnected")

	return nil
}
