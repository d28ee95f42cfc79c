package redis_client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/travigo/pokedex/pkg/util"
)

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

func Connect(ctx context.Context) (*redis.Client, error) {
	address := defaultConnectionAddress
	password := defaultConnectionPassword
	database := defaultDatabase

	env := util.GetEnvironmentVariables()

	if env["POKEDEX_REDIS_ADDRESS"] != "" {
		address = env["POKEDEX_REDIS_ADDRESS"]
	}

	if env["POKEDEX_REDIS_PASSWORD"] != "" {
		password = env["POKEDEX_REDIS_PASSWORD"]
	}

	if env["POKEDEX_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["POKEDEX_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return nil, fmt.Errorf("POKEDEX_REDIS_DATABASE: %w", err)
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}
