package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/pokedex/pkg/pokedex"
	"github.com/travigo/pokedex/pkg/util"
)

func main() {
	if err := util.LoadEnvironmentFiles(".env"); err != nil {
		log.Fatal().Err(err).Msg("Failed to load .env file")
	}

	// stdout is reserved for query results
	if os.Getenv("POKEDEX_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	if os.Getenv("POKEDEX_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := pokedex.NewApp()

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
