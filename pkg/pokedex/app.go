package pokedex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/travigo/pokedex/pkg/evolution"
	"github.com/travigo/pokedex/pkg/report"
	"github.com/urfave/cli/v2"
)

const (
	evolutionsTitle   = "Creatures with at least one evolution"
	avgSpawnsTitle    = "First stage creatures with an evolution spawning more than %v on average"
	spawnTimeTitle    = "First stage creatures with an evolution spawning at %s*"
	expressionTitle   = "First stage creatures with an evolution matching %s"
	variantAvgSpawns  = "avg-spawns"
	variantSpawnTime  = "spawn-time"
	variantExpression = "expression"
)

func NewApp() *cli.App {
	return &cli.App{
		Name:        "pokedex",
		Usage:       "Evolution queries over the samples_pokemon collection",
		Description: "Without a command both evolution queries run once against MongoDB and the results are printed",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "records-file",
				Usage:   "read records from a YAML, JSON or mongoexport file instead of MongoDB",
				EnvVars: []string{"POKEDEX_RECORDS_FILE"},
			},
			&cli.StringFlag{
				Name:    "format",
				Value:   string(report.FormatPretty),
				Usage:   "output format: pretty, json or csv",
				EnvVars: []string{"POKEDEX_OUTPUT_FORMAT"},
			},
			&cli.DurationFlag{
				Name:    "cache-ttl",
				Usage:   "cache query results in Redis for this long, disabled when 0",
				EnvVars: []string{"POKEDEX_CACHE_TTL"},
			},
			&cli.BoolFlag{
				Name:    "wait-for-signal",
				Usage:   "stay connected after printing until interrupted",
				EnvVars: []string{"POKEDEX_WAIT_FOR_SIGNAL"},
			},
		},
		Action: func(c *cli.Context) error {
			return runAll(c, false)
		},
		Commands: RegisterCLI(),
	}
}

func RegisterCLI() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "run",
			Usage: "run the evolutions query and the first stage query",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "all-variants",
					Usage: "also run the spawn time variant of the first stage query",
				},
			},
			Action: func(c *cli.Context) error {
				return runAll(c, c.Bool("all-variants"))
			},
		},
		{
			Name:  "evolutions",
			Usage: "list every creature with at least one evolution and the resolved evolutions",
			Action: func(c *cli.Context) error {
				return withSession(c, func(ctx context.Context, session *Session, writer *report.Writer) error {
					return printEvolutions(ctx, session.Engine, writer)
				})
			},
		},
		{
			Name:  "first-stage",
			Usage: "list first stage creatures with an evolution passing a predicate",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "variant",
					Value:   variantAvgSpawns,
					Usage:   "predicate: avg-spawns, spawn-time or expression",
					EnvVars: []string{"POKEDEX_FIRST_STAGE_VARIANT"},
				},
				&cli.Float64Flag{
					Name:    "threshold",
					Value:   evolution.DefaultAvgSpawnsThreshold,
					Usage:   "avg_spawns an evolution must exceed",
					EnvVars: []string{"POKEDEX_AVG_SPAWNS_THRESHOLD"},
				},
				&cli.StringFlag{
					Name:    "prefix",
					Value:   evolution.DefaultSpawnTimePrefix,
					Usage:   "text an evolution spawn_time must start with",
					EnvVars: []string{"POKEDEX_SPAWN_TIME_PREFIX"},
				},
				&cli.StringFlag{
					Name:    "expression",
					Usage:   "expr program over name, num, spawn_time and avg_spawns",
					EnvVars: []string{"POKEDEX_EXPRESSION"},
				},
				&cli.StringFlag{
					Name:  "expansion",
					Usage: "override how next_evolution is joined: list or scalar",
				},
			},
			Action: func(c *cli.Context) error {
				query, title, err := firstStageQuery(c)
				if err != nil {
					return err
				}

				return withSession(c, func(ctx context.Context, session *Session, writer *report.Writer) error {
					return printFirstStage(ctx, session.Engine, writer, title, query)
				})
			},
		},
	}
}

func runAll(c *cli.Context, allVariants bool) error {
	return withSession(c, func(ctx context.Context, session *Session, writer *report.Writer) error {
		if err := printEvolutions(ctx, session.Engine, writer); err != nil {
			return err
		}

		queries := []evolution.FirstStageQuery{
			{Expansion: evolution.ExpandList, Predicate: evolution.AvgSpawnsAbove{Threshold: evolution.DefaultAvgSpawnsThreshold}},
		}
		titles := []string{fmt.Sprintf(avgSpawnsTitle, evolution.DefaultAvgSpawnsThreshold)}

		if allVariants {
			queries = append(queries, evolution.FirstStageQuery{Expansion: evolution.ScalarReference, Predicate: evolution.SpawnTimePrefix{Prefix: evolution.DefaultSpawnTimePrefix}})
			titles = append(titles, fmt.Sprintf(spawnTimeTitle, evolution.DefaultSpawnTimePrefix))
		}

		for i, query := range queries {
			if err := printFirstStage(ctx, session.Engine, writer, titles[i], query); err != nil {
				return err
			}
		}

		return nil
	})
}

func firstStageQuery(c *cli.Context) (evolution.FirstStageQuery, string, error) {
	var query evolution.FirstStageQuery
	var title string

	switch c.String("variant") {
	case variantAvgSpawns:
		query = evolution.FirstStageQuery{Expansion: evolution.ExpandList, Predicate: evolution.AvgSpawnsAbove{Threshold: c.Float64("threshold")}}
		title = fmt.Sprintf(avgSpawnsTitle, c.Float64("threshold"))
	case variantSpawnTime:
		if c.String("prefix") == "" {
			return query, "", errors.New("spawn-time variant needs a non empty --prefix")
		}
		query = evolution.FirstStageQuery{Expansion: evolution.ScalarReference, Predicate: evolution.SpawnTimePrefix{Prefix: c.String("prefix")}}
		title = fmt.Sprintf(spawnTimeTitle, c.String("prefix"))
	case variantExpression:
		if c.String("expression") == "" {
			return query, "", errors.New("expression variant needs --expression")
		}
		expression, err := evolution.NewExpression(c.String("expression"))
		if err != nil {
			return query, "", err
		}
		query = evolution.FirstStageQuery{Expansion: evolution.ExpandList, Predicate: expression}
		title = fmt.Sprintf(expressionTitle, c.String("expression"))
	default:
		return query, "", fmt.Errorf("unknown variant %q, expected %s, %s or %s", c.String("variant"), variantAvgSpawns, variantSpawnTime, variantExpression)
	}

	if c.IsSet("expansion") {
		expansion, err := evolution.ParseExpansion(c.String("expansion"))
		if err != nil {
			return query, "", err
		}
		query.Expansion = expansion
	}

	return query, title, nil
}

func printEvolutions(ctx context.Context, engine evolution.Engine, writer *report.Writer) error {
	views, err := engine.Evolutions(ctx)
	if err != nil {
		return err
	}

	log.Debug().Int("results", len(views)).Msg("Evolutions query complete")

	return writer.Evolutions(evolutionsTitle, views)
}

func printFirstStage(ctx context.Context, engine evolution.Engine, writer *report.Writer, title string, query evolution.FirstStageQuery) error {
	views, err := engine.FirstStage(ctx, query)
	if err != nil {
		return err
	}

	log.Debug().Str("query", query.String()).Int("results", len(views)).Msg("First stage query complete")

	group := report.GroupDetailed
	if query.Expansion == evolution.ScalarReference {
		group = report.GroupBasic
	}

	return writer.FirstStage(title, views, group)
}

func withSession(c *cli.Context, run func(ctx context.Context, session *Session, writer *report.Writer) error) error {
	format, err := report.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	ctx, stop := interruptContext(c.Context)
	defer stop()

	session, err := OpenSession(ctx, SessionOptions{
		RecordsFile: c.String("records-file"),
		CacheTTL:    c.Duration("cache-ttl"),
	})
	if err != nil {
		return err
	}
	defer session.Close()

	if err := run(ctx, session, report.NewWriter(c.App.Writer, format)); err != nil {
		return err
	}

	if c.Bool("wait-for-signal") {
		log.Info().Msg("Results printed, waiting for interrupt")
		<-ctx.Done()
	}

	return nil
}

// interruptContext is cancelled on the first SIGINT or SIGTERM. A second
// signal exits straight away in case shutdown gets stuck.
func interruptContext(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	var once sync.Once

	go func() {
		select {
		case <-signals:
		case <-ctx.Done():
			return
		}

		log.Info().Msg("Interrupt received, closing connections")
		cancel()

		select {
		case <-signals:
			os.Exit(1)
		case <-done:
		}
	}()

	return ctx, func() {
		once.Do(func() {
			signal.Stop(signals)
			close(done)
			cancel()
		})
	}
}
