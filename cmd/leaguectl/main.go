// cmd/leaguectl/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/buzzleague/buzz/internal/config"
	"github.com/buzzleague/buzz/internal/db"
)

type command struct {
	summary string
	run     func(ctx context.Context, env *cmdEnv, args []string) error
}

// cmdEnv is what every subcommand runs against.
type cmdEnv struct {
	cfg *config.Config
	db  *db.DB
	out io.Writer
}

var commands = map[string]command{
	"create-account": {summary: "Create a login account, optionally with a linked player", run: runCreateAccount},
	"create-season":  {summary: "Create a league season and its circuits", run: runCreateSeason},
	"set-season":     {summary: "Open or close a season's registration and rosters", run: runSetSeason},
	"create-caster":  {summary: "Register a player as a caster", run: runCreateCaster},
	"create-dynasty": {summary: "Create a dynasty teams can belong to", run: runCreateDynasty},
	"issue-token":    {summary: "Print a bearer token for an account (service bots)", run: runIssueToken},
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: leaguectl [-config path] <command> [flags]\n\ncommands:\n")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-16s %s\n", name, commands[name].summary)
	}
}

func main() {
	configPath := flag.String("config", "config/app.yaml", "Path to the YAML config file")
	flag.Usage = usage
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", flag.Arg(0))
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load configuration")
	}
	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	env := &cmdEnv{cfg: cfg, db: database, out: os.Stdout}
	if err := cmd.run(context.Background(), env, flag.Args()[1:]); err != nil {
		log.Error().Err(err).Str("command", flag.Arg(0)).Msg("Command failed")
		database.Close()
		os.Exit(1)
	}
}
