package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/buzzleague/buzz/internal/api/auth"
	"github.com/buzzleague/buzz/internal/db"
	dbgen "github.com/buzzleague/buzz/internal/db/generated"
	"github.com/buzzleague/buzz/internal/eligibility"
)

var validRegions = map[string]bool{"W": true, "E": true, eligibility.RegionAll: true}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func runCreateAccount(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet("create-account")
	username := fs.String("username", "", "Login name")
	password := fs.String("password", "", "Password (min 8 characters)")
	service := fs.Bool("service", false, "Create a service account")
	playerName := fs.String("player", "", "Create a player with this name linked to the account")
	discord := fs.String("discord", "", "Discord username of the player")
	twitch := fs.String("twitch", "", "Twitch username of the player")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*username) == "" {
		return errors.New("-username is required")
	}
	if *service && *playerName != "" {
		return errors.New("service accounts cannot have a player")
	}
	if *playerName != "" && *discord == "" {
		return errors.New("-discord is required with -player")
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		return err
	}

	var accountID, playerID int64
	err = env.db.RunInTx(ctx, func(txdb *db.DB) error {
		accountID, err = txdb.Queries.CreateAccount(ctx, dbgen.CreateAccountParams{
			Username:     strings.TrimSpace(*username),
			PasswordHash: hash,
			IsService:    *service,
		})
		if err != nil {
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("username %q is taken", *username)
			}
			return fmt.Errorf("create account: %w", err)
		}
		if *playerName == "" {
			return nil
		}
		playerID, err = txdb.Queries.CreatePlayer(ctx, dbgen.CreatePlayerParams{
			Name:            strings.TrimSpace(*playerName),
			DiscordUsername: strings.TrimSpace(*discord),
			TwitchUsername:  optionalString(*twitch),
			AccountID:       sql.NullInt64{Int64: accountID, Valid: true},
		})
		if err != nil {
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("player %q already exists", *playerName)
			}
			return fmt.Errorf("create player: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(env.out, "account %d\n", accountID)
	if playerID != 0 {
		fmt.Fprintf(env.out, "player %d\n", playerID)
	}
	return nil
}

func runCreateSeason(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet("create-season")
	leagueName := fs.String("league", "", "League name (created new)")
	leagueID := fs.Int64("league-id", 0, "Existing league id")
	name := fs.String("name", "", "Season name")
	maxMembers := fs.Int64("max-members", 6, "Roster size cap per team")
	regions := fs.String("regions", "W,E,A", "Comma separated circuit regions")
	tier := fs.String("tier", "1", "Tier of the created circuits")
	open := fs.Bool("open", true, "Start active with registration and rosters open")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*name) == "" {
		return errors.New("-name is required")
	}
	if (*leagueName == "") == (*leagueID == 0) {
		return errors.New("exactly one of -league or -league-id is required")
	}
	if *maxMembers < 1 {
		return errors.New("-max-members must be at least 1")
	}
	var regionList []string
	for _, r := range strings.Split(*regions, ",") {
		r = strings.ToUpper(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		if !validRegions[r] {
			return fmt.Errorf("unknown region %q", r)
		}
		regionList = append(regionList, r)
	}

	return env.db.RunInTx(ctx, func(txdb *db.DB) error {
		id := *leagueID
		if id == 0 {
			var err error
			id, err = txdb.Queries.CreateLeague(ctx, strings.TrimSpace(*leagueName))
			if err != nil {
				return fmt.Errorf("create league: %w", err)
			}
			fmt.Fprintf(env.out, "league %d\n", id)
		}
		seasonID, err := txdb.Queries.CreateSeason(ctx, dbgen.CreateSeasonParams{
			LeagueID:         id,
			Name:             strings.TrimSpace(*name),
			IsActive:         *open,
			RegistrationOpen: *open,
			RostersOpen:      *open,
			MaxTeamMembers:   *maxMembers,
		})
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return fmt.Errorf("league %d not found", id)
			}
			return fmt.Errorf("create season: %w", err)
		}
		fmt.Fprintf(env.out, "season %d\n", seasonID)

		for _, region := range regionList {
			circuitID, err := txdb.Queries.CreateCircuit(ctx, dbgen.CreateCircuitParams{
				SeasonID: seasonID,
				Region:   region,
				Tier:     *tier,
				Name:     sql.NullString{String: fmt.Sprintf("%s %s%s", *name, region, *tier), Valid: true},
			})
			if err != nil {
				return fmt.Errorf("create %s circuit: %w", region, err)
			}
			fmt.Fprintf(env.out, "circuit %d region=%s tier=%s\n", circuitID, region, *tier)
		}
		return nil
	})
}

func runSetSeason(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet("set-season")
	seasonID := fs.Int64("id", 0, "Season id")
	active := fs.String("active", "", "true or false; unchanged when empty")
	registration := fs.String("registration", "", "true or false; unchanged when empty")
	rosters := fs.String("rosters", "", "true or false; unchanged when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *seasonID <= 0 {
		return errors.New("-id is required")
	}

	return env.db.RunInTx(ctx, func(txdb *db.DB) error {
		season, err := txdb.Queries.GetSeason(ctx, *seasonID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("season %d not found", *seasonID)
			}
			return fmt.Errorf("load season: %w", err)
		}
		params := dbgen.UpdateSeasonFlagsParams{
			ID:               season.ID,
			IsActive:         season.IsActive,
			RegistrationOpen: season.RegistrationOpen,
			RostersOpen:      season.RostersOpen,
		}
		if err := applyBool(&params.IsActive, *active, "active"); err != nil {
			return err
		}
		if err := applyBool(&params.RegistrationOpen, *registration, "registration"); err != nil {
			return err
		}
		if err := applyBool(&params.RostersOpen, *rosters, "rosters"); err != nil {
			return err
		}
		if err := txdb.Queries.UpdateSeasonFlags(ctx, params); err != nil {
			return fmt.Errorf("update season: %w", err)
		}
		fmt.Fprintf(env.out, "season %d active=%t registration=%t rosters=%t\n",
			season.ID, params.IsActive, params.RegistrationOpen, params.RostersOpen)
		return nil
	})
}

func runCreateCaster(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet("create-caster")
	playerID := fs.Int64("player", 0, "Player id")
	bio := fs.String("bio", "", "Link to the caster's bio")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *playerID <= 0 {
		return errors.New("-player is required")
	}

	player, err := env.db.Queries.GetPlayer(ctx, *playerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("player %d not found", *playerID)
		}
		return fmt.Errorf("load player: %w", err)
	}
	casterID, err := env.db.Queries.CreateCaster(ctx, dbgen.CreateCasterParams{
		PlayerID: player.ID,
		BioLink:  optionalString(*bio),
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("player %q is already a caster", player.Name)
		}
		return fmt.Errorf("create caster: %w", err)
	}
	fmt.Fprintf(env.out, "caster %d player=%q\n", casterID, player.Name)
	return nil
}

func runCreateDynasty(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet("create-dynasty")
	name := fs.String("name", "", "Dynasty name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*name) == "" {
		return errors.New("-name is required")
	}

	id, err := env.db.Queries.CreateDynasty(ctx, strings.TrimSpace(*name))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("dynasty %q already exists", *name)
		}
		return fmt.Errorf("create dynasty: %w", err)
	}
	fmt.Fprintf(env.out, "dynasty %d\n", id)
	return nil
}

func runIssueToken(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet("issue-token")
	username := fs.String("username", "", "Account to issue the token for")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return errors.New("-username is required")
	}
	if env.cfg.App.SecretKey == "" {
		return errors.New("APP_SECRET_KEY must be set to issue tokens")
	}

	account, err := env.db.Queries.GetAccountByUsername(ctx, *username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("account %q not found", *username)
		}
		return fmt.Errorf("load account: %w", err)
	}
	var playerID *int64
	if player, err := env.db.Queries.GetPlayerByAccountID(ctx, sql.NullInt64{Int64: account.ID, Valid: true}); err == nil {
		playerID = &player.ID
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("load player: %w", err)
	}

	issuer, err := auth.NewTokenIssuer(env.cfg.App.SecretKey, env.cfg.Auth.Issuer, env.cfg.Auth.TokenTTL, clockwork.NewRealClock())
	if err != nil {
		return err
	}
	token, expiresAt, err := issuer.Issue(account.ID, playerID, account.IsService)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.out, "%s\n# expires %s\n", token, expiresAt.UTC().Format("2006-01-02T15:04:05Z"))
	return nil
}

func applyBool(dst *bool, raw, name string) error {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("-%s must be true or false", name)
	}
	*dst = v
	return nil
}

func optionalString(v string) sql.NullString {
	v = strings.TrimSpace(v)
	return sql.NullString{String: v, Valid: v != ""}
}
