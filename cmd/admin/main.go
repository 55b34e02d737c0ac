// Command admin bootstraps a moderation deployment: it applies migrations,
// grants the first admin role and issues access tokens for operators.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dtroode/academia-moderation/database"
	"github.com/dtroode/academia-moderation/internal/config"
	"github.com/dtroode/academia-moderation/internal/logger"
	"github.com/dtroode/academia-moderation/internal/repository/postgres"
	"github.com/dtroode/academia-moderation/internal/service"
	"github.com/dtroode/academia-moderation/internal/token"
)

const usage = `usage: admin <command> [flags]

commands:
  migrate                 apply pending schema migrations
  status                  print migration status
  grant-admin -email=...  give an existing account the admin role
  issue-token -email=...  print an access token for an account
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("missing command")
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}

	switch args[0] {
	case "migrate":
		return database.Migrate(ctx, cfg.Database.DSN)
	case "status":
		return database.Status(ctx, cfg.Database.DSN)
	case "grant-admin", "issue-token":
		fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
		email := fs.String("email", "", "account email")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *email == "" {
			return errors.New("-email is required")
		}
		return withIdentity(ctx, cfg, func(identity *service.Identity) error {
			if args[0] == "grant-admin" {
				user, err := identity.GrantAdmin(ctx, *email)
				if err != nil {
					return err
				}
				fmt.Printf("%s (%s) is an admin\n", user.Email, user.ID)
				return nil
			}
			tok, err := identity.IssueToken(ctx, *email)
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		})
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func withIdentity(ctx context.Context, cfg *config.Config, fn func(*service.Identity) error) error {
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("admin commands need the %s driver", config.DriverPostgres)
	}

	db, err := postgres.NewConection(ctx, cfg.Database.DSN, cfg.Database.TxRetries)
	if err != nil {
		return err
	}
	defer db.Close()

	lg := logger.New(cfg.LogLevel, cfg.LogJSON)
	identity := service.NewIdentity(
		postgres.NewUserRepository(db),
		token.NewJWT(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL),
		lg,
	)
	return fn(identity)
}
