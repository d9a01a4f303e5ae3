package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-router"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	users "github.com/lmra/go-users"
)

type envConfig struct {
	signingKey      string
	tokenExpiration int64
	issuer          string
	audience        []string
	dsn             string
	addr            string
	debug           bool
}

func (c envConfig) GetSigningKey() string     { return c.signingKey }
func (c envConfig) GetTokenExpiration() int64 { return c.tokenExpiration }
func (c envConfig) GetIssuer() string         { return c.issuer }
func (c envConfig) GetAudience() []string     { return c.audience }

func loadConfig() envConfig {
	// missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	cfg := envConfig{
		signingKey:      os.Getenv("JWT_SECRET"),
		tokenExpiration: 3_600_000, // 1h default
		issuer:          os.Getenv("JWT_ISSUER"),
		dsn:             getenv("DB_DSN", "file:users.db?cache=shared"),
		addr:            getenv("HTTP_ADDR", ":8080"),
		debug:           os.Getenv("DEBUG") != "",
	}

	if cfg.signingKey == "" {
		log.Fatal("JWT_SECRET is required")
	}

	if raw := os.Getenv("JWT_EXPIRATION"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ms <= 0 {
			log.Fatalf("JWT_EXPIRATION must be a positive number of milliseconds: %q", raw)
		}
		cfg.tokenExpiration = ms
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	cfg := loadConfig()

	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Info),
		glog.WithName("users"),
		glog.WithAddSource(false),
	)

	ctx := context.Background()

	db, err := openDB(ctx, cfg.dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	repo := users.NewRepositoryManager(db)
	repo.MustValidate()

	provider := users.NewUserProvider(repo.Users()).
		WithLogger(lgr.GetLogger("provider"))

	auther := users.NewAuthenticator(provider, cfg).
		WithLogger(lgr.GetLogger("auth"))

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
		}))
	})

	srv.Router().WithLogger(lgr.GetLogger("router"))

	users.RegisterUserRoutes(srv.Router(),
		users.WithControllerRepo(repo),
		users.WithControllerAuth(auther),
		users.WithControllerLogger(lgr.GetLogger("controller")),
		users.WithControllerDebug(cfg.debug),
	)

	lgr.GetLogger("server").Info("listening", "addr", cfg.addr)

	srv.Serve(cfg.addr)

	WaitExitSignal()
}

func openDB(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	persistence.RegisterModel((*users.User)(nil))

	db := bun.NewDB(sqldb, sqlitedialect.New())

	// single-table schema, bootstrapped in place rather than via a
	// migration framework
	if _, err := db.NewCreateTable().
		Model((*users.User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return nil, err
	}

	if _, err := db.NewCreateIndex().
		Model((*users.User)(nil)).
		Index("uq_users_email").
		Unique().
		Column("email").
		IfNotExists().
		Exec(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
