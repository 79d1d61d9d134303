package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"github.com/tinywasm/authflow"
)

type config struct {
	APIURL   string        `env:"TWINAUTH_API_URL" envDefault:"http://127.0.0.1:8000/api/auth/"`
	StateDB  string        `env:"TWINAUTH_STATE_DB" envDefault:"authcli.db"`
	RedisURL string        `env:"TWINAUTH_REDIS_URL"`
	Session  string        `env:"TWINAUTH_SESSION" envDefault:"default"`
	Timeout  time.Duration `env:"TWINAUTH_TIMEOUT" envDefault:"15s"`
	Debug    bool          `env:"TWINAUTH_DEBUG"`
}

func main() {
	log.SetPrefix("[AUTHCLI] ")

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("parse env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("state store: %v", err)
	}
	defer closeStore()

	flowCfg := authflow.Config{
		API:     authflow.NewHTTPClient(cfg.APIURL, &http.Client{Timeout: cfg.Timeout}),
		Session: authflow.NewSession(store),
		Navigate: func(dest string) {
			fmt.Fprintf(os.Stdout, "-> %s\n", dest)
		},
	}
	if cfg.Debug {
		flowCfg.Log = log.Println
	}
	flow, err := authflow.New(ctx, flowCfg)
	if err != nil {
		log.Fatalf("flow: %v", err)
	}

	if err := run(ctx, flow, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}

// openStore prefers Redis when a URL is configured, else the local SQLite file.
func openStore(ctx context.Context, cfg config) (authflow.Store, func(), error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, err
		}
		return authflow.NewRedisStore(rdb, cfg.Session), func() { rdb.Close() }, nil
	}

	db, err := sql.Open("sqlite", cfg.StateDB)
	if err != nil {
		return nil, nil, err
	}
	db.SetMaxOpenConns(1)
	s, err := authflow.NewSQLStore(authflow.DB{DB: db})
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return s, func() { db.Close() }, nil
}

func run(ctx context.Context, flow *authflow.Flow, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	fmt.Fprint(out, render(flow.View()))
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		quit, err := exec(ctx, flow, out, sc.Text())
		if quit {
			return nil
		}
		if err != nil && !errors.Is(err, authflow.ErrOTPRequired) {
			fmt.Fprintf(out, "! %v\n", err)
		}
		fmt.Fprint(out, render(flow.View()))
	}
}

const help = `commands: email|password|name|confirm|code <value>, remember on|off,
submit, resend, signup, forgot, login, logout, theme, whoami, quit
`

// exec runs one command line. quit is true once the user asked to leave.
func exec(ctx context.Context, flow *authflow.Flow, out io.Writer, line string) (quit bool, err error) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	s := flow.Session()

	switch cmd {
	case "":
		return false, nil
	case "email":
		flow.SetField(authflow.FieldEmail, arg)
	case "password":
		flow.SetField(authflow.FieldPassword, arg)
	case "name":
		flow.SetField(authflow.FieldFullName, arg)
	case "confirm":
		flow.SetField(authflow.FieldConfirmPassword, arg)
	case "code":
		flow.SetField(authflow.FieldCode, arg)
	case "remember":
		flow.SetRememberMe(arg == "on" || arg == "yes" || arg == "true")
	case "submit":
		return false, flow.Submit(ctx)
	case "resend":
		return false, flow.ResendOTP(ctx)
	case "signup":
		return false, flow.ShowSignup()
	case "forgot":
		return false, flow.ShowForgotPassword()
	case "login":
		flow.ShowLogin()
	case "logout":
		return false, s.Logout(ctx)
	case "theme":
		t, err := s.ToggleTheme(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(out, "theme: %s\n", t)
	case "whoami":
		if !s.LoggedIn(ctx) {
			fmt.Fprintln(out, "not logged in")
			return false, nil
		}
		fmt.Fprintf(out, "logged in as %s\n", s.Username(ctx))
	case "quit", "exit":
		return true, nil
	default:
		fmt.Fprint(out, help)
	}
	return false, nil
}
