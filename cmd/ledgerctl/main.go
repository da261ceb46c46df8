// Command ledgerctl is the operator tool for the audit ledger: chain verification,
// offline export, dev token minting and schema migration.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-ledger/config"
	"clinic-ledger/internal/adapter/http/dto"
	pgStorage "clinic-ledger/internal/adapter/storage/postgres"
	"clinic-ledger/internal/app"
	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"
	"clinic-ledger/migrations"
	"clinic-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

const (
	exitOK     = 0
	exitError  = 1
	exitBroken = 2
)

const usage = `usage: ledgerctl [--config FILE] <command> [flags]

commands:
  verify    check the hash chain (--mode links|full); exits 2 when broken
  export    write the ledger to a file (--format json|csv|xlsx)
  token     mint a staff token for local testing
  migrate   apply pending database migrations
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type command func(ctx context.Context, cfg *config.Config, log zerolog.Logger, args []string, stdout io.Writer) (int, error)

var commands = map[string]command{
	"verify":  runVerify,
	"export":  runExport,
	"token":   runToken,
	"migrate": runMigrate,
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := pflag.NewFlagSet("ledgerctl", pflag.ContinueOnError)
	global.SetOutput(stderr)
	global.SetInterspersed(false)
	configPath := global.String("config", os.Getenv("CLG_CONFIG"), "config file")
	if err := global.Parse(args); err != nil {
		return exitError
	}

	rest := global.Args()
	if len(rest) == 0 {
		fmt.Fprint(stderr, usage)
		return exitError
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", rest[0], usage)
		return exitError
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return exitError
	}
	log := logger.NewWithWriter(cfg.Log.Level, cfg.Log.Pretty, stderr)

	code, err := cmd(ctx, cfg, log, rest[1:], stdout)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", rest[0], err)
	}
	return code
}

func operatorContext(ctx context.Context) context.Context {
	return domain.WithRequestMeta(ctx, domain.RequestMeta{DeviceID: "ledgerctl", StartTime: time.Now()})
}

func runVerify(ctx context.Context, cfg *config.Config, log zerolog.Logger, args []string, stdout io.Writer) (int, error) {
	fs := pflag.NewFlagSet("verify", pflag.ContinueOnError)
	modeFlag := fs.String("mode", string(domain.VerifyFull), "links or full")
	if err := fs.Parse(args); err != nil {
		return exitError, err
	}
	mode, ok := domain.ParseVerifyMode(*modeFlag)
	if !ok {
		return exitError, fmt.Errorf("unknown mode %q", *modeFlag)
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return exitError, err
	}
	defer a.Close()

	report, err := a.Chain.Verify(ctx, mode)
	if err != nil {
		return exitError, err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return exitError, err
	}
	if !report.Verified {
		return exitBroken, fmt.Errorf("chain broken: %d broken links, %d tampered entries",
			len(report.BrokenLinks), len(report.TamperedEntries))
	}
	return exitOK, nil
}

func runExport(ctx context.Context, cfg *config.Config, log zerolog.Logger, args []string, stdout io.Writer) (int, error) {
	fs := pflag.NewFlagSet("export", pflag.ContinueOnError)
	format := fs.String("format", string(ports.ExportCSV), "json, csv or xlsx")
	from := fs.String("from", "", "first day (YYYY-MM-DD)")
	to := fs.String("to", "", "last day (YYYY-MM-DD)")
	sensitive := fs.Bool("include-sensitive", false, "skip redaction")
	out := fs.StringP("out", "o", "", "output file (default: the generated file name, - for stdout)")
	if err := fs.Parse(args); err != nil {
		return exitError, err
	}

	fromDate, err := dto.ParseDate(*from)
	if err != nil {
		return exitError, fmt.Errorf("--from: %w", err)
	}
	toDate, err := dto.ParseDate(*to)
	if err != nil {
		return exitError, fmt.Errorf("--to: %w", err)
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return exitError, err
	}
	defer a.Close()

	file, err := a.Query.Export(operatorContext(ctx), ports.ExportRequest{
		Format:           ports.ExportFormat(*format),
		From:             fromDate,
		To:               toDate,
		IncludeSensitive: *sensitive,
		Scope:            ports.Scope{Kind: ports.ScopeAll},
	})
	if err != nil {
		return exitError, err
	}

	if *out == "-" {
		_, err = stdout.Write(file.Data)
		return exitOK, err
	}
	path := *out
	if path == "" {
		path = file.Filename
	}
	if err := os.WriteFile(path, file.Data, 0o600); err != nil {
		return exitError, err
	}
	fmt.Fprintf(stdout, "wrote %d rows to %s\n", file.Rows, path)
	return exitOK, nil
}

func runToken(_ context.Context, cfg *config.Config, _ zerolog.Logger, args []string, stdout io.Writer) (int, error) {
	fs := pflag.NewFlagSet("token", pflag.ContinueOnError)
	actor := fs.String("actor", "", "staff user id (default: random)")
	role := fs.String("role", domain.RoleOwner, "staff role")
	branch := fs.String("branch", "", "branch id")
	if err := fs.Parse(args); err != nil {
		return exitError, err
	}
	if cfg.JWT.Secret == "" {
		return exitError, errors.New("jwt.secret is not configured")
	}

	claims := ports.TokenClaims{ActorID: uuid.New(), Role: *role}
	if *actor != "" {
		id, err := uuid.Parse(*actor)
		if err != nil {
			return exitError, fmt.Errorf("--actor: %w", err)
		}
		claims.ActorID = id
	}
	if *branch != "" {
		id, err := uuid.Parse(*branch)
		if err != nil {
			return exitError, fmt.Errorf("--branch: %w", err)
		}
		claims.BranchID = &id
	}

	token, expiresAt, err := app.TokenService(cfg).Generate(claims)
	if err != nil {
		return exitError, err
	}
	fmt.Fprintln(stdout, token)
	fmt.Fprintf(stdout, "# actor=%s role=%s expires=%s\n", claims.ActorID, claims.Role, expiresAt.UTC().Format(time.RFC3339))
	return exitOK, nil
}

func runMigrate(ctx context.Context, cfg *config.Config, log zerolog.Logger, args []string, stdout io.Writer) (int, error) {
	fs := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	list := fs.Bool("list", false, "print embedded migrations and exit")
	if err := fs.Parse(args); err != nil {
		return exitError, err
	}

	if *list {
		all, err := migrations.List()
		if err != nil {
			return exitError, err
		}
		for _, m := range all {
			fmt.Fprintln(stdout, m.Version)
		}
		return exitOK, nil
	}

	if cfg.Database.InMemory() {
		return exitError, errors.New("migrate needs the postgres driver")
	}
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return exitError, err
	}
	defer pool.Close()

	applied, err := migrations.Apply(ctx, pool)
	if err != nil {
		return exitError, err
	}
	if len(applied) == 0 {
		fmt.Fprintln(stdout, "schema is up to date")
		return exitOK, nil
	}
	for _, v := range applied {
		fmt.Fprintf(stdout, "applied %s\n", v)
	}
	return exitOK, nil
}
