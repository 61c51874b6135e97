package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/backup"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/config"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/logx"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/provider"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/remote"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/restore"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/store"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/store/sqlite"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/version"

	_ "github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/provider/azure"
)

// Test seams — overridden in unit tests. Keep signatures in sync with packages.
var (
	loadConfig   func() (config.Config, error)                                                                               = config.Load
	newProvider  func(name string, cfg any) (provider.CloudStorage, error)                                                   = provider.New
	openStore    func(path string) (*sqlite.Store, error)                                                                    = sqlite.Open
	backupCreate func(context.Context, config.Config, store.Store, backup.Options) (backup.Result, error)                    = backup.Create
	restoreRun   func(context.Context, config.Config, *remote.Client, store.Store, restore.Options) (*restore.Result, error) = restore.Run
	exit         func(int)                                                                                                   = os.Exit
)

const usage = `
Usage:
  syncer backup  [suffix]
  syncer restore [name|latest]
  syncer list
  syncer version | --version | -v
  syncer help    | --help    | -h

Notes:
  - You can also set env vars:
      BACKUP_FILE_SUFFIX, RESTORE_SOURCE, RESTORE_OVERWRITE
  - Provider is selected with SYNC_PROVIDER (default: azure).
  - User identity: SYNC_USER_ID, or SYNC_ID_TOKEN with SYNC_JWT_SECRET.
  - Local document store path: SYNC_STORE_PATH (default ./echoes-learn.db).
`

// main wires CLI -> config -> provider -> backup/restore.
// Exit codes: 0 success, 1 runtime error, 2 usage error.
func main() {
	_ = godotenv.Load() // best-effort
	logx.InitFromEnv()

	args := os.Args[1:]
	if len(args) < 1 {
		fmt.Print(usage)
		exit(2)
	}
	action := strings.ToLower(args[0])

	// Handle version command
	if action == "version" || action == "--version" || action == "-v" {
		fmt.Printf("echoes-learn syncer %s\n", version.Info())
		exit(0)
	}

	// Handle help command
	if action == "help" || action == "--help" || action == "-h" {
		fmt.Print(usage)
		exit(0)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Error().Err(err).Msg("config error")
		exit(1)
	}

	// Build provider from config.
	p, err := newProvider(cfg.Provider, cfg)
	if err != nil {
		log.Error().Err(err).Str("provider", cfg.Provider).Msg("provider init error")
		exit(1)
	}
	client := remote.NewClient(p)

	st, err := openStore(cfg.StorePath)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.StorePath).Msg("document store error")
		exit(1)
	}
	defer func() { _ = st.Close() }()

	ctx := withSignals(context.Background())

	switch action {
	case "backup":
		suffix := pickArg(2, cfg.BackupFileSuffix)

		start := time.Now()
		res, err := backupCreate(ctx, cfg, st, backup.Options{FileSuffix: suffix})
		if err != nil {
			log.Error().Err(err).Str("action", "backup").Msg("export failed")
			exit(1)
		}

		upStart := time.Now()
		if _, err := client.Upload(ctx, res.Payload, res.FileName); err != nil {
			log.Error().Err(err).Str("action", "upload").Str("file", res.FileName).Msg("upload failed")
			exit(1)
		}
		log.Info().
			Str("action", "backup").
			Str("provider", cfg.Provider).
			Str("file", res.FileName).
			Int("records", res.Records).
			Dur("elapsed_ms", time.Since(start)).
			Dur("upload_ms", time.Since(upStart)).
			Msg("backup OK")

	case "restore":
		source := pickArg(2, cfg.RestoreSource)
		overwrite := cfg.RestoreOverwrite || hasFlag("--overwrite")

		start := time.Now()
		res, err := restoreRun(ctx, cfg, client, st, restore.Options{
			RemoteName: source,
			Overwrite:  overwrite,
		})
		if err != nil {
			log.Error().Err(err).Str("action", "restore").Str("source", source).Msg("restore failed")
			exit(1)
		}
		log.Info().
			Str("action", "restore").
			Str("provider", cfg.Provider).
			Int("total", res.TotalDocuments).
			Int("imported", res.ImportedDocuments).
			Int("errors", len(res.Errors)).
			Dur("elapsed_ms", time.Since(start)).
			Msg("restore OK")
		for _, e := range res.Errors {
			log.Warn().Str("action", "restore").Msg(e)
		}

	case "list":
		files, err := client.ListBackups(ctx)
		if err != nil {
			log.Error().Err(err).Str("action", "list").Msg("list failed")
			exit(1)
		}
		for _, f := range files {
			fmt.Printf("%s\t%d\t%s\n", f.ModifiedTime.Format(time.RFC3339), f.Size, f.Name)
		}

	default:
		fmt.Print(usage)
		exit(2)
	}
}

// pickArg prefers the positional argument at idx; env-provided values are
// already resolved by config.Load and arrive as def.
func pickArg(idx int, def string) string {
	if len(os.Args) > idx && os.Args[idx] != "" && !strings.HasPrefix(os.Args[idx], "--") {
		return os.Args[idx]
	}
	return def
}

func hasFlag(flag string) bool {
	for _, a := range os.Args[1:] {
		if a == flag {
			return true
		}
	}
	return false
}

func withSignals(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		<-ch
		cancel()
	}()
	return ctx
}
