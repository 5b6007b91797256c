// Package cli, sqlcompose komut satırı arayüzünü sağlar.
//
// Her alt komut flag'lerden bir QueryBuilder doldurur, ilgili finalizer ile
// statement'ı üretir ve stdout'a yazar. --execute verilirse statement
// yapılandırılmış MySQL bağlantısı üzerinde çalıştırılır.
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/biyonik/dml-composer/internal/config"
	"github.com/biyonik/dml-composer/pkg/cache"
	"github.com/biyonik/dml-composer/pkg/database"
	"github.com/biyonik/dml-composer/pkg/events"
	"github.com/spf13/cobra"
)

// Version bilgisi (build sırasında set edilir).
var Version = "0.1.0"

// app, komutlar arasında paylaşılan durumdur.
type app struct {
	cfgFile string
	execute bool
	verbose bool
	output  string

	cfg     *config.Config
	grammar database.Grammar
	logger  *log.Logger
	stderr  io.Writer
}

// NewRootCmd, root komutunu ve tüm alt komutları oluşturur.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "sqlcompose",
		Short: "Dialect-aware DML statement composer",
		Long: `sqlcompose builds SELECT, INSERT, REPLACE, DELETE and UPDATE statements
from independent clause flags, enforcing keyword legality and a fixed clause
order per statement type. The statement is printed; --execute runs it against
the configured MySQL server.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			return a.load(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./composer.yaml)")
	flags.String("dialect", "", "SQL dialect (generic|mysql|mariadb)")
	flags.String("dsn", "", "MySQL DSN used with --execute")
	flags.String("cache-driver", "", "Result cache driver for --execute (none|memory|file|redis)")
	flags.String("cache-dir", "", "Directory of the file cache driver")
	flags.Duration("cache-ttl", 0, "Result cache TTL for SELECT statements")
	flags.Duration("slow-threshold", 0, "Report executed statements slower than this to stderr (0 disables)")
	flags.String("env", "", "Environment name")
	flags.BoolVar(&a.execute, "execute", false, "Run the statement against the database")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Verbose logging to stderr")
	flags.StringVarP(&a.output, "output", "o", outputTable, "Result format for --execute SELECT (table|json|csv|markdown)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return outputFormats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return database.GrammarNames(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newSelectCommand(a))
	rootCmd.AddCommand(newInsertCommand(a, database.KindInsert))
	rootCmd.AddCommand(newInsertCommand(a, database.KindReplace))
	rootCmd.AddCommand(newDeleteCommand(a))
	rootCmd.AddCommand(newUpdateCommand(a))

	return rootCmd
}

// load, config'i okur ve grammar/logger'ı hazırlar.
func (a *app) load(cmd *cobra.Command) error {
	a.stderr = cmd.ErrOrStderr()
	a.logger = log.New(io.Discard, "", 0)
	if a.verbose {
		a.logger = log.New(a.stderr, "[sqlcompose] ", log.LstdFlags)
	}

	cfg, err := config.Load(a.cfgFile, cmd.Flags(), a.logger)
	if err != nil {
		return err
	}

	grammar, err := database.GrammarFor(cfg.Composer.Dialect)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.grammar = grammar
	a.logger.Printf("Dialect: %s", grammar.Name())
	return nil
}

// connect, --execute için Connection açar. Dönen cleanup her durumda çağrılmalıdır.
func (a *app) connect(ctx context.Context) (*database.Connection, func(), error) {
	db, err := database.Connect(ctx, a.cfg.Connection(), a.logger)
	if err != nil {
		return nil, func() {}, err
	}

	conn := database.NewConnection(db, a.grammar, a.logger).
		SetNoBackslashEscapes(a.cfg.DB.NoBackslashEscapes)

	if dispatcher := a.dispatcher(); dispatcher != nil {
		conn.SetDispatcher(dispatcher)
	}

	var rc cache.Cache
	if a.cfg.CacheEnabled() {
		rc, err = cache.Open(a.cfg.CacheOptions(), a.logger)
		if err != nil {
			conn.Close()
			return nil, func() {}, err
		}
		conn.SetResultCache(rc)
	}

	return conn, func() {
		if rc != nil {
			_ = rc.Close()
		}
		_ = conn.Close()
	}, nil
}

// dispatcher, --verbose ve db.slow_threshold ayarlarına göre statement
// event'lerini dinleyen dispatcher'ı kurar. Dinleyen yoksa nil döner.
func (a *app) dispatcher() *events.Dispatcher {
	d := events.NewDispatcher(a.logger)
	if a.verbose {
		d.Listen(events.Wildcard, events.LogListener(a.logger))
	}

	if threshold := a.cfg.DB.SlowThreshold; threshold > 0 {
		slow := log.New(a.stderr, "[sqlcompose] ", log.LstdFlags)
		d.Subscribe(
			[]string{events.EventStatementExecuted, events.EventStatementFailed},
			events.SlowStatementListener(threshold, events.ListenerFunc(func(e events.Event) error {
				s, _ := events.StatementOf(e)
				slow.Printf("🐢 Yavaş statement [%s >= %s]: %s", s.Duration, threshold, s.SQL)
				return nil
			})),
		)
	}

	names := d.Events()
	if len(names) == 0 {
		return nil
	}
	a.logger.Printf("Dinlenen event'ler: %s", strings.Join(names, ", "))
	return d
}

// Execute, root komutunu çalıştırır.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
