package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/cache"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/config"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/logging"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/metrics"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/prefs"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/queries"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/rpc"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/service"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/storage"
)

// ConfigEnv names the config file when --config is not given.
const ConfigEnv = "COUCHERS_CONFIG"

// app is the state shared by all commands of one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer

	configPath  string
	token       string
	logLevel    string
	jsonOutput  bool
	showMetrics bool

	cfg     *config.Config
	kv      storage.KV
	closeKV func() error
	qc      *cache.Client
	q       *queries.Queries
	prefs   *prefs.Store
	logger  zerolog.Logger
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut}
}

// Execute runs the CLI with args and returns the process exit code. Errors
// are printed with their friendly message.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, newApp(stdout, stderr), args)
}

func execute(ctx context.Context, a *app, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	err := root.ExecuteContext(ctx)
	if a.closeKV != nil {
		if cerr := a.closeKV(); cerr != nil {
			a.logger.Warn().Err(cerr).Msg("Closing storage failed")
		}
	}
	if err != nil {
		a.logger.Error().Err(err).Str("code", rpc.CodeOf(err).String()).Msg("Command failed")
		fmt.Fprintln(a.errOut, "Error:", rpc.FriendlyError(err))
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "couchers",
		Short:         "Command-line client for the Couchers.org platform",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", os.Getenv(ConfigEnv), "config file (default $"+ConfigEnv+")")
	flags.StringVar(&a.token, "token", "", "session token, overrides backend.session_token")
	flags.StringVar(&a.logLevel, "log-level", "", "log level, overrides log.level")
	flags.BoolVar(&a.jsonOutput, "json", false, "print results as JSON")
	flags.BoolVar(&a.showMetrics, "metrics", false, "print client metrics to stderr on exit")

	root.AddCommand(
		a.userCmd(),
		a.friendsCmd(),
		a.notificationsCmd(),
		a.messagesCmd(),
		a.referenceCmd(),
		a.donateCmd(),
		a.searchCmd(),
		a.draftCmd(),
	)
	return root
}

// setup loads the configuration and wires the client stack.
func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.token != "" {
		cfg.Backend.SessionToken = a.token
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logCfg := cfg.Logging()
	logCfg.Output = a.errOut
	logging.Setup(logCfg)
	a.logger = logging.NewLogger("cli")

	if a.kv == nil {
		if err := a.openStorage(ctx); err != nil {
			return err
		}
	}

	client, err := rpc.New(cfg.RPC())
	if err != nil {
		return fmt.Errorf("create rpc client: %w", err)
	}

	a.qc = cache.New(cfg.QueryCache())
	if cfg.Cache.Persist {
		if n, err := a.qc.Restore(ctx, a.kv, cfg.PersistOptions()); err != nil {
			a.logger.Warn().Err(err).Msg("Restoring query cache failed")
		} else if n > 0 {
			a.logger.Debug().Int("queries", n).Msg("Restored query cache")
		}
	}

	a.q = queries.New(service.New(client), a.qc)
	a.prefs = prefs.New(a.kv, 0)

	a.logger.Debug().
		Str("backend", cfg.Backend.URL).
		Str("storage", cfg.Storage.Driver).
		Msg("Client ready")
	return nil
}

func (a *app) openStorage(ctx context.Context) error {
	switch a.cfg.Storage.Driver {
	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     a.cfg.Storage.RedisAddr,
			Password: a.cfg.Storage.RedisPassword,
			DB:       a.cfg.Storage.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return fmt.Errorf("connect to redis at %s: %w", a.cfg.Storage.RedisAddr, err)
		}
		a.kv = storage.NewRedis(rdb)
		a.closeKV = rdb.Close
	case config.DriverFile:
		dir := a.cfg.Storage.FileDir
		if dir == "" {
			var err error
			if dir, err = storage.DefaultFileDir(); err != nil {
				return err
			}
		}
		f, err := storage.NewFile(dir)
		if err != nil {
			return err
		}
		a.kv = f
	default:
		mem, err := storage.NewMemory(a.cfg.Storage.MemorySize)
		if err != nil {
			return err
		}
		a.kv = mem
	}
	return nil
}

// teardown persists the cache and prints metrics when asked to.
func (a *app) teardown(ctx context.Context) error {
	var errs []error
	if a.cfg.Cache.Persist {
		a.qc.GC()
		if err := a.qc.Persist(ctx, a.kv, a.cfg.PersistOptions()); err != nil {
			a.logger.Warn().Err(err).Msg("Persisting query cache failed")
		}
	}
	if a.showMetrics {
		if err := metrics.WriteSummary(a.errOut, metrics.Gatherer); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
