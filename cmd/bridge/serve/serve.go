// Package servecmder provides the serve command that runs the bot endpoint.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/bridge/pkg/assistant/watson"
	"github.com/papercomputeco/bridge/pkg/bot"
	"github.com/papercomputeco/bridge/pkg/channel"
	"github.com/papercomputeco/bridge/pkg/config"
	"github.com/papercomputeco/bridge/pkg/dotdir"
	"github.com/papercomputeco/bridge/pkg/eventstream"
	"github.com/papercomputeco/bridge/pkg/eventstream/kafka"
	"github.com/papercomputeco/bridge/pkg/eventstream/nop"
	"github.com/papercomputeco/bridge/pkg/logger"
	"github.com/papercomputeco/bridge/pkg/notify"
	"github.com/papercomputeco/bridge/pkg/reference"
	"github.com/papercomputeco/bridge/pkg/reply"
	"github.com/papercomputeco/bridge/pkg/session"
	"github.com/papercomputeco/bridge/pkg/storage"
	"github.com/papercomputeco/bridge/pkg/storage/provider"
	"github.com/papercomputeco/bridge/server"
	"github.com/papercomputeco/bridge/server/mcp"
	"github.com/papercomputeco/bridge/server/worker"
)

// serveFlags are the registry flags the serve command exposes.
var serveFlags = []string{
	config.FlagListen,
	config.FlagStorage,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagAssistantURL,
	config.FlagAssistantKey,
	config.FlagAssistantID,
	config.FlagAppID,
	config.FlagAppPassword,
	config.FlagRecordOnMessage,
	config.FlagEvents,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
	config.FlagNotifyConc,
}

type ServeCommander struct {
	flags struct {
		listen          string
		storage         string
		sqlitePath      string
		postgresDSN     string
		assistantURL    string
		assistantKey    string
		assistantID     string
		appID           string
		appPassword     string
		recordOnMessage bool
		events          string
		kafkaBrokers    string
		kafkaTopic      string
		notifyConc      uint
	}

	envFile   string
	logFile   string
	jsonLogs  bool
	configDir string
	debug     bool

	viper  *viper.Viper
	logger *slog.Logger
}

const serveLongDesc string = `Run the bridge bot endpoint.

Serves the Bot Framework messaging endpoint (POST /api/messages), the
proactive notification routes (GET /api/notify?userID=, GET /api/notifyAll),
the reference listing (GET /api/references) and an MCP endpoint (/mcp).

Settings are read from flags, BRIDGE_* environment variables (a .env file is
loaded first when present), config.toml in the .bridge/ directory, and the
built-in defaults, in that order.

Examples:
  bridge serve --assistant-id <id> --assistant-api-key <key>
  bridge serve --storage memory --record-on-message
  bridge serve --events kafka --kafka-brokers localhost:9092`

const serveShortDesc string = "Run the bridge bot endpoint"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.load(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return cmder.run(ctx)
		},
	}

	config.AddStringFlag(cmd, config.Registry, config.FlagListen, &cmder.flags.listen)
	config.AddStringFlag(cmd, config.Registry, config.FlagStorage, &cmder.flags.storage)
	config.AddStringFlag(cmd, config.Registry, config.FlagSQLite, &cmder.flags.sqlitePath)
	config.AddStringFlag(cmd, config.Registry, config.FlagPostgres, &cmder.flags.postgresDSN)
	config.AddStringFlag(cmd, config.Registry, config.FlagAssistantURL, &cmder.flags.assistantURL)
	config.AddStringFlag(cmd, config.Registry, config.FlagAssistantKey, &cmder.flags.assistantKey)
	config.AddStringFlag(cmd, config.Registry, config.FlagAssistantID, &cmder.flags.assistantID)
	config.AddStringFlag(cmd, config.Registry, config.FlagAppID, &cmder.flags.appID)
	config.AddStringFlag(cmd, config.Registry, config.FlagAppPassword, &cmder.flags.appPassword)
	config.AddBoolFlag(cmd, config.Registry, config.FlagRecordOnMessage, &cmder.flags.recordOnMessage)
	config.AddStringFlag(cmd, config.Registry, config.FlagEvents, &cmder.flags.events)
	config.AddStringFlag(cmd, config.Registry, config.FlagKafkaBrokers, &cmder.flags.kafkaBrokers)
	config.AddStringFlag(cmd, config.Registry, config.FlagKafkaTopic, &cmder.flags.kafkaTopic)
	config.AddUintFlag(cmd, config.Registry, config.FlagNotifyConc, &cmder.flags.notifyConc)

	cmd.Flags().StringVar(&cmder.envFile, "env-file", ".env", "Dotenv file loaded before reading settings (ignored when missing)")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")
	cmd.Flags().BoolVar(&cmder.jsonLogs, "json", false, "Write JSON logs to stdout instead of pretty output")

	return cmd
}

// load resolves settings into viper: .env first, so BRIDGE_* variables it
// defines take part in the normal precedence chain.
func (c *ServeCommander) load(cmd *cobra.Command) error {
	c.debug, _ = cmd.Flags().GetBool("debug")
	c.configDir, _ = cmd.Flags().GetString("config-dir")

	if err := loadEnvFile(c.envFile, cmd.Flags().Changed("env-file")); err != nil {
		return err
	}

	v, err := config.InitViper(c.configDir)
	if err != nil {
		return err
	}
	config.BindRegisteredFlags(v, cmd, config.Registry, serveFlags)
	c.viper = v

	return nil
}

// loadEnvFile loads path into the process environment without overriding
// variables that are already set. A missing file is only an error when the
// path was given explicitly.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return nil
	}
	return fmt.Errorf("loading env file %s: %w", path, err)
}

func (c *ServeCommander) newLogger() (*slog.Logger, func(), error) {
	format := logger.FormatPretty
	if c.jsonLogs {
		format = logger.FormatJSON
	}
	console := logger.New(
		logger.WithDebug(c.debug),
		logger.WithFormat(format),
		logger.WithComponent("serve"),
	)
	if c.logFile == "" {
		return console, func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	file := logger.New(
		logger.WithDebug(c.debug),
		logger.WithFormat(logger.FormatJSON),
		logger.WithComponent("serve"),
		logger.WithWriter(f),
	)
	return logger.Tee(console, file), func() { f.Close() }, nil
}

func (c *ServeCommander) run(ctx context.Context) error {
	log, closeLog, err := c.newLogger()
	if err != nil {
		return err
	}
	defer closeLog()
	c.logger = log

	driver, err := c.newStorageDriver(ctx)
	if err != nil {
		return err
	}
	defer driver.Close()

	publisher, err := c.newPublisher()
	if err != nil {
		return err
	}
	defer publisher.Close()

	srv, err := c.newServer(driver, publisher)
	if err != nil {
		return err
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		c.logger.Info("received signal, shutting down")
		return srv.Shutdown()
	}
}

func (c *ServeCommander) newStorageDriver(ctx context.Context) (storage.Driver, error) {
	opts := provider.Options{
		Provider:    c.viper.GetString("storage.provider"),
		PostgresDSN: c.viper.GetString("storage.postgres_dsn"),
	}

	if opts.Provider == provider.SQLite {
		path, err := dotdir.NewManager().ResolvePath(c.configDir, c.viper.GetString("storage.sqlite_path"))
		if err != nil {
			return nil, err
		}
		opts.SQLitePath = path
	}

	driver, err := provider.Open(ctx, opts)
	if err != nil {
		return nil, err
	}

	c.logger.Info("using storage",
		"provider", opts.Provider,
		"sqlite_path", opts.SQLitePath,
	)
	return driver, nil
}

// newPublisher returns the event publisher. Kafka publishing goes through a
// worker pool so a slow broker never holds up a turn.
func (c *ServeCommander) newPublisher() (eventstream.Publisher, error) {
	switch events := c.viper.GetString("events.provider"); events {
	case "", config.EventsNone:
		return nop.NewPublisher(), nil

	case config.EventsKafka:
		kp, err := kafka.NewPublisher(kafka.Config{
			Brokers: config.Brokers(c.viper),
			Topic:   c.viper.GetString("events.topic"),
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}

		pool, err := worker.NewPool(&worker.Config{
			Publisher: kp,
			Logger:    c.logger,
		})
		if err != nil {
			kp.Close()
			return nil, fmt.Errorf("creating event worker pool: %w", err)
		}

		c.logger.Info("publishing events to kafka",
			"brokers", config.Brokers(c.viper),
			"topic", c.viper.GetString("events.topic"),
		)
		return pool, nil

	default:
		return nil, fmt.Errorf("unknown events provider %q", events)
	}
}

func (c *ServeCommander) newServer(driver storage.Driver, publisher eventstream.Publisher) (*server.Server, error) {
	v := c.viper

	backend, err := watson.New(watson.Config{
		URL:         v.GetString("assistant.url"),
		APIKey:      v.GetString("assistant.api_key"),
		AssistantID: v.GetString("assistant.assistant_id"),
		Version:     v.GetString("assistant.version"),
		IAMURL:      v.GetString("assistant.iam_url"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating assistant client: %w", err)
	}

	sessions, err := session.NewManager(session.Config{
		Assistant: backend,
		Publisher: publisher,
		Logger:    c.logger,
	})
	if err != nil {
		return nil, err
	}

	directory, err := reference.NewDirectory(reference.Config{
		Driver:    driver,
		Publisher: publisher,
		Logger:    c.logger,
	})
	if err != nil {
		return nil, err
	}

	connector := channel.NewClient(channel.Config{
		AppID:       v.GetString("channel.app_id"),
		AppPassword: v.GetString("channel.app_password"),
		Logger:      c.logger,
	})
	adapter := bot.NewAdapter(connector, c.logger)

	b, err := bot.New(bot.Config{
		Sessions:        sessions,
		Profiles:        session.NewProfileStore(driver),
		Directory:       directory,
		Dispatcher:      reply.NewDispatcher(c.logger),
		RecordOnMessage: v.GetBool("channel.record_on_message"),
		Logger:          c.logger,
	})
	if err != nil {
		return nil, err
	}

	notifier, err := notify.NewNotifier(notify.Config{
		Directory:   directory,
		Adapter:     adapter,
		Publisher:   publisher,
		Message:     v.GetString("notify.message"),
		Concurrency: int(v.GetUint("notify.concurrency")),
		Logger:      c.logger,
	})
	if err != nil {
		return nil, err
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Directory: directory,
		Notifier:  notifier,
		Logger:    c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}

	return server.NewServer(server.Config{
		ListenAddr: v.GetString("server.listen"),
		Adapter:    adapter,
		Bot:        b,
		Directory:  directory,
		Notifier:   notifier,
		MCPHandler: mcpServer.Handler(),
		Logger:     c.logger,
	})
}
