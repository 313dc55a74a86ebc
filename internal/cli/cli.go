// Package cli provides the itemizer command line: the API server and the
// maintenance commands that share its configuration.
package cli

import (
	"fmt"
	"os"

	"Itemizer/internal/config"
	"Itemizer/internal/pkg"
	"Itemizer/internal/repository/rdb"
	"Itemizer/internal/repository/redis"
	"Itemizer/internal/service"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ExitSuccess = 0
	ExitFailure = 1
)

// CLI holds the command-line interface state.
type CLI struct {
	rootCmd *cobra.Command
	cfg     *config.Config
	log     *zap.Logger

	configPath string
}

func New() *CLI {
	cli := &CLI{}
	cli.rootCmd = cli.newRootCmd()
	return cli
}

// Execute runs the CLI and returns the process exit code.
func (c *CLI) Execute() int {
	if err := c.rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return ExitFailure
	}
	return ExitSuccess
}

func (c *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "itemizer",
		Short:         "Itemizer - inventory tracking for organizations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initConfig()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (YAML)")

	cmd.AddCommand(c.newServeCmd())
	cmd.AddCommand(c.newMigrateCmd())
	cmd.AddCommand(c.newBanCmd())
	cmd.AddCommand(c.newUnbanCmd())
	cmd.AddCommand(c.newPurgeLogsCmd())
	return cmd
}

func (c *CLI) initConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	log, err := pkg.NewLogger(cfg.IsProduction(), cfg.Logging.Level)
	if err != nil {
		return err
	}
	c.log = log
	return nil
}

func (c *CLI) openDB() (*gorm.DB, error) {
	db, err := rdb.InitDB(c.cfg.Database.Driver, c.cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := rdb.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

func (c *CLI) openRedis() (*goredis.Client, error) {
	client, err := redis.Init(c.cfg.Redis.Addr, c.cfg.Redis.Password, c.cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

// app is everything the server and the maintenance commands share.
type app struct {
	db       *gorm.DB
	redis    *goredis.Client
	sessions *redis.SessionRepository
	signer   *pkg.Signer
	producer *pkg.KafkaProducer
	services *service.Services
}

func (a *app) Close() {
	if a.producer != nil {
		_ = a.producer.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (c *CLI) newApp() (*app, error) {
	db, err := c.openDB()
	if err != nil {
		return nil, err
	}
	client, err := c.openRedis()
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	a := &app{
		db:       db,
		redis:    client,
		sessions: &redis.SessionRepository{Client: client},
		signer:   pkg.NewSigner(c.cfg.Security.SecretKey, c.cfg.Security.PasswordSalt),
	}

	var publisher service.LogPublisher
	if c.cfg.Kafka.Enabled {
		a.producer, err = pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: c.cfg.Kafka.Brokers, Topic: c.cfg.Kafka.Topic})
		if err != nil {
			a.Close()
			return nil, err
		}
		publisher = &service.KafkaLogPublisher{Producer: a.producer}
	}

	smtp := c.cfg.SMTP
	a.services = service.New(service.Deps{
		DB:       db,
		Sessions: a.sessions,
		Signer:   a.signer,
		Mailer: pkg.NewSMTPMailer(pkg.SMTPConfig{
			Host:     smtp.Host,
			Port:     smtp.Port,
			Username: smtp.Username,
			Password: smtp.Password,
			From:     smtp.From,
		}),
		Email: service.EmailConfig{
			BaseURL:   c.cfg.Server.BaseURL,
			ClientURL: c.cfg.Server.ClientURL,
			Support:   smtp.Support,
		},
		Publisher: publisher,
		Log:       c.log,
	})
	return a, nil
}
