package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/jackc/pgx/v5"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/remihome/remi-card/internal/pkg/card"
	"github.com/remihome/remi-card/internal/pkg/config"
	"github.com/remihome/remi-card/internal/pkg/database"
	"github.com/remihome/remi-card/internal/pkg/database/migration"
	"github.com/remihome/remi-card/internal/pkg/dispatch"
	"github.com/remihome/remi-card/internal/pkg/hass"
	"github.com/remihome/remi-card/internal/pkg/model"
	"github.com/remihome/remi-card/internal/pkg/mqtt"
	"github.com/remihome/remi-card/internal/pkg/publisher"
	"github.com/remihome/remi-card/internal/pkg/server"
	"github.com/remihome/remi-card/internal/pkg/statestore"
)

// CardCommand is the main entry point: it assembles configuration from flags
// and environment and starts all services.
func CardCommand(ctx *cli.Context) error {
	cardCfg, err := config.CardFromEnv()
	if err != nil {
		return err
	}
	if v := ctx.String("device-id"); v != "" {
		cardCfg.DeviceID = v
	}
	if v := ctx.String("device-name"); v != "" {
		cardCfg.DeviceName = v
	}

	cfg := &config.Config{
		Card: cardCfg,
		Hass: &config.HassConfig{
			URL:   ctx.String("hass-url"),
			Token: ctx.String("hass-token"),
		},
		Mqtt: &config.MqttConfig{
			Host:     ctx.String("mqtt-host"),
			Username: ctx.String("mqtt-user"),
			Password: ctx.String("mqtt-pass"),
		},
		Database: &config.DatabaseConfig{
			URL:              ctx.String("database-url"),
			MigrationsFolder: ctx.String("migrations-folder"),
		},
		Server: &config.ServerConfig{
			ListenAddr:   ctx.String("listen-addr"),
			APISecret:    ctx.String("api-secret"),
			PasswordHash: ctx.String("password-hash"),
		},
		LogLevel: ctx.String("log-level"),
	}

	return run(ctx.Context, cfg)
}

func run(ctx context.Context, cfg *config.Config) error {
	errorChan := make(chan error, 1000)
	var err error

	eg, ctx := errgroup.WithContext(ctx)
	logCfg := zap.NewProductionConfig()

	logCfg.Level, err = zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	logger := zap.Must(logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)))
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	zap.ReplaceGlobals(logger)

	if err := migration.Migrate(cfg.Database.URL, cfg.Database.MigrationsFolder); err != nil {
		return err
	}

	conn, err := pgx.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	db := database.NewDatabase(conn)
	defer db.Close()

	if err := publisher.Register("postgres", db); err != nil {
		return err
	}

	if cfg.Mqtt.Host != "" {
		opts := paho_mqtt.NewClientOptions().
			AddBroker(cfg.Mqtt.Host).
			SetUsername(cfg.Mqtt.Username).
			SetPassword(cfg.Mqtt.Password).
			SetClientID("remi-card")
		mqttSvc := mqtt.New(paho_mqtt.NewClient(opts))
		if err := mqttSvc.Connect(); err != nil {
			return err
		}
		if err := publisher.Register("mqtt", mqttSvc); err != nil {
			return err
		}
	}

	store := statestore.New()
	cardSvc, err := card.New(cfg.Card, store, db)
	if err != nil {
		return err
	}
	if err := cardSvc.RestoreConfig(ctx); err != nil {
		logger.Warn("could not restore stored card config", zap.Error(err))
	}
	publisher.RegisterDevice(&model.Device{ID: cfg.Card.DeviceID, Name: cfg.Card.Name()})

	hassSvc := hass.New(cfg.Hass, store, errorChan)
	hub := server.NewHub()
	cardSvc.SetBroadcaster(hub)
	dispatcher := dispatch.New(hassSvc, hub)

	eg.Go(func() error {
		return cronDbCleanup(db, errorChan)
	})

	eg.Go(func() error {
		// Session loop: rebuild the whole host session on every disconnect.
		backoff := time.Second
		for {
			if err := hassSvc.Connect(ctx); err != nil {
				logger.Error("host connect failed", zap.Error(err))
			} else {
				backoff = time.Second
				if err := <-hassSvc.SubscribeToDisconnect(); errors.Is(err, hass.ErrDisconnected) {
					logger.Warn("host session ended, reconnecting")
				}
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 20*time.Second {
				backoff *= 2
			}
		}
	})

	eg.Go(func() error {
		srv := &http.Server{
			Handler:      server.New(cardSvc, dispatcher, db, hub, cfg.Server).Routes(),
			Addr:         cfg.Server.ListenAddr,
			WriteTimeout: 15 * time.Second,
			ReadTimeout:  15 * time.Second,
		}
		return srv.ListenAndServe()
	})

	eg.Go(func() error {
		// handle any async errors from services
		for {
			select {
			case err := <-errorChan:
				if errors.Is(err, errCron) {
					logger.Error("cron error", zap.Error(err))
					return err
				}
				logger.Error("async service error", zap.Error(err))
			case <-ctx.Done():
				logger.Info("context done")
				return ctx.Err()
			}
		}
	})

	return eg.Wait()
}

var errCron = errors.New("cron error")

func cronDbCleanup(db *database.Database, errChan chan error) error {
	if err := db.Cleanup(context.Background()); err != nil {
		return err
	}

	c := cron.New()
	if _, err := c.AddFunc("0 3 * * *", func() {
		if err := db.Cleanup(context.Background()); err != nil {
			zap.L().Error("error cleaning up database", zap.Error(err))
			errChan <- errCron
			return
		}
		zap.L().Info("history cleanup done")
	}); err != nil {
		return err
	}

	c.Run()
	return nil
}
