package main

import (
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/remihome/remi-card/cmd"
)

func main() {
	app := &cli.App{
		Name:   "remi-card",
		Usage:  "headless dashboard card for the Remi sleep trainer",
		Action: cmd.CardCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "hass-url",
				EnvVars:  []string{"HASS_URL"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "hass-token",
				EnvVars: []string{"HASS_TOKEN"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "device-id",
				EnvVars: []string{"REMI_CARD_DEVICE_ID"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "device-name",
				EnvVars: []string{"REMI_CARD_DEVICE_NAME"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-host",
				EnvVars: []string{"MQTT_HOST"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-user",
				EnvVars: []string{"MQTT_USER"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-pass",
				EnvVars: []string{"MQTT_PASS"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:     "database-url",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "migrations-folder",
				EnvVars:  []string{"MIGRATIONS_FOLDER"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "listen-addr",
				EnvVars: []string{"LISTEN_ADDR"},
				Value:   "0.0.0.0:8000",
			},
			&cli.StringFlag{
				Name:    "api-secret",
				EnvVars: []string{"API_SECRET"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "password-hash",
				EnvVars: []string{"PASSWORD_HASH"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "INFO",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "secret",
				Usage:  "generate an api secret and optional password hash",
				Action: cmd.SecretCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "password", Value: ""},
				},
			},
			{
				Name:   "token",
				Usage:  "sign an api token with an existing secret",
				Action: cmd.TokenCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api-secret", EnvVars: []string{"API_SECRET"}},
					&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
