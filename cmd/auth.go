package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/remihome/remi-card/internal/pkg/server"
	"github.com/remihome/remi-card/pkg/hasher"
)

// SecretCommand generates the credentials the API server is started with: a
// random signing secret and, when a password is given, its bcrypt hash.
func SecretCommand(ctx *cli.Context) error {
	secret, err := hasher.GenerateToken(32)
	if err != nil {
		return err
	}
	fmt.Println("api-secret:", secret)

	if pw := ctx.String("password"); pw != "" {
		hash, err := hasher.HashPassword([]byte(pw))
		if err != nil {
			return err
		}
		fmt.Println("password-hash:", hash)
	}
	return nil
}

// TokenCommand signs an API token with an existing secret, for dashboards
// that cannot go through the login endpoint.
func TokenCommand(ctx *cli.Context) error {
	secret := ctx.String("api-secret")
	if secret == "" {
		return errors.New("api-secret is required")
	}
	token, err := server.IssueToken(secret, ctx.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
