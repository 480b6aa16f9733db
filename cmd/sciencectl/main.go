// AngelaMos | 2026
// main.go

package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/science-ai/backend/internal/auth"
	"github.com/science-ai/backend/internal/config"
)

type CLI struct {
	Cite   CiteCmd   `cmd:"" help:"Format a sources file as citations or an export."`
	Styles StylesCmd `cmd:"" help:"List supported citation styles."`
	Keys   KeysCmd   `cmd:"" help:"Manage JWT signing keys."`
	Token  TokenCmd  `cmd:"" help:"Issue access tokens for local testing."`

	LogLevel string `help:"Log level (debug, info, warn, error)." default:"warn"`
}

type KeysCmd struct {
	Generate KeysGenerateCmd `cmd:"" help:"Generate an ES256 key pair."`
}

type KeysGenerateCmd struct {
	PrivateKey string `name:"private-key" help:"Private key output path." default:"keys/private.pem" env:"JWT_PRIVATE_KEY_PATH" type:"path"`
	PublicKey  string `name:"public-key" help:"Public key output path." default:"keys/public.pem" env:"JWT_PUBLIC_KEY_PATH" type:"path"`
	Force      bool   `help:"Overwrite existing keys."`
}

func (c *KeysGenerateCmd) Run() error {
	if !c.Force {
		if _, err := os.Stat(c.PrivateKey); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", c.PrivateKey)
		}
	}

	if err := auth.GenerateKeyPair(c.PrivateKey, c.PublicKey); err != nil {
		return err
	}

	slog.Info("key pair generated", "private", c.PrivateKey, "public", c.PublicKey)
	fmt.Println(c.PublicKey)
	return nil
}

type TokenCmd struct {
	Issue TokenIssueCmd `cmd:"" help:"Sign an access token."`
}

type TokenIssueCmd struct {
	User       string        `arg:"" help:"Subject user ID."`
	Role       string        `help:"Role claim." default:"user" enum:"user,admin"`
	Plan       string        `help:"Plan claim." default:"free" enum:"free,starter,pro,premium"`
	TTL        time.Duration `help:"Token lifetime." default:"15m"`
	PrivateKey string        `name:"private-key" help:"Signing key path." default:"keys/private.pem" env:"JWT_PRIVATE_KEY_PATH" type:"path"`
	PublicKey  string        `name:"public-key" help:"Verification key path." default:"keys/public.pem" env:"JWT_PUBLIC_KEY_PATH" type:"path"`
	Issuer     string        `help:"Token issuer." default:"science-ai" env:"JWT_ISSUER"`
	Audience   string        `help:"Token audience." default:"science-ai-api" env:"JWT_AUDIENCE"`
}

func (c *TokenIssueCmd) Run() error {
	manager, err := auth.NewJWTManager(config.JWTConfig{
		PrivateKeyPath:    c.PrivateKey,
		PublicKeyPath:     c.PublicKey,
		AccessTokenExpire: c.TTL,
		Issuer:            c.Issuer,
		Audience:          c.Audience,
	})
	if err != nil {
		return err
	}

	token, err := manager.CreateAccessToken(auth.AccessTokenClaims{
		UserID: c.User,
		Role:   c.Role,
		Plan:   c.Plan,
	})
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}

func main() {
	_ = godotenv.Load()

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("sciencectl"),
		kong.Description("Science AI operator tooling: citations, keys and tokens."),
		kong.UsageOnError(),
	)

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cli.LogLevel),
	})))

	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	}
	return slog.LevelWarn
}
