/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind              string
	lives             int
	maxMessageSize    int64
	port              int
	prefix            string
	profile           bool
	rateLimitBurst    int
	rateLimitInterval time.Duration
	sessionTimeout    time.Duration
	tlsCert           string
	tlsKey            string
	verbose           bool
	version           bool
	wordDelay         time.Duration
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.lives < 1 {
		return fmt.Errorf("invalid lives (must be at least 1): %d", c.lives)
	}
	if c.wordDelay < 0 {
		return fmt.Errorf("invalid word delay (must not be negative): %s", c.wordDelay)
	}
	if c.maxMessageSize < 1 {
		return fmt.Errorf("invalid max message size (must be positive): %d", c.maxMessageSize)
	}
	if c.rateLimitBurst < 1 || c.rateLimitInterval <= 0 {
		return fmt.Errorf("invalid rate limit (%d per %s)", c.rateLimitBurst, c.rateLimitInterval)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SPELLDOWN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "spelldown",
		Short:         "A multiplayer spelling elimination game, served as a single webapp.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: SPELLDOWN_BIND)")
	fs.IntVar(&cfg.lives, "lives", 3, "lives each player starts with (env: SPELLDOWN_LIVES)")
	fs.Int64Var(&cfg.maxMessageSize, "max-message-size", 512, "largest inbound websocket message accepted, in bytes (env: SPELLDOWN_MAX_MESSAGE_SIZE)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: SPELLDOWN_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: SPELLDOWN_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: SPELLDOWN_PROFILE)")
	fs.IntVar(&cfg.rateLimitBurst, "rate-limit-burst", 5, "messages a single connection may send per interval (env: SPELLDOWN_RATE_LIMIT_BURST)")
	fs.DurationVar(&cfg.rateLimitInterval, "rate-limit-interval", time.Second, "interval over which the burst refills (env: SPELLDOWN_RATE_LIMIT_INTERVAL)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle, disconnected lobbies are ended; 0 disables (env: SPELLDOWN_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: SPELLDOWN_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: SPELLDOWN_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: SPELLDOWN_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: SPELLDOWN_VERSION)")
	fs.DurationVar(&cfg.wordDelay, "word-delay", 2*time.Second, "pause between a turn resolving and the next word (env: SPELLDOWN_WORD_DELAY)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("spelldown v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
