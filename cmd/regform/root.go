package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-regform/components/countries"
	"github.com/goliatone/go-regform/internal/config"
	"github.com/goliatone/go-regform/pkg/model"
	"github.com/goliatone/go-regform/pkg/validation"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configFile string
	envFile    string
	overrides  config.Config

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	defaults := config.Default()

	root := &cobra.Command{
		Use:           "regform",
		Short:         "Registration forms with live validation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "YAML config file")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file, ignored when missing")
	flags.StringVar(&a.overrides.HTTPAddr, "addr", defaults.HTTPAddr, "HTTP listen address")
	flags.StringVar(&a.overrides.LogLevel, "log-level", defaults.LogLevel, "debug, info, warn or error")
	flags.BoolVar(&a.overrides.DevLogging, "dev", defaults.DevLogging, "human readable development logs")
	flags.BoolVar(&a.overrides.UnicodeNames, "unicode-names", defaults.UnicodeNames, "accept names in any script")
	flags.BoolVar(&a.overrides.StrictGender, "strict-gender", defaults.StrictGender, "restrict gender to the listed options")
	flags.StringVar(&a.overrides.CountriesFile, "countries-file", defaults.CountriesFile, "YAML country list replacing the built-in one")
	flags.StringVar(&a.overrides.ThemeVariant, "theme", defaults.ThemeVariant, "theme variant: light or dark")
	flags.StringSliceVar(&a.overrides.CORSOrigins, "cors-origin", nil, "origin allowed to call the JSON endpoints, repeatable")
	flags.Int64Var(&a.overrides.UploadLimit, "upload-limit", defaults.UploadLimit, "maximum picture size in bytes")

	root.AddCommand(newServeCmd(a), newFillCmd(a), newCountriesCmd(a))
	return root
}

// load resolves the config and applies only the flags that were set, so
// flags override every other source.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(config.Sources{File: a.configFile, EnvFile: a.envFile})
	if err != nil {
		return err
	}

	set := func(name string, apply func()) {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
	set("addr", func() { cfg.HTTPAddr = a.overrides.HTTPAddr })
	set("log-level", func() { cfg.LogLevel = a.overrides.LogLevel })
	set("dev", func() { cfg.DevLogging = a.overrides.DevLogging })
	set("unicode-names", func() { cfg.UnicodeNames = a.overrides.UnicodeNames })
	set("strict-gender", func() { cfg.StrictGender = a.overrides.StrictGender })
	set("countries-file", func() { cfg.CountriesFile = a.overrides.CountriesFile })
	set("theme", func() { cfg.ThemeVariant = a.overrides.ThemeVariant })
	set("upload-limit", func() { cfg.UploadLimit = a.overrides.UploadLimit })
	set("cors-origin", func() { cfg.CORSOrigins = a.overrides.CORSOrigins })
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) validator() validation.Validator {
	var opts []validation.Option
	if a.cfg.UnicodeNames {
		opts = append(opts, validation.WithUnicodeNames())
	}
	if a.cfg.StrictGender {
		opts = append(opts, validation.WithStrictGender())
	}
	return validation.New(opts...)
}

func (a *app) countries() ([]model.Country, error) {
	if a.cfg.CountriesFile == "" {
		return countries.DefaultCountries()
	}
	list, err := countries.LoadFile(a.cfg.CountriesFile)
	if err != nil {
		return nil, fmt.Errorf("load countries: %w", err)
	}
	return list, nil
}
