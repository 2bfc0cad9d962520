package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-regform/internal/server"
	"github.com/goliatone/go-regform/pkg/store"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the registration forms over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.countries()
			if err != nil {
				return err
			}
			st := store.New()

			srv, err := server.New(st,
				server.WithLogger(a.logger),
				server.WithValidator(a.validator()),
				server.WithUploadLimit(a.cfg.UploadLimit),
				server.WithThemeVariant(a.cfg.ThemeVariant),
				server.WithAllowedOrigins(a.cfg.CORSOrigins...),
			)
			if err != nil {
				return err
			}
			defer srv.Close()

			st.SetCountries(list)
			a.logger.Info("countries loaded", zap.Int("count", len(list)))
			return srv.ListenAndServe(cmd.Context(), a.cfg.HTTPAddr)
		},
	}
}
