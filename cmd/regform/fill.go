package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-regform/pkg/form"
	"github.com/goliatone/go-regform/pkg/prompt"
	"github.com/goliatone/go-regform/pkg/store"
)

func newFillCmd(a *app) *cobra.Command {
	var withPicture bool
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill and submit the registration form in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.countries()
			if err != nil {
				return err
			}
			st := store.New()
			st.SetCountries(list)

			v := a.validator()
			options := []prompt.Option{
				prompt.WithPromptDriver(prompt.NewSurveyDriver(cmd.OutOrStdout())),
				prompt.WithCountries(store.SelectCountries(st.State())),
				prompt.WithOutput(cmd.OutOrStdout()),
			}
			if withPicture {
				options = append(options, prompt.WithPicturePrompt(nil, a.cfg.UploadLimit))
			}

			_, err = prompt.NewFiller(v, options...).Fill(cmd.Context(), form.NewManual(v, st))
			return err
		},
	}
	cmd.Flags().BoolVar(&withPicture, "picture", false, "also ask for a picture path")
	return cmd
}
