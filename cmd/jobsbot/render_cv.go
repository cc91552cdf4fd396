package main

import (
	"fmt"

	"go-jobsbot-automation/internal/config"
	"go-jobsbot-automation/internal/models"
	"go-jobsbot-automation/internal/pdf"

	"github.com/spf13/cobra"
)

func newRenderCVCmd(root *rootOptions) *cobra.Command {
	var htmlOnly bool

	cmd := &cobra.Command{
		Use:   "render-cv",
		Short: "Render the résumé JSON into the CV PDF that is uploaded with applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			if cfg.Resume.JSONPath == "" || cfg.Resume.TemplatePath == "" {
				return fmt.Errorf("%w: resume.json_path and resume.template_path are required for render-cv",
					config.ErrInvalidConfig)
			}

			resume, err := models.LoadResume(cfg.Resume.JSONPath)
			if err != nil {
				return err
			}
			gen := pdf.NewGenerator(cfg.Resume.TemplatePath)

			if htmlOnly {
				html, err := gen.RenderHTML(resume)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), html)
				return err
			}

			data, err := gen.Generate(cmd.Context(), resume)
			if err != nil {
				return err
			}
			if err := pdf.SaveToFile(data, cfg.CVPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "CV written to %s\n", cfg.CVPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&htmlOnly, "html", false, "print the rendered HTML instead of writing the PDF")
	return cmd
}
