package pdf

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"go-jobsbot-automation/internal/browser"
	"go-jobsbot-automation/internal/models"
)

// Generator turns a résumé into the CV PDF uploaded with applications.
type Generator struct {
	templatePath string
}

func NewGenerator(templatePath string) *Generator {
	return &Generator{templatePath: templatePath}
}

// RenderHTML executes the HTML template against the résumé.
func (g *Generator) RenderHTML(resume *models.Resume) (string, error) {
	funcMap := template.FuncMap{
		"join": strings.Join,
	}

	tmpl, err := template.New(filepath.Base(g.templatePath)).Funcs(funcMap).ParseFiles(g.templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, resume); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// Generate renders the résumé and prints it to PDF in a headless browser.
func (g *Generator) Generate(ctx context.Context, resume *models.Resume) ([]byte, error) {
	htmlContent, err := g.RenderHTML(resume)
	if err != nil {
		return nil, err
	}

	pw, err := browser.NewPlaywright(browser.PlaywrightOptions{Headless: true})
	if err != nil {
		return nil, err
	}
	defer pw.Close()

	return pw.PDF(ctx, htmlContent)
}

// SaveToFile writes the PDF, creating parent directories.
func SaveToFile(pdfBytes []byte, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("could not create directory: %w", err)
	}
	return os.WriteFile(outputPath, pdfBytes, 0o644)
}
