// Package apply submits one pre-filled application on a posting page.
package apply

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-jobsbot-automation/internal/browser"
	"go-jobsbot-automation/internal/logger"
	"go-jobsbot-automation/internal/scraper"
)

const (
	navigateDelay = 2 * time.Second
	// uploadDelay gives the board time to receive and virus-scan the résumé
	// before the form is submitted.
	uploadDelay = 20 * time.Second
	submitDelay = 2 * time.Second
)

// Candidate is what goes into the application form.
type Candidate struct {
	Name     string
	Location string
	Email    string
	Phone    string
	Letter   string
	CVPath   string
}

// Outcome describes a finished attempt.
type Outcome struct {
	Submitted bool
	// External is set when the posting is handled on another site.
	External bool
	Company  string
}

type Applier struct {
	client    browser.PageClient
	selectors scraper.Selectors
	candidate Candidate
	pacer     *browser.Pacer
	log       logger.Logger
}

func New(client browser.PageClient, site scraper.Site, candidate Candidate, pacer *browser.Pacer, log logger.Logger) *Applier {
	return &Applier{
		client:    client,
		selectors: site.Selectors,
		candidate: candidate,
		pacer:     pacer,
		log:       log,
	}
}

// Apply opens the posting, checks that it can be applied to on the board,
// fills the form and submits it. An external posting is reported through
// Outcome without an error; any other failure is returned.
func (a *Applier) Apply(ctx context.Context, url string) (Outcome, error) {
	var out Outcome

	if err := a.client.Navigate(ctx, url); err != nil {
		return out, err
	}
	if err := a.pacer.Pause(ctx, navigateDelay); err != nil {
		return out, err
	}
	if err := browser.Humanize(ctx, a.client, a.pacer); err != nil {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		a.log.Debug("Page gestures skipped", logger.Error(err))
	}

	out.Company = a.companyName(ctx)

	applyEl, err := browser.First(ctx, a.client, a.selectors.Apply)
	if err != nil {
		return out, err
	}
	target, err := applyEl.Attribute(ctx, "target")
	if err != nil {
		return out, fmt.Errorf("read apply target: %w", err)
	}
	if target != "" {
		out.External = true
		return out, nil
	}
	if err := applyEl.Click(ctx); err != nil {
		return out, fmt.Errorf("open application form: %w", err)
	}

	if err := a.fillForm(ctx); err != nil {
		return out, err
	}
	if err := a.pacer.Pause(ctx, uploadDelay); err != nil {
		return out, err
	}

	submit, err := browser.First(ctx, a.client, a.selectors.Submit)
	if err != nil {
		return out, err
	}
	if err := submit.Click(ctx); err != nil {
		return out, fmt.Errorf("submit application: %w", err)
	}
	if err := a.pacer.Pause(ctx, submitDelay); err != nil {
		return out, err
	}

	if accepted, err := a.client.AcceptDialog(ctx); err != nil {
		a.log.Debug("Confirmation dialog not handled", logger.Error(err))
	} else if accepted {
		a.log.Debug("Confirmation dialog accepted")
	}

	out.Submitted = true
	return out, nil
}

// companyName is informational only; failures are ignored.
func (a *Applier) companyName(ctx context.Context) string {
	if a.selectors.CompanyName == "" {
		return ""
	}
	el, err := browser.First(ctx, a.client, a.selectors.CompanyName)
	if err != nil {
		return ""
	}
	name, err := el.Text(ctx)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(name)
}

func (a *Applier) fillForm(ctx context.Context) error {
	a.log.Info("Uploading necessary information")

	upload, err := browser.First(ctx, a.client, a.selectors.ResumeUpload)
	if err != nil {
		return err
	}
	if err := upload.Upload(ctx, a.candidate.CVPath); err != nil {
		return fmt.Errorf("upload resume: %w", err)
	}

	fields := []struct {
		selector string
		value    string
	}{
		{a.selectors.Name, a.candidate.Name},
		{a.selectors.Location, a.candidate.Location},
		{a.selectors.Email, a.candidate.Email},
		{a.selectors.Phone, a.candidate.Phone},
	}
	for _, f := range fields {
		el, err := browser.First(ctx, a.client, f.selector)
		if err != nil {
			return err
		}
		if err := el.Clear(ctx); err != nil {
			return fmt.Errorf("clear %s: %w", f.selector, err)
		}
		if err := el.Type(ctx, f.value); err != nil {
			return fmt.Errorf("fill %s: %w", f.selector, err)
		}
	}

	letter, err := browser.First(ctx, a.client, a.selectors.CoverLetter)
	if err != nil {
		return err
	}
	if err := letter.Clear(ctx); err != nil {
		return fmt.Errorf("clear cover letter: %w", err)
	}
	if err := letter.SetValue(ctx, a.candidate.Letter); err != nil {
		return fmt.Errorf("set cover letter: %w", err)
	}
	return nil
}
