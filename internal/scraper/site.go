// Package scraper describes a job board: how its search URLs are built and
// which selectors locate listings and application form fields.
package scraper

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxLinksPerPage bounds how many listings are inspected on one results page.
const MaxLinksPerPage = 25

// Selectors locate the elements the bot reads or fills.
type Selectors struct {
	ListingLink string
	NextPage    string

	CompanyName  string
	Apply        string
	ResumeUpload string
	Name         string
	Location     string
	Email        string
	Phone        string
	CoverLetter  string
	Submit       string
}

// Site is a job board definition.
type Site struct {
	Name string
	// SearchURL contains {keyword} and {location} placeholders.
	SearchURL       string
	Selectors       Selectors
	MaxLinksPerPage int
}

// BaseURL builds the search URL for one keyword/location pair.
func (s Site) BaseURL(keyword, location string) string {
	r := strings.NewReplacer(
		"{keyword}", queryValue(keyword),
		"{location}", queryValue(location),
	)
	return r.Replace(s.SearchURL)
}

// BaseURLs returns one search URL per pair, locations outer and keywords
// inner, matching the order results are crawled in.
func (s Site) BaseURLs(keywords, locations []string) []string {
	urls := make([]string, 0, len(keywords)*len(locations))
	for _, loc := range locations {
		for _, kw := range keywords {
			urls = append(urls, s.BaseURL(kw, loc))
		}
	}
	return urls
}

func queryValue(v string) string {
	return url.QueryEscape(norm.NFC.String(strings.TrimSpace(v)))
}

// selectorFields maps config keys to selector fields.
func (sel *Selectors) fields() map[string]*string {
	return map[string]*string{
		"listing_link":           &sel.ListingLink,
		"next_page":              &sel.NextPage,
		"company_name":           &sel.CompanyName,
		"apply":                  &sel.Apply,
		"resume_upload":          &sel.ResumeUpload,
		"candidate_name":         &sel.Name,
		"candidate_location":     &sel.Location,
		"candidate_email":        &sel.Email,
		"candidate_phone_number": &sel.Phone,
		"cover_letter":           &sel.CoverLetter,
		"submit":                 &sel.Submit,
	}
}

// WithOverrides returns a copy of s with a replaced search URL and
// selectors. Unknown selector keys are rejected.
func (s Site) WithOverrides(searchURL string, selectors map[string]string) (Site, error) {
	out := s
	if searchURL != "" {
		out.SearchURL = searchURL
	}
	fields := out.Selectors.fields()
	var unknown []string
	for k, v := range selectors {
		f, ok := fields[k]
		if !ok {
			unknown = append(unknown, k)
			continue
		}
		if v != "" {
			*f = v
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return s, fmt.Errorf("unknown selector keys: %s", strings.Join(unknown, ", "))
	}
	if out.MaxLinksPerPage <= 0 {
		out.MaxLinksPerPage = MaxLinksPerPage
	}
	return out, nil
}
