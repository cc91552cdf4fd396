// Package stackjobs holds the Stack Overflow Jobs board definition.
package stackjobs

import "go-jobsbot-automation/internal/scraper"

// SearchURL lists mid-level postings newest first.
const SearchURL = "https://stackoverflow.com/jobs?sort=p&q={keyword}&l={location}&mxs=MidLevel"

func New() scraper.Site {
	return scraper.Site{
		Name:            "Stack Overflow Jobs",
		SearchURL:       SearchURL,
		MaxLinksPerPage: scraper.MaxLinksPerPage,
		Selectors: scraper.Selectors{
			ListingLink: "#mainbar div.listResults > div h2 > a",
			NextPage:    `.s-pagination a[rel="next"]`,

			CompanyName:  "#content > header > div:nth-child(2) > div > a",
			Apply:        "#content > header > div:nth-child(3) > div:nth-child(1) > a",
			ResumeUpload: `#uploader-wrapper input[type="file"]`,
			Name:         "#CandidateName",
			Location:     "#CandidateLocation",
			Email:        "#CandidateEmail",
			Phone:        "#CandidatePhoneNumber",
			CoverLetter:  "#CoverLetter",
			Submit:       `#content div.j-full-page-apply form input[type="submit"]`,
		},
	}
}
