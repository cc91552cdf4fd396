package models

import (
	"encoding/json"
	"fmt"
	"os"
)

// Resume is the JSON résumé rendered into the CV attached to every
// application.
type Resume struct {
	Candidate  Candidate    `json:"candidate"`
	Summary    string       `json:"summary"`
	Skills     []SkillGroup `json:"skills"`
	Experience []Position   `json:"experience"`
	Education  []Degree     `json:"education"`
	Links      []string     `json:"links,omitempty"`
}

type Candidate struct {
	FullName string `json:"full_name"`
	Title    string `json:"title"`
	Location string `json:"location"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type SkillGroup struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

type Position struct {
	Role       string   `json:"role"`
	Company    string   `json:"company"`
	Period     string   `json:"period"`
	Highlights []string `json:"highlights,omitempty"`
}

type Degree struct {
	Title       string `json:"title"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

// LoadResume reads a résumé JSON file.
func LoadResume(path string) (*Resume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resume: %w", err)
	}
	var r Resume
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse resume %s: %w", path, err)
	}
	if r.Candidate.FullName == "" {
		return nil, fmt.Errorf("resume %s: candidate.full_name is empty", path)
	}
	return &r, nil
}
