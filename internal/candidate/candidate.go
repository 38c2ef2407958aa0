package candidate

import (
	"encoding/json"
	"os"
	"strings"
)

// Raw is a candidate record as the matching backend returns it. Everything
// besides name and cv_link is untrusted free text.
type Raw struct {
	Name            string `json:"name"`
	RelevantContent string `json:"relevant_content"`
	CVLink          string `json:"cv_link"`
}

// Candidate is the fully populated display entity produced by Normalize.
// Immutable once created; other components reference it by ID only.
type Candidate struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	Avatar       string   `json:"avatar"`
	Skills       []string `json:"skills"`
	Location     string   `json:"location"`
	Experience   string   `json:"experience"`
	CVURL        string   `json:"cv_url"`
	Initials     string   `json:"initials"`
	GradientFrom string   `json:"gradient_from"`
	GradientTo   string   `json:"gradient_to"`
}

// DownloadFileName suggests a filename for the candidate's CV.
func (c *Candidate) DownloadFileName() string {
	return strings.Join(strings.Fields(c.Name), "_") + "_CV.pdf"
}

type Candidates struct {
	Items []*Candidate
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

func (c *Candidates) Names() []string {
	names := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		names = append(names, item.Name)
	}

	return names
}

// FindByID returns the candidate with the given id or nil.
func (c *Candidates) FindByID(id string) *Candidate {
	for _, item := range c.Items {
		if item.ID == id {
			return item
		}
	}

	return nil
}

// DumpToTmpFile writes the candidates as indented JSON to a temporary file
// and returns its name.
func (c *Candidates) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "hirepal-shortlist-")
	if err != nil {
		return "", err
	}
	defer file.Close()

	pretty, err := json.MarshalIndent(c.Items, "", "  ")
	if err != nil {
		return "", err
	}

	if _, err := file.Write(pretty); err != nil {
		return "", err
	}

	return file.Name(), nil
}
