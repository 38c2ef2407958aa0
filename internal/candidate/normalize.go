package candidate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf16"
)

const (
	// RolePlaceholder is used when no role keyword is found in the content.
	RolePlaceholder = "Professional Candidate"
	// SkillsPlaceholder is the single skill emitted when nothing matched.
	SkillsPlaceholder     = "Skills: See CV"
	locationPlaceholder   = "Location: See CV"
	experiencePlaceholder = "Experience: See CV"
)

// roleKeywords is the v1 role/seniority/discipline table. Scan order is
// segment order first, then this order within a segment.
var roleKeywords = []string{
	"developer", "engineer", "designer", "manager", "analyst",
	"specialist", "consultant", "architect", "lead", "senior",
	"junior", "frontend", "backend", "fullstack", "software",
}

// skillVocabulary is the v1 technology/process vocabulary. Matches are
// emitted in this order regardless of their position in the content.
var skillVocabulary = []string{
	"react", "typescript", "javascript", "python", "java", "node",
	"aws", "docker", "kubernetes", "sql", "nosql", "html", "css",
	"vue", "angular", "django", "flask", "fastapi", "postgresql",
	"mongodb", "git", "ci/cd", "agile", "scrum", "rest", "graphql",
}

type gradient struct {
	from string
	to   string
}

var gradientPalette = []gradient{
	{from: "#667eea", to: "#764ba2"},
	{from: "#f093fb", to: "#f5576c"},
	{from: "#4facfe", to: "#00f2fe"},
	{from: "#43e97b", to: "#38f9d7"},
	{from: "#fa709a", to: "#fee140"},
	{from: "#30cfd0", to: "#330867"},
}

var slugSeparator = regexp.MustCompile(`\s+`)

// Normalize transforms a raw backend record into a display candidate. It is
// total: malformed or empty fields fall back to placeholders, never errors.
// Only the timestamp portion of the id depends on now; everything else is a
// pure function of the input.
func Normalize(raw *Raw, now time.Time) *Candidate {
	grad := gradientForName(raw.Name)

	return &Candidate{
		ID:           fmt.Sprintf("%s-%d", slugify(raw.Name), now.UnixMilli()),
		Name:         raw.Name,
		Role:         extractRole(raw.RelevantContent),
		Skills:       extractSkills(raw.RelevantContent),
		Location:     locationPlaceholder,
		Experience:   experiencePlaceholder,
		CVURL:        raw.CVLink,
		Initials:     initials(raw.Name),
		GradientFrom: grad.from,
		GradientTo:   grad.to,
	}
}

// NormalizeAll normalizes a backend result list, preserving order.
func NormalizeAll(raw []*Raw, now time.Time) *Candidates {
	items := make([]*Candidate, 0, len(raw))
	for _, r := range raw {
		items = append(items, Normalize(r, now))
	}

	return &Candidates{Items: items}
}

// extractRole returns the first sentence-like segment containing a role
// keyword, trimmed. Segments are split on periods.
func extractRole(content string) string {
	for _, sentence := range strings.Split(content, ".") {
		lower := strings.ToLower(sentence)
		for _, keyword := range roleKeywords {
			if strings.Contains(lower, keyword) {
				return strings.TrimSpace(sentence)
			}
		}
	}

	return RolePlaceholder
}

// extractSkills matches the vocabulary against the content as case-insensitive
// substrings. Results come back capitalized, in vocabulary order.
func extractSkills(content string) []string {
	lower := strings.ToLower(content)

	var found []string
	for _, skill := range skillVocabulary {
		if strings.Contains(lower, skill) {
			found = append(found, capitalize(skill))
		}
	}

	if len(found) == 0 {
		return []string{SkillsPlaceholder}
	}

	return found
}

// gradientForName picks a palette entry by summing the UTF-16 code units of
// the name. Stable for a given name string; supplementary-plane characters
// contribute their surrogate pair.
func gradientForName(name string) gradient {
	sum := 0
	for _, u := range utf16.Encode([]rune(name)) {
		sum += int(u)
	}

	return gradientPalette[sum%len(gradientPalette)]
}

func initials(name string) string {
	letters := make([]rune, 0, 2)
	for _, field := range strings.Fields(name) {
		letters = append(letters, unicode.ToUpper([]rune(field)[0]))
		if len(letters) == 2 {
			break
		}
	}

	return string(letters)
}

func slugify(name string) string {
	return slugSeparator.ReplaceAllString(strings.ToLower(name), "-")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
