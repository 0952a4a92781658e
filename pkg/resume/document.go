// Package resume describes the document shape exchanged with the generation
// service.
package resume

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Document is a generated or saved resume as the service returns it.
type Document struct {
	ID             string       `json:"_id,omitempty"`
	ResumeType     string       `json:"resumeType,omitempty"`
	PersonalInfo   PersonalInfo `json:"personalInfo"`
	Summary        string       `json:"summary,omitempty"`
	Skills         []string     `json:"skills"`
	Education      []Education  `json:"education"`
	WorkExperience []Experience `json:"workExperience"`
	Projects       []Project    `json:"projects"`
	Languages      []Language   `json:"languages"`
	CreatedAt      *time.Time   `json:"createdAt,omitempty"`
	IsAIGenerated  bool         `json:"generatedByAI,omitempty"`
	PDFURL         string       `json:"pdfUrl,omitempty"`
}

type PersonalInfo struct {
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
}

type Education struct {
	Institution  string `json:"institution,omitempty"`
	Degree       string `json:"degree,omitempty"`
	FieldOfStudy string `json:"fieldOfStudy,omitempty"`
	StartDate    string `json:"startDate,omitempty"`
	EndDate      string `json:"endDate,omitempty"`
	GPA          Text   `json:"gpa,omitempty"`
	Description  string `json:"description,omitempty"`
}

type Experience struct {
	Company      string   `json:"company,omitempty"`
	Position     string   `json:"position,omitempty"`
	Location     string   `json:"location,omitempty"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
	Current      bool     `json:"current,omitempty"`
	Description  string   `json:"description,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

// Period renders "start - end", falling back to "Present" for current roles.
func (e Experience) Period() string {
	end := e.EndDate
	if end == "" && e.Current {
		end = "Present"
	}
	return e.StartDate + " - " + end
}

type Project struct {
	Name         string   `json:"name,omitempty"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	URL          string   `json:"url,omitempty"`
}

type Language struct {
	Name        string `json:"name,omitempty"`
	Proficiency string `json:"proficiency,omitempty"`
}

// DisplayName is the full name, or "Untitled Resume" when missing.
func (d Document) DisplayName() string {
	if name := strings.TrimSpace(d.PersonalInfo.FullName); name != "" {
		return name
	}
	return "Untitled Resume"
}

// HasArtifact reports whether a rendered artifact can be downloaded.
func (d Document) HasArtifact() bool {
	return strings.TrimSpace(d.PDFURL) != ""
}

var folder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ArtifactFilename derives the download name "resume-{fullName}.pdf", using
// "generated" when the name is missing. Accents are folded to ASCII and
// runes that are unsafe in file names are replaced with "-".
func (d Document) ArtifactFilename() string {
	name := strings.TrimSpace(d.PersonalInfo.FullName)
	if name == "" {
		return "resume-generated.pdf"
	}
	folded, _, err := transform.String(folder, name)
	if err != nil {
		folded = name
	}
	safe := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			return '-'
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, folded)
	return "resume-" + safe + ".pdf"
}
