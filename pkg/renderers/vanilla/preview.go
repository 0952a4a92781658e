package vanilla

import (
	"net/url"
	"strings"

	"github.com/goliatone/go-resumeform/pkg/resume"
)

// previewView flattens a document into the headings and lines the preview
// template prints. Sections without entries are omitted.
func previewView(doc resume.Document) map[string]any {
	info := doc.PersonalInfo
	contact := nonEmpty(info.Email, info.Phone, info.Address, info.LinkedIn, info.Website)

	experience := make([]map[string]any, 0, len(doc.WorkExperience))
	for _, exp := range doc.WorkExperience {
		period := ""
		if exp.StartDate != "" || exp.EndDate != "" || exp.Current {
			period = exp.Period()
		}
		experience = append(experience, map[string]any{
			"heading":      joinNonEmpty(" - ", exp.Position, exp.Company),
			"period":       period,
			"location":     exp.Location,
			"description":  exp.Description,
			"achievements": nonEmpty(exp.Achievements...),
		})
	}

	education := make([]map[string]any, 0, len(doc.Education))
	for _, edu := range doc.Education {
		entry := map[string]any{
			"heading":     joinNonEmpty(" - ", edu.Degree, edu.Institution),
			"field":       edu.FieldOfStudy,
			"dates":       joinNonEmpty(" - ", edu.StartDate, edu.EndDate),
			"description": edu.Description,
		}
		if gpa := strings.TrimSpace(string(edu.GPA)); gpa != "" {
			entry["gpa"] = "GPA: " + gpa
		}
		education = append(education, entry)
	}

	projects := make([]map[string]any, 0, len(doc.Projects))
	for _, p := range doc.Projects {
		entry := map[string]any{
			"name":        p.Name,
			"description": p.Description,
		}
		if link := safeURL(p.URL); link != "" {
			entry["url"] = link
		} else {
			entry["address"] = strings.TrimSpace(p.URL)
		}
		if techs := nonEmpty(p.Technologies...); len(techs) > 0 {
			entry["technologies"] = "Tech: " + strings.Join(techs, ", ")
		}
		projects = append(projects, entry)
	}

	languages := make([]string, 0, len(doc.Languages))
	for _, lang := range doc.Languages {
		name := strings.TrimSpace(lang.Name)
		if name == "" {
			continue
		}
		if level := strings.TrimSpace(lang.Proficiency); level != "" {
			name += " (" + level + ")"
		}
		languages = append(languages, name)
	}

	return map[string]any{
		"name":       doc.DisplayName(),
		"type":       doc.ResumeType,
		"contact":    contact,
		"summary":    doc.Summary,
		"skills":     nonEmpty(doc.Skills...),
		"experience": experience,
		"education":  education,
		"projects":   projects,
		"languages":  languages,
		"artifact":   safeURL(doc.PDFURL),
	}
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func joinNonEmpty(sep string, values ...string) string {
	return strings.Join(nonEmpty(values...), sep)
}

// safeURL returns link when it is an http(s) or relative URL and "" for
// anything else, so javascript: and data: links never reach an href.
func safeURL(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return ""
		}
		return link
	case "":
		if strings.Contains(link, "\\") {
			return ""
		}
		return link
	}
	return ""
}
