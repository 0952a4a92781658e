package submission

// Fallback names one response key that must be present after normalization.
// Sources are tried in order; the first non-nil value wins, otherwise Empty
// builds the default.
type Fallback struct {
	Key     string
	Sources []string
	Empty   func() any
}

func emptyList() any   { return []any{} }
func emptyObject() any { return map[string]any{} }

// ResponseFallbacks is the fallback table applied to every successful
// response so preview code never dereferences a missing collection.
var ResponseFallbacks = []Fallback{
	{Key: "workExperience", Sources: []string{"workExperience", "experience"}, Empty: emptyList},
	{Key: "education", Sources: []string{"education"}, Empty: emptyList},
	{Key: "skills", Sources: []string{"skills"}, Empty: emptyList},
	{Key: "projects", Sources: []string{"projects"}, Empty: emptyList},
	{Key: "languages", Sources: []string{"languages"}, Empty: emptyList},
	{Key: "personalInfo", Sources: []string{"personalInfo"}, Empty: emptyObject},
}

// Normalize returns a copy of data with every entry of ResponseFallbacks
// filled in. Keys outside the table are kept as they are.
func Normalize(data map[string]any) map[string]any {
	out := make(map[string]any, len(data)+len(ResponseFallbacks))
	for key, value := range data {
		out[key] = value
	}
	for _, fb := range ResponseFallbacks {
		out[fb.Key] = firstPresent(data, fb)
	}
	return out
}

func firstPresent(data map[string]any, fb Fallback) any {
	for _, source := range fb.Sources {
		if value, ok := data[source]; ok && value != nil {
			return value
		}
	}
	return fb.Empty()
}
