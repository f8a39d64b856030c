package models

// DefaultIndustries is served when nothing has been saved yet.
var DefaultIndustries = []string{"HVAC", "Plumbing", "Electrical", "Roofing", "Pest Control", "Other"}

// Settings is the workspace configuration edited on the settings screen.
type Settings struct {
	Industries        []string `json:"industries"`
	SystemInstruction string   `json:"systemInstruction"`
}

func DefaultSettings() Settings {
	return Settings{
		Industries: append([]string(nil), DefaultIndustries...),
	}
}
