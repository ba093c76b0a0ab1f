package wellness

import "time"

const (
	welcomeTitle    = "Welcome to MindBridge!"
	welcomeIntro    = "Based on your profile, we recommend:"
	welcomeAction   = "Get Started"
	welcomeNextPath = "/dashboard"
	welcomeDuration = 10 * time.Second
)

type rule struct {
	applies        func(Profile) bool
	recommendation string
}

// Each rule looks at one field only; rules never combine.
var rules = []rule{
	{
		applies:        func(p Profile) bool { return p.ExerciseFrequency == "frequent" },
		recommendation: "Morning exercise routines for mental clarity",
	},
	{
		applies:        func(p Profile) bool { return p.StressLevel == "high" },
		recommendation: "Daily meditation sessions",
	},
	{
		applies:        func(p Profile) bool { return p.HasInterest("reading") },
		recommendation: "Therapeutic reading sessions",
	},
	{
		applies:        func(p Profile) bool { return p.SleepSchedule == "irregular" },
		recommendation: "Sleep hygiene workshop",
	},
}

// Recommend returns the bullets that apply to p, in a fixed order. The result
// is never nil so it encodes as an empty JSON list.
func Recommend(p Profile) []string {
	out := []string{}
	for _, r := range rules {
		if r.applies(p) {
			out = append(out, r.recommendation)
		}
	}
	return out
}

// Notice is the one-time, dismissible welcome shown after registration.
type Notice struct {
	Title           string   `json:"title"`
	Intro           string   `json:"intro"`
	Recommendations []string `json:"recommendations"`
	Action          string   `json:"action"`
	NextPath        string   `json:"next_path"`
	DisplayMillis   int64    `json:"display_ms"`
	Dismissible     bool     `json:"dismissible"`
}

func Welcome(p Profile) Notice {
	return Notice{
		Title:           welcomeTitle,
		Intro:           welcomeIntro,
		Recommendations: Recommend(p),
		Action:          welcomeAction,
		NextPath:        welcomeNextPath,
		DisplayMillis:   welcomeDuration.Milliseconds(),
		Dismissible:     true,
	}
}
