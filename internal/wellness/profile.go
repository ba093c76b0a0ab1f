// Package wellness holds the preference payload collected at registration
// and the rules that turn it into welcome recommendations.
package wellness

import "slices"

// Profile is the preference payload. It is persisted verbatim as JSON, so the
// field names match what clients submit. Credentials never belong here.
type Profile struct {
	Email               string   `json:"email"`
	ExerciseFrequency   string   `json:"exerciseFrequency"`
	SleepSchedule       string   `json:"sleepSchedule"`
	StressLevel         string   `json:"stressLevel"`
	Interests           []string `json:"interests"`
	SocialPreference    string   `json:"socialPreference"`
	MeditationFrequency string   `json:"meditationFrequency"`
}

func (p Profile) HasInterest(tag string) bool {
	return slices.Contains(p.Interests, tag)
}

// Option is one selectable value of a registration form field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type FormOptions struct {
	ExerciseFrequency   []Option `json:"exerciseFrequency"`
	SleepSchedule       []Option `json:"sleepSchedule"`
	StressLevel         []Option `json:"stressLevel"`
	MeditationFrequency []Option `json:"meditationFrequency"`
	Interests           []Option `json:"interests"`
}

// Options returns the values the registration form offers. Submissions are
// not checked against them.
func Options() FormOptions {
	return FormOptions{
		ExerciseFrequency: []Option{
			{Value: "frequent", Label: "4+ times a week"},
			{Value: "moderate", Label: "2-3 times a week"},
			{Value: "rare", Label: "Once a week or less"},
			{Value: "never", Label: "Never"},
		},
		SleepSchedule: []Option{
			{Value: "regular", Label: "Regular (7-9 hours)"},
			{Value: "irregular", Label: "Irregular"},
			{Value: "insufficient", Label: "Less than 6 hours"},
			{Value: "excessive", Label: "More than 9 hours"},
		},
		StressLevel: []Option{
			{Value: "low", Label: "Low"},
			{Value: "moderate", Label: "Moderate"},
			{Value: "high", Label: "High"},
			{Value: "severe", Label: "Severe"},
		},
		MeditationFrequency: []Option{
			{Value: "daily", Label: "Daily"},
			{Value: "weekly", Label: "Weekly"},
			{Value: "rarely", Label: "Rarely"},
			{Value: "never", Label: "Never"},
		},
		Interests: []Option{
			{Value: "reading", Label: "Reading"},
			{Value: "music", Label: "Music"},
			{Value: "art", Label: "Art"},
			{Value: "sports", Label: "Sports"},
			{Value: "meditation", Label: "Meditation"},
			{Value: "yoga", Label: "Yoga"},
		},
	}
}
