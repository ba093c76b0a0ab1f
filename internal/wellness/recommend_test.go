package wellness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecommend(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    []string
	}{
		{
			name:    "nothing matches",
			profile: Profile{ExerciseFrequency: "moderate", StressLevel: "low", SleepSchedule: "regular"},
			want:    []string{},
		},
		{
			name:    "frequent exercise",
			profile: Profile{ExerciseFrequency: "frequent"},
			want:    []string{"Morning exercise routines for mental clarity"},
		},
		{
			name:    "high stress",
			profile: Profile{StressLevel: "high"},
			want:    []string{"Daily meditation sessions"},
		},
		{
			name:    "severe stress is not high",
			profile: Profile{StressLevel: "severe"},
			want:    []string{},
		},
		{
			name:    "reading among other interests",
			profile: Profile{Interests: []string{"music", "reading"}},
			want:    []string{"Therapeutic reading sessions"},
		},
		{
			name:    "irregular sleep",
			profile: Profile{SleepSchedule: "irregular"},
			want:    []string{"Sleep hygiene workshop"},
		},
		{
			name: "all rules in fixed order",
			profile: Profile{
				ExerciseFrequency: "frequent",
				StressLevel:       "high",
				Interests:         []string{"yoga", "reading"},
				SleepSchedule:     "irregular",
			},
			want: []string{
				"Morning exercise routines for mental clarity",
				"Daily meditation sessions",
				"Therapeutic reading sessions",
				"Sleep hygiene workshop",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recommend(tt.profile))
		})
	}
}

func TestRecommendHighStressIgnoresOtherFields(t *testing.T) {
	for _, exercise := range []string{"", "frequent", "moderate", "rare", "never"} {
		for _, sleep := range []string{"", "regular", "irregular", "insufficient"} {
			p := Profile{StressLevel: "high", ExerciseFrequency: exercise, SleepSchedule: sleep, MeditationFrequency: "daily"}
			assert.Contains(t, Recommend(p), "Daily meditation sessions")
		}
	}
}

func TestWelcome(t *testing.T) {
	notice := Welcome(Profile{StressLevel: "high"})

	assert.Equal(t, "Welcome to MindBridge!", notice.Title)
	assert.Equal(t, "Based on your profile, we recommend:", notice.Intro)
	assert.Equal(t, []string{"Daily meditation sessions"}, notice.Recommendations)
	assert.Equal(t, "Get Started", notice.Action)
	assert.Equal(t, "/dashboard", notice.NextPath)
	assert.Equal(t, int64(10000), notice.DisplayMillis)
	assert.True(t, notice.Dismissible)
}

func TestOptions(t *testing.T) {
	opts := Options()

	assert.Len(t, opts.ExerciseFrequency, 4)
	assert.Len(t, opts.SleepSchedule, 4)
	assert.Len(t, opts.StressLevel, 4)
	assert.Len(t, opts.MeditationFrequency, 4)
	assert.Len(t, opts.Interests, 6)
	assert.Equal(t, Option{Value: "frequent", Label: "4+ times a week"}, opts.ExerciseFrequency[0])
	assert.Equal(t, "reading", opts.Interests[0].Value)
}
