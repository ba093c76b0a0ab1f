// Package resources is the fixed directory of wellness resources and
// emergency contacts.
package resources

type Resource struct {
	Title       string `json:"title"`
	Type        string `json:"type"` // article, video, guide or download
	Description string `json:"description"`
	Link        string `json:"link"`
	Category    string `json:"category"`
	ReadTime    string `json:"read_time,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Format      string `json:"format,omitempty"`
}

// Detail is the single caption shown under a resource.
func (r Resource) Detail() string {
	switch {
	case r.ReadTime != "":
		return r.ReadTime
	case r.Duration != "":
		return r.Duration
	default:
		return r.Format
	}
}

type EmergencyContact struct {
	Name      string `json:"name"`
	Number    string `json:"number"`
	Available string `json:"available"`
}

type Directory struct {
	Title             string             `json:"title"`
	Intro             string             `json:"intro"`
	Resources         []Resource         `json:"resources"`
	EmergencyTitle    string             `json:"emergency_title"`
	EmergencyIntro    string             `json:"emergency_intro"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts"`
	Disclaimer        string             `json:"disclaimer"`
}

var catalog = []Resource{
	{
		Title:       "Understanding Anxiety",
		Type:        "article",
		Description: "Learn about different types of anxiety and effective coping mechanisms",
		Link:        "#",
		Category:    "Mental Health",
		ReadTime:    "5 min read",
	},
	{
		Title:       "Guided Meditation Series",
		Type:        "video",
		Description: "A collection of guided meditations for stress relief and mindfulness",
		Link:        "#",
		Category:    "Wellness",
		Duration:    "10-15 min each",
	},
	{
		Title:       "Effective Study Techniques",
		Type:        "guide",
		Description: "Research-backed methods to improve your study habits and reduce academic stress",
		Link:        "#",
		Category:    "Academic",
		ReadTime:    "8 min read",
	},
	{
		Title:       "Sleep Hygiene Guide",
		Type:        "download",
		Description: "Comprehensive guide to improving your sleep quality",
		Link:        "#",
		Category:    "Health",
		Format:      "PDF Guide",
	},
}

var emergencyContacts = []EmergencyContact{
	{Name: "National Crisis Hotline", Number: "1-800-273-8255", Available: "24/7"},
	{Name: "Crisis Text Line", Number: "Text HOME to 741741", Available: "24/7"},
	{Name: "Emergency Services", Number: "911", Available: "24/7"},
}

const disclaimer = "The resources provided are for informational purposes only and " +
	"should not be considered a substitute for professional medical advice, diagnosis, or treatment."

// Catalog returns a fresh copy of the directory on every call.
func Catalog() Directory {
	return Directory{
		Title:             "Mental Health Resources",
		Intro:             "Access our curated collection of mental health and wellness resources",
		Resources:         append([]Resource(nil), catalog...),
		EmergencyTitle:    "Need Immediate Support?",
		EmergencyIntro:    "If you're experiencing a mental health emergency, please reach out to these resources:",
		EmergencyContacts: append([]EmergencyContact(nil), emergencyContacts...),
		Disclaimer:        disclaimer,
	}
}
