// Package models defines the domain types for coursebook.
package models

// Language names one content channel. The base language carries the full
// course skeleton; the overlay language is an optional translation layer.
type Language string

// Known languages.
const (
	English  Language = "english"
	Hinglish Language = "hinglish"
)

// Course is one course as stored in a course-set bundle.
type Course struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle,omitempty"`
	Icon     string    `json:"icon,omitempty"`
	Category string    `json:"category,omitempty"`
	Stats    []Stat    `json:"stats,omitempty"`
	Sections []Section `json:"sections"`
}

// Stat is a headline figure shown on the course welcome card.
type Stat struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Section groups topics inside a course.
type Section struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Intro  string  `json:"intro,omitempty"`
	Topics []Topic `json:"topics"`
}

// Topic is a single lesson card. Its ID doubles as the navigation anchor
// and as the key for bookmarks and completion.
type Topic struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	Explanations     Explanations  `json:"explanations"`
	Code             *Code         `json:"code,omitempty"`
	CodeExplanations *Explanations `json:"codeExplanations,omitempty"`
	KeyPoints        []string      `json:"keyPoints,omitempty"`
	Extras           *Extras       `json:"extras,omitempty"`
}

// Explanations holds the same text in both language channels.
type Explanations struct {
	English  string `json:"english,omitempty"`
	Hinglish string `json:"hinglish,omitempty"`
}

// IsZero reports whether neither channel has text.
func (e Explanations) IsZero() bool {
	return e.English == "" && e.Hinglish == ""
}

// In returns the text for lang, falling back to English.
func (e Explanations) In(lang Language) string {
	if lang == Hinglish && e.Hinglish != "" {
		return e.Hinglish
	}
	return e.English
}

// Code is a sample shown under a topic. It is never translated.
type Code struct {
	Title    string `json:"title,omitempty"`
	Language string `json:"language,omitempty"`
	Content  string `json:"content"`
}

// Extras carries optional supplementary diagrams.
type Extras struct {
	FlowDiagram     string `json:"flowDiagram,omitempty"`
	ComparisonTable string `json:"comparisonTable,omitempty"`
}

// IsZero reports whether no extra is set.
func (e *Extras) IsZero() bool {
	return e == nil || (e.FlowDiagram == "" && e.ComparisonTable == "")
}

// CourseMetadata is the lightweight sidebar entry for a course.
type CourseMetadata struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Icon     string `json:"icon,omitempty"`
	Category string `json:"category,omitempty"`
}

// Metadata returns the sidebar entry for c.
func (c *Course) Metadata() CourseMetadata {
	return CourseMetadata{
		ID:       c.ID,
		Title:    c.Title,
		Subtitle: c.Subtitle,
		Icon:     c.Icon,
		Category: c.Category,
	}
}

// TopicCount returns the number of topics across all sections.
func (c *Course) TopicCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, s := range c.Sections {
		n += len(s.Topics)
	}
	return n
}

// HasTopic reports whether any section of c contains a topic with id.
func (c *Course) HasTopic(id string) bool {
	if c == nil {
		return false
	}
	for _, s := range c.Sections {
		for _, t := range s.Topics {
			if t.ID == id {
				return true
			}
		}
	}
	return false
}
