package viewstate

import (
	"github.com/starford/coursebook/internal/content"
	"github.com/starford/coursebook/internal/merge"
	"github.com/starford/coursebook/internal/models"
	"github.com/starford/coursebook/internal/progress"
	"github.com/starford/coursebook/internal/search"
)

// Status is the lifecycle of a CourseView.
type Status string

const (
	StatusEmpty       Status = "empty"       // no course selected
	StatusLoading     Status = "loading"     // content not cached yet
	StatusUnavailable Status = "unavailable" // base content failed to load
	StatusReady       Status = "ready"
)

// TopicView is a topic annotated for display. The embedded Topic is the
// resolved topic in Language.
type TopicView struct {
	models.Topic
	Language        models.Language `json:"language"`
	Explanation     string          `json:"explanation"`
	CodeExplanation string          `json:"codeExplanation,omitempty"`
	Bookmarked      bool            `json:"bookmarked"`
	Completed       bool            `json:"completed"`
}

// SectionView is a section holding only the topics that matched the query.
type SectionView struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Intro  string      `json:"intro,omitempty"`
	Topics []TopicView `json:"topics"`
}

// CourseView is everything needed to render one course.
type CourseView struct {
	Status   Status                 `json:"status"`
	CourseID string                 `json:"courseId,omitempty"`
	Course   *models.CourseMetadata `json:"course,omitempty"`
	Language models.Language        `json:"language"`
	Query    string                 `json:"query"`
	Stats    []models.Stat          `json:"stats,omitempty"`
	Sections []SectionView          `json:"sections"`
	Matches  int                    `json:"matches"`
	Progress progress.Stats         `json:"progress"`
}

func statusView(s State, st Status) CourseView {
	return CourseView{
		Status:   st,
		CourseID: s.CourseID,
		Language: s.Language,
		Query:    s.Query,
		Sections: []SectionView{},
	}
}

// assemble merges, filters and annotates a loaded bundle for s.
func assemble(b content.Bundle, s State, baseLang models.Language) CourseView {
	resolved := merge.Resolve(b.Base, b.Overlay, s.Language, baseLang)
	sections := search.FilterResolved(resolved, b.Base, s.Query)
	tr := s.Tracker()

	baseTopics := indexTopics(b.Base)
	byLang := map[models.Language]map[string]models.Topic{}
	topicIn := func(lang models.Language, t models.Topic) models.Topic {
		if lang == s.Language {
			return t
		}
		idx, ok := byLang[lang]
		if !ok {
			idx = indexTopics(merge.Resolve(b.Base, b.Overlay, lang, baseLang))
			byLang[lang] = idx
		}
		if other, ok := idx[t.ID]; ok {
			return other
		}
		return t
	}

	meta := resolved.Metadata()
	out := CourseView{
		Status:   StatusReady,
		CourseID: s.CourseID,
		Course:   &meta,
		Language: s.Language,
		Query:    s.Query,
		Stats:    resolved.Stats,
		Sections: make([]SectionView, 0, len(sections)),
		Matches:  search.Count(sections),
		Progress: tr.CourseStats(b.Base),
	}
	for _, sec := range sections {
		sv := SectionView{
			ID:     sec.ID,
			Title:  sec.Title,
			Intro:  sec.Intro,
			Topics: make([]TopicView, 0, len(sec.Topics)),
		}
		for _, t := range sec.Topics {
			lang := s.LanguageFor(t.ID)
			shown := topicIn(lang, t)
			base := baseTopics[t.ID]
			sv.Topics = append(sv.Topics, TopicView{
				Topic:           shown,
				Language:        lang,
				Explanation:     textIn(shown.Explanations, base.Explanations, lang),
				CodeExplanation: codeTextIn(shown.CodeExplanations, base.CodeExplanations, lang),
				Bookmarked:      tr.IsBookmarked(t.ID),
				Completed:       tr.IsCompleted(t.ID),
			})
		}
		out.Sections = append(out.Sections, sv)
	}
	return out
}

// textIn picks the text for lang. A resolved overlay may carry only its own
// channel, so English falls back to the base course.
func textIn(shown, base models.Explanations, lang models.Language) string {
	if text := shown.In(lang); text != "" {
		return text
	}
	return base.English
}

func codeTextIn(shown, base *models.Explanations, lang models.Language) string {
	var s, b models.Explanations
	if shown != nil {
		s = *shown
	}
	if base != nil {
		b = *base
	}
	return textIn(s, b, lang)
}

func indexTopics(c *models.Course) map[string]models.Topic {
	idx := make(map[string]models.Topic)
	if c == nil {
		return idx
	}
	for _, sec := range c.Sections {
		for _, t := range sec.Topics {
			idx[t.ID] = t
		}
	}
	return idx
}
