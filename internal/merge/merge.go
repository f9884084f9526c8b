// Package merge combines a base-language course with an optional overlay
// translation into the course the learner sees.
//
// The base course is the structural ground truth: its sections, topics,
// ordering and code samples always survive. The overlay only replaces text
// fields it actually provides, one field at a time.
package merge

import "github.com/starford/coursebook/internal/models"

// Resolve returns the effective course for lang. When lang is the base
// language or there is no overlay, base itself is returned; callers must
// treat the result as read-only since it may alias base.
func Resolve(base, overlay *models.Course, lang, baseLang models.Language) *models.Course {
	if base == nil {
		return nil
	}
	if lang == baseLang || overlay == nil {
		return base
	}

	out := *base
	out.Title = preferOverlay(overlay.Title, base.Title, nonEmpty)
	out.Subtitle = preferOverlay(overlay.Subtitle, base.Subtitle, nonEmpty)

	overlaySections := make(map[string]*models.Section, len(overlay.Sections))
	for i := range overlay.Sections {
		s := &overlay.Sections[i]
		if _, dup := overlaySections[s.ID]; !dup {
			overlaySections[s.ID] = s
		}
	}

	out.Sections = make([]models.Section, len(base.Sections))
	for i, bs := range base.Sections {
		ov, ok := overlaySections[bs.ID]
		if !ok {
			out.Sections[i] = bs
			continue
		}
		out.Sections[i] = mergeSection(bs, ov)
	}
	return &out
}

func mergeSection(base models.Section, overlay *models.Section) models.Section {
	out := base
	out.Title = preferOverlay(overlay.Title, base.Title, nonEmpty)
	out.Intro = preferOverlay(overlay.Intro, base.Intro, nonEmpty)

	overlayTopics := make(map[string]*models.Topic, len(overlay.Topics))
	for i := range overlay.Topics {
		t := &overlay.Topics[i]
		if _, dup := overlayTopics[t.ID]; !dup {
			overlayTopics[t.ID] = t
		}
	}

	out.Topics = make([]models.Topic, len(base.Topics))
	for i, bt := range base.Topics {
		ot, ok := overlayTopics[bt.ID]
		if !ok {
			out.Topics[i] = bt
			continue
		}
		out.Topics[i] = mergeTopic(bt, ot)
	}
	return out
}

// mergeTopic applies the overlay per field. Code is deliberately absent
// from the list: samples are never translated.
func mergeTopic(base models.Topic, overlay *models.Topic) models.Topic {
	out := base
	out.Title = preferOverlay(overlay.Title, base.Title, nonEmpty)
	out.Explanations = preferOverlay(overlay.Explanations, base.Explanations, explanationsPresent)
	out.KeyPoints = preferOverlay(overlay.KeyPoints, base.KeyPoints, nonEmptySlice)
	out.Extras = preferOverlay(overlay.Extras, base.Extras, extrasPresent)
	out.CodeExplanations = preferOverlay(overlay.CodeExplanations, base.CodeExplanations, codeExplanationsPresent)
	return out
}

// preferOverlay is the single fallback rule: the overlay value wins only
// when present reports it as set.
func preferOverlay[T any](overlay, base T, present func(T) bool) T {
	if present(overlay) {
		return overlay
	}
	return base
}

// Presence follows truthiness: an empty string, list or struct counts as
// not translated, so a deliberately blank overlay value shows the base text.

func nonEmpty(s string) bool { return s != "" }

func nonEmptySlice(s []string) bool { return len(s) > 0 }

func explanationsPresent(e models.Explanations) bool { return !e.IsZero() }

func extrasPresent(e *models.Extras) bool { return !e.IsZero() }

func codeExplanationsPresent(e *models.Explanations) bool { return e != nil && !e.IsZero() }
