// Package progress tracks bookmarked and completed topics and derives
// completion statistics for a course.
package progress

import (
	"math"
	"slices"

	"github.com/starford/coursebook/internal/models"
)

// Acknowledgement messages shown to the learner.
const (
	MsgCompleted        = "Topic marked as complete! 🎉"
	MsgBookmarkAdded    = "Added to bookmarks"
	MsgBookmarkRemoved  = "Removed from bookmarks"
	KindAcknowledgement = "success"
)

// Notifier receives one-shot, user-visible acknowledgements.
type Notifier interface {
	Notify(kind, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(kind, message string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(kind, message string) { f(kind, message) }

// Tracker is an immutable pair of topic-id sets. Topic ids are globally
// unique, so the sets span all courses. Toggles return a new Tracker and
// never modify the receiver's slices; insertion order is kept for
// persistence.
type Tracker struct {
	bookmarks []string
	completed []string
}

// New builds a Tracker from persisted ids, dropping duplicates and empties.
func New(bookmarks, completed []string) Tracker {
	return Tracker{bookmarks: dedupe(bookmarks), completed: dedupe(completed)}
}

// Bookmarks returns a copy of the bookmarked ids.
func (t Tracker) Bookmarks() []string { return slices.Clone(t.bookmarks) }

// Completed returns a copy of the completed ids.
func (t Tracker) Completed() []string { return slices.Clone(t.completed) }

// IsBookmarked reports whether id is bookmarked.
func (t Tracker) IsBookmarked(id string) bool { return slices.Contains(t.bookmarks, id) }

// IsCompleted reports whether id is completed.
func (t Tracker) IsCompleted(id string) bool { return slices.Contains(t.completed, id) }

// ToggleBookmark adds or removes id. added reports the new membership.
func (t Tracker) ToggleBookmark(id string) (next Tracker, added bool) {
	next = t
	next.bookmarks, added = toggle(t.bookmarks, id)
	return next, added
}

// ToggleComplete adds or removes id. completed reports the new membership.
func (t Tracker) ToggleComplete(id string) (next Tracker, completed bool) {
	next = t
	next.completed, completed = toggle(t.completed, id)
	return next, completed
}

// AcknowledgeBookmark tells the learner about a bookmark change.
func AcknowledgeBookmark(n Notifier, added bool) {
	if n == nil {
		return
	}
	if added {
		n.Notify(KindAcknowledgement, MsgBookmarkAdded)
		return
	}
	n.Notify(KindAcknowledgement, MsgBookmarkRemoved)
}

// AcknowledgeComplete tells the learner a topic became complete. Un-marking
// a topic is silent.
func AcknowledgeComplete(n Notifier, completed bool) {
	if n == nil || !completed {
		return
	}
	n.Notify(KindAcknowledgement, MsgCompleted)
}

// Stats summarizes progress through one course.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Percent   int `json:"percent"`
}

// CourseStats scans every topic of course, not just a filtered view.
func (t Tracker) CourseStats(course *models.Course) Stats {
	total := course.TopicCount()
	done := 0
	for _, id := range t.completed {
		if course.HasTopic(id) {
			done++
		}
	}
	return Stats{Total: total, Completed: done, Percent: ratio(done, total)}
}

// CompletionRatio returns the integer percent of course's topics present in
// completed, rounded to the nearest integer. A course without topics is 0%.
func CompletionRatio(course *models.Course, completed []string) int {
	return New(nil, completed).CourseStats(course).Percent
}

func ratio(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

func toggle(set []string, id string) ([]string, bool) {
	if i := slices.Index(set, id); i >= 0 {
		return slices.Delete(slices.Clone(set), i, i+1), false
	}
	out := make([]string, len(set), len(set)+1)
	copy(out, set)
	return append(out, id), true
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
