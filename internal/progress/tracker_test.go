package progress

import (
	"reflect"
	"testing"

	"github.com/starford/coursebook/internal/models"
	"github.com/starford/coursebook/internal/testutil"
)

type recorder struct {
	msgs []string
}

func (r *recorder) Notify(_, message string) { r.msgs = append(r.msgs, message) }

func TestToggleBookmark(t *testing.T) {
	tr := New(nil, nil)
	tr, added := tr.ToggleBookmark("a")
	if !added || !tr.IsBookmarked("a") {
		t.Fatal("first toggle should add")
	}
	tr2, added := tr.ToggleBookmark("a")
	if added || tr2.IsBookmarked("a") {
		t.Fatal("second toggle should remove")
	}
	if !tr.IsBookmarked("a") {
		t.Error("toggle must not modify the previous tracker")
	}
	if tr2.IsCompleted("a") {
		t.Error("bookmark and completion sets must be independent")
	}
}

func TestToggleComplete_KeepsOrder(t *testing.T) {
	tr := New(nil, []string{"a", "b", "c"})
	tr, _ = tr.ToggleComplete("b")
	tr, _ = tr.ToggleComplete("d")
	if got := tr.Completed(); !reflect.DeepEqual(got, []string{"a", "c", "d"}) {
		t.Errorf("completed = %v", got)
	}
}

func TestNew_Dedupes(t *testing.T) {
	tr := New([]string{"a", "", "a", "b"}, nil)
	if got := tr.Bookmarks(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("bookmarks = %v", got)
	}
}

func TestAcknowledgements(t *testing.T) {
	r := &recorder{}
	AcknowledgeComplete(r, true)
	AcknowledgeComplete(r, false)
	AcknowledgeBookmark(r, true)
	AcknowledgeBookmark(r, false)
	AcknowledgeComplete(nil, true)

	want := []string{MsgCompleted, MsgBookmarkAdded, MsgBookmarkRemoved}
	if !reflect.DeepEqual(r.msgs, want) {
		t.Errorf("messages = %v, want %v", r.msgs, want)
	}
}

func TestCompletionRatio(t *testing.T) {
	react := testutil.ReactCourse()
	java := testutil.JavaCourse()
	empty := testutil.JSCourse()

	tests := []struct {
		name      string
		course    *models.Course
		completed []string
		want      int
	}{
		{"one of four", &react, []string{"react-state"}, 25},
		{"other course ids ignored", &react, []string{"react-state", "java-classes"}, 25},
		{"all", &java, []string{"java-classes", "java-interfaces"}, 100},
		{"half", &java, []string{"java-classes"}, 50},
		{"no topics", &empty, []string{"react-state"}, 0},
		{"nil course", nil, []string{"x"}, 0},
		{"rounds to nearest", threeTopics(), []string{"t1"}, 33},
		{"rounds up", threeTopics(), []string{"t1", "t2"}, 67},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompletionRatio(tt.course, tt.completed); got != tt.want {
				t.Errorf("CompletionRatio = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCourseStats(t *testing.T) {
	react := testutil.ReactCourse()
	tr := New(nil, []string{"react-hooks", "react-router", "java-classes"})
	got := tr.CourseStats(&react)
	if got != (Stats{Total: 4, Completed: 2, Percent: 50}) {
		t.Errorf("stats = %+v", got)
	}
}

func threeTopics() *models.Course {
	return &models.Course{ID: "three", Sections: []models.Section{{
		ID:     "s",
		Topics: []models.Topic{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}},
	}}}
}
