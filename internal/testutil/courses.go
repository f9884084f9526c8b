package testutil

import "github.com/starford/coursebook/internal/models"

// ReactCourse returns a base-language course with two sections and four
// topics: hooks, state, effects (basics) and router (routing).
func ReactCourse() models.Course {
	return models.Course{
		ID:       "react",
		Title:    "React Mastery",
		Subtitle: "Components, hooks and routing",
		Icon:     "Code",
		Category: "frontend",
		Stats:    []models.Stat{{Value: "4", Label: "Topics"}},
		Sections: []models.Section{
			{
				ID:    "basics",
				Title: "Basics",
				Intro: "Start here.",
				Topics: []models.Topic{
					{
						ID:           "react-hooks",
						Title:        "Intro to react hooks",
						Explanations: models.Explanations{English: "Hooks let function components hold state."},
						Code: &models.Code{
							Title:    "Counter",
							Language: "jsx",
							Content:  "const [n, setN] = useState(0);",
						},
						CodeExplanations: &models.Explanations{English: "useState returns a pair."},
						KeyPoints:        []string{"Call hooks at the top level"},
					},
					{
						ID:           "react-state",
						Title:        "State",
						Explanations: models.Explanations{English: "State drives rendering."},
					},
					{
						ID:           "react-effects",
						Title:        "Effects",
						Explanations: models.Explanations{English: "useEffect synchronizes with external systems."},
						Extras:       &models.Extras{FlowDiagram: "render -> commit -> effect"},
					},
				},
			},
			{
				ID:    "routing",
				Title: "Routing",
				Intro: "Navigate between views.",
				Topics: []models.Topic{
					{
						ID:           "react-router",
						Title:        "React Router",
						Explanations: models.Explanations{English: "Declarative routes map URLs to components."},
						Code:         &models.Code{Language: "jsx", Content: "<Route path=\"/\" />"},
					},
				},
			},
		},
	}
}

// ReactOverlay returns a partial Hinglish translation of ReactCourse. It
// translates the hooks topic (including a different code sample that must
// be ignored), gives state only key points, leaves routing untranslated,
// and introduces a section and a topic the base does not have.
func ReactOverlay() models.Course {
	return models.Course{
		ID:    "react",
		Title: "React Mastery (Hinglish)",
		Sections: []models.Section{
			{
				ID:    "basics",
				Title: "Shuruaat",
				Topics: []models.Topic{
					{
						ID:               "react-hooks",
						Title:            "React hooks ka intro",
						Explanations:     models.Explanations{Hinglish: "Hooks se function components state rakh sakte hain."},
						Code:             &models.Code{Language: "jsx", Content: "// translated code must never win"},
						CodeExplanations: &models.Explanations{Hinglish: "useState ek pair deta hai."},
					},
					{
						ID:        "react-state",
						KeyPoints: []string{"State badalne se re-render hota hai"},
					},
					{
						ID:           "overlay-only-topic",
						Title:        "Sirf overlay mein",
						Explanations: models.Explanations{Hinglish: "Yeh base mein nahi hai."},
					},
				},
			},
			{
				ID:    "overlay-only-section",
				Title: "Extra",
				Topics: []models.Topic{
					{ID: "extra-topic", Title: "Extra"},
				},
			},
		},
	}
}

// JavaCourse returns a small second course used for catalog and cache tests.
func JavaCourse() models.Course {
	return models.Course{
		ID:    "core-java",
		Title: "Core Java",
		Icon:  "Coffee",
		Sections: []models.Section{
			{
				ID:    "oop",
				Title: "OOP",
				Topics: []models.Topic{
					{ID: "java-classes", Title: "Classes", Explanations: models.Explanations{English: "Blueprints for objects."}},
					{ID: "java-interfaces", Title: "Interfaces", Explanations: models.Explanations{English: "Contracts without state."}},
				},
			},
		},
	}
}

// JSCourse returns a course with no sections.
func JSCourse() models.Course {
	return models.Course{ID: "javascript", Title: "JavaScript", Icon: "Globe", Sections: []models.Section{}}
}

// JSOverlay returns a Hinglish translation of JSCourse.
func JSOverlay() models.Course {
	return models.Course{ID: "javascript", Title: "JavaScript (Hinglish)", Subtitle: "Web ki bhasha"}
}
