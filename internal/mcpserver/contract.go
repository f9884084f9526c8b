package mcpserver

// BundleFormatContract describes the course bundle format for LLM clients
// that author or inspect content.
const BundleFormatContract = `# Coursebook Bundle Format

Content lives in one JSON file per course set and language:
` + "`<language>/<set>`" + `, for example ` + "`english/react.json`" + ` and
` + "`hinglish/react.json`" + `.

## Shape

A bundle is either a single course object or an array of them.

` + "```" + `json
{
  "id": "react",
  "title": "React Mastery",
  "subtitle": "Components, hooks and routing",
  "icon": "Code",
  "stats": [{"value": "4", "label": "Topics"}],
  "sections": [
    {
      "id": "basics",
      "title": "Basics",
      "intro": "Start here.",
      "topics": [
        {
          "id": "react-hooks",
          "title": "Intro to hooks",
          "explanations": {"english": "...", "hinglish": "..."},
          "code": {"title": "Counter", "language": "jsx", "content": "..."},
          "codeExplanations": {"english": "...", "hinglish": "..."},
          "keyPoints": ["..."],
          "extras": {"flowDiagram": "...", "comparisonTable": "..."}
        }
      ]
    }
  ]
}
` + "```" + `

## Rules

1. **The English bundle is the structure.** Sections, topics and their order
   come from English. A Hinglish section or topic without an English
   counterpart is never shown.
2. **Ids are global.** Course ids are unique across all sets; topic ids are
   unique across all courses (progress is keyed by topic id alone).
3. **Translations are per field.** A Hinglish title, intro, explanations,
   key points, extras or code explanations replace the English value only
   when non-empty. Leave a field out to keep the English text.
4. **Code is never translated.** The ` + "`code`" + ` block of a Hinglish topic is
   ignored.
5. **English bundles are validated.** Every course needs ` + "`id`" + `, ` + "`title`" + ` and
   ` + "`sections`" + `; every section ` + "`id`" + ` and ` + "`topics`" + `; every topic ` + "`id`" + `,
   ` + "`title`" + ` and ` + "`explanations`" + `. The full schema is published as the
   ` + "`coursebook://bundle-schema`" + ` resource.
`
