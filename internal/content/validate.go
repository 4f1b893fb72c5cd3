package content

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// questionSetSchema is the structural contract for generated question sets:
// at least one question, exactly four options each, all fields non-empty.
const questionSetSchema = `{
	"type": "array",
	"minItems": 1,
	"items": {
		"type": "object",
		"required": ["question", "options", "correctAnswer", "explanation"],
		"properties": {
			"question": {"type": "string", "minLength": 1},
			"options": {
				"type": "array",
				"minItems": 4,
				"maxItems": 4,
				"items": {"type": "string", "minLength": 1}
			},
			"correctAnswer": {"type": "string", "minLength": 1},
			"explanation": {"type": "string", "minLength": 1}
		}
	}
}`

var schemaLoader = gojsonschema.NewStringLoader(questionSetSchema)

// ValidateQuestions checks a generated question set against the schema plus
// the semantic rules the schema cannot express: options must be distinct and
// the correct answer must match one option exactly.
func ValidateQuestions(questions []Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question set is empty")
	}

	doc, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("encode question set: %w", err)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validate question set: %w", err)
	}
	if !result.Valid() {
		return fmt.Errorf("question set schema violation: %s", result.Errors()[0])
	}

	for i, q := range questions {
		seen := make(map[string]bool, len(q.Options))
		match := false
		for _, opt := range q.Options {
			if seen[opt] {
				return fmt.Errorf("question %d: duplicate option %q", i, opt)
			}
			seen[opt] = true
			if opt == q.CorrectAnswer {
				match = true
			}
		}
		if !match {
			return fmt.Errorf("question %d: correct answer %q is not one of the options", i, q.CorrectAnswer)
		}
	}
	return nil
}
