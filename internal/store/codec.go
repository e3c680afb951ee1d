package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Makepad-fr/tada/internal/model"
)

const schemaURL = "tasks.schema.json"

// Epoch-millisecond bounds of the years time.Time can marshal back to JSON.
var (
	minMillis = time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	maxMillis = time.Date(9999, time.December, 31, 23, 59, 59, 999_000_000, time.UTC).UnixMilli()
)

// tasksSchema describes the persisted list. createdAt may be an RFC 3339
// string or epoch milliseconds.
const tasksSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "text", "completed", "createdAt"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "text": {"type": "string", "pattern": "\\S"},
      "completed": {"type": "boolean"},
      "createdAt": {
        "oneOf": [
          {"type": "string", "format": "date-time"},
          {"type": "number"}
        ]
      }
    }
  }
}`

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, strings.NewReader(tasksSchema)); err != nil {
		panic(fmt.Sprintf("add task schema: %v", err))
	}
	return compiler.MustCompile(schemaURL)
}

// wireTask is the persisted shape. createdAt stays raw so both encodings decode.
type wireTask struct {
	ID        string          `json:"id"`
	Text      string          `json:"text"`
	Completed bool            `json:"completed"`
	CreatedAt json.RawMessage `json:"createdAt"`
}

// Encode serializes tasks as an indented JSON array with a trailing newline.
func Encode(tasks []model.Task) ([]byte, error) {
	out := make([]model.Task, len(tasks))
	for i, t := range tasks {
		t.CreatedAt = t.CreatedAt.UTC()
		out[i] = t
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return append(b, '\n'), nil
}

// Decode parses and validates a persisted list. Any error means the value is corrupt.
func Decode(data []byte) ([]model.Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty value")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	var wire []wireTask
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	tasks := make([]model.Task, 0, len(wire))
	seen := make(map[string]struct{}, len(wire))
	for i, w := range wire {
		if _, dup := seen[w.ID]; dup {
			return nil, fmt.Errorf("[%d]: duplicate id %q", i, w.ID)
		}
		seen[w.ID] = struct{}{}

		created, err := parseTimestamp(w.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("[%d].createdAt: %w", i, err)
		}
		tasks = append(tasks, model.Task{
			ID:        w.ID,
			Text:      strings.TrimSpace(w.Text),
			Completed: w.Completed,
			CreatedAt: created,
		})
	}
	return tasks, nil
}

func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	}
	var ms float64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return time.Time{}, fmt.Errorf("want string or number, got %s", raw)
	}
	if math.IsNaN(ms) || math.IsInf(ms, 0) || ms < float64(minMillis) || ms > float64(maxMillis) {
		return time.Time{}, fmt.Errorf("epoch millis %s outside years 0-9999", raw)
	}
	return time.UnixMilli(int64(ms)).UTC(), nil
}
