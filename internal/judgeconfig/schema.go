package judgeconfig

import (
	"bytes"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// configSchema is compiled once and reused across loads.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["problem_name", "problem_type", "judge_convention", "answer_generation", "limits"],
  "properties": {
    "problem_name": {"type": "string", "minLength": 1},
    "input_ext": {"type": "string"},
    "output_ext": {"type": "string"},
    "problem_type": {"enum": ["batch", "interactive"]},
    "judge_convention": {"enum": ["icpc", "cms", "old-tioj", "new-tioj"]},
    "answer_generation": {"enum": ["solution", "generator"]},
    "stack_mib": {"type": "integer", "minimum": 1},
    "checker_runs_on_forced": {"type": "boolean"},
    "checker_runs_on_generated": {"type": "boolean"},
    "limits": {
      "type": "object",
      "required": ["time_sec", "memory_mib", "output_mib"],
      "properties": {
        "time_sec": {"type": "number", "exclusiveMinimum": 0},
        "memory_mib": {"type": "integer", "minimum": 1},
        "output_mib": {"type": "integer", "minimum": 1}
      }
    },
    "trusted_limits": {
      "type": "object",
      "properties": {
        "time_sec": {"type": "number", "exclusiveMinimum": 0},
        "memory_mib": {"type": "integer", "minimum": 1},
        "output_mib": {"type": "integer", "minimum": 1}
      }
    }
  }
}`

var schema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("judge-config.json", bytes.NewReader([]byte(configSchema))); err != nil {
		panic(fmt.Sprintf("judgeconfig: invalid embedded schema: %v", err))
	}
	return c.MustCompile("judge-config.json")
}

// validateAgainstSchema checks the raw YAML-to-map document against the
// embedded JSON Schema before it is unmarshalled into Config, so an
// unknown enum value or out-of-range limit surfaces with a schema
// pointer instead of a zero-valued field or a decode panic.
func validateAgainstSchema(doc map[string]any) error {
	if err := schema.Validate(doc); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			return fmt.Errorf("%s: %s", ve.InstanceLocation, ve.Message)
		}
		return err
	}
	return nil
}
