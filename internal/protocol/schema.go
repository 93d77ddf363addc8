package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// envelopeSchema is the outer frame contract. It intentionally constrains
// only the envelope: payload interpretation is the decoder's job, so a new
// backend field inside data never turns into a dropped frame.
const envelopeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": {"type": "string", "minLength": 1},
    "data": {"type": "object"},
    "message": {"type": "string"}
  }
}`

var compiledEnvelope = jsonschema.MustCompileString("envelope.schema.json", envelopeSchema)

// validateEnvelope checks a raw frame against the envelope schema.
func validateEnvelope(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("invalid JSON: %v", err)
	}
	return compiledEnvelope.Validate(v)
}
