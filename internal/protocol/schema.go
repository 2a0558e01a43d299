package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// commandSchema constrains COMMAND messages at the transport edge, before
// anything reaches the simulation inbox.
const commandSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["type", "protocol_version", "tick", "commands"],
  "properties": {
    "type": {"const": "COMMAND"},
    "protocol_version": {"type": "string"},
    "tick": {"type": "integer", "minimum": 0},
    "player_id": {"type": "integer", "minimum": 0},
    "commands": {
      "type": "array",
      "maxItems": 16,
      "items": {
        "type": "object",
        "required": ["id", "type"],
        "properties": {
          "id": {"type": "string", "minLength": 1, "maxLength": 64},
          "type": {"enum": [
            "SPAWN", "BUILD_SILO", "LAUNCH",
            "ALLIANCE_REQUEST", "ALLIANCE_REPLY", "ALLIANCE_EXTEND",
            "ALLIANCE_REVOKE_EXTENSION", "ALLIANCE_BREAK", "EMBARGO"
          ]},
          "tile": {
            "type": "array",
            "items": {"type": "integer"},
            "minItems": 2,
            "maxItems": 2
          },
          "target_player": {"type": "integer", "minimum": 0, "maximum": 65535},
          "weapon": {"enum": ["MISSILE", "MIRV"]},
          "accept": {"type": "boolean"},
          "enable": {"type": "boolean"}
        }
      }
    }
  }
}`

var compiledCommandSchema = jsonschema.MustCompileString("command.schema.json", commandSchema)

// ValidateCommand checks a raw COMMAND message against the schema.
func ValidateCommand(raw []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%s: %w", ErrProtoBadRequest, err)
	}
	if err := compiledCommandSchema.Validate(v); err != nil {
		return fmt.Errorf("%s: %w", ErrProtoBadRequest, err)
	}
	return nil
}
