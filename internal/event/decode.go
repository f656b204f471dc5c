package event

import (
	"encoding/json"
	"fmt"
)

// DecodePayload returns the payload as T. Events published in-process carry the
// typed struct (or a pointer to it); events read back from the dead-letter file or
// the event log carry generic JSON, which is converted through a round-trip.
func DecodePayload[T any](input interface{}) (T, error) {
	var result T
	switch v := input.(type) {
	case T:
		return v, nil
	case *T:
		if v == nil {
			return result, fmt.Errorf("nil %T payload", v)
		}
		return *v, nil
	case json.RawMessage:
		return result, json.Unmarshal(v, &result)
	case []byte:
		return result, json.Unmarshal(v, &result)
	}

	data, err := json.Marshal(input)
	if err != nil {
		return result, err
	}
	return result, json.Unmarshal(data, &result)
}
