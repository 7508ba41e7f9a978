package v16

import (
	"encoding/json"

	"github.com/ruslanhut/ocpp-engine/internal/ocpp"
)

// ToPayload marshals a typed OCPP 1.6 struct (IdTagInfo, MeterValue, ...;
// json-tagged camelCase per types.go) into the snake_case
// map[string]interface{} shape session.Session's handlers traffic in.
func ToPayload(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var camel map[string]interface{}
	if err := json.Unmarshal(raw, &camel); err != nil {
		return nil, err
	}
	return ocpp.AsStringMap(ocpp.TranslateKeysToSnake(camel)), nil
}
