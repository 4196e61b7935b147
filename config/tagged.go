package config

import (
	"encoding/json"
	"fmt"
	"github.com/tidwall/gjson"
)

// unmarshalTagged reads the "Type" field of data, constructs the matching configuration struct and
// decodes the "Config" stanza into it.
func unmarshalTagged(data []byte, kind string, constructors map[string]func() any) (string, any, error) {
	result := gjson.GetBytes(data, "Type")
	if !result.Exists() {
		return "", nil, fmt.Errorf("failed to find %s type information", kind)
	}

	t := result.String()

	constructor, found := constructors[t]
	if !found {
		return t, nil, fmt.Errorf("unknown %s configuration type: %s", kind, t)
	}

	cfg := constructor()

	result = gjson.GetBytes(data, "Config")
	if !result.Exists() {
		return t, nil, fmt.Errorf("unable to find Config stanza: %s", t)
	}

	if err := json.Unmarshal([]byte(result.Raw), cfg); err != nil {
		return t, nil, fmt.Errorf("failed to parse %s configuration: %w", kind, err)
	}

	return t, cfg, nil
}
