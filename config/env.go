package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/sjson"
)

// EnvPrefix is the prefix of all environment variables read by ApplyEnv.
const EnvPrefix = "PORTSTORE_"

// EnvName returns the environment variable name for the option key,
// e.g. "store/data_root" becomes PORTSTORE_STORE_DATA_ROOT.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "/", "_"))
}

// Keys returns the keys of all options.
func (c *Config) Keys() ([]string, error) {
	values, err := c.flat()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	return keys, nil
}

// ApplyEnv overrides options with the values of their environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	values, err := c.flat()
	if err != nil {
		return err
	}

	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	var changed bool
	for key, current := range values {
		raw, ok := lookup(EnvName(key))
		if !ok {
			continue
		}

		value, err := parseEnvValue(current, raw)
		if err != nil {
			return newInvalidValueError(key, raw, fmt.Sprintf("from %s: %s", EnvName(key), err))
		}
		data, err = sjson.SetBytes(data, strings.ReplaceAll(key, "/", "."), value)
		if err != nil {
			return err
		}
		changed = true
	}

	if !changed {
		return nil
	}
	return json.Unmarshal(data, c)
}

// parseEnvValue parses raw into the JSON type of current.
func parseEnvValue(current interface{}, raw string) (interface{}, error) {
	switch current.(type) {
	case bool:
		return strconv.ParseBool(raw)
	case float64:
		return strconv.ParseInt(raw, 10, 64)
	case string:
		return raw, nil
	default:
		return nil, ErrUnsupportedType
	}
}

// flat returns all options as a flat map with "/"-separated keys.
func (c *Config) flat() (map[string]interface{}, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}

	values := make(map[string]interface{})
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	flatten(values, values, "")
	return values, nil
}

func flatten(rootMap, subMap map[string]interface{}, subKey string) {
	for key, entry := range subMap {
		subbedKey := key
		if subKey != "" {
			subbedKey = fmt.Sprintf("%s/%s", subKey, key)
		}

		if nextSub, ok := entry.(map[string]interface{}); ok {
			flatten(rootMap, nextSub, subbedKey)
			delete(rootMap, key)
		} else if subKey != "" {
			rootMap[subbedKey] = entry
		}
	}
}
