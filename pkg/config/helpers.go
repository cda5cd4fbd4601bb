package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// SetValue sets a configuration value by key. Keys are the YAML paths shown by
// ToMap, for example "settings.retries" or "http.timeout".
func (c *Config) SetValue(key, value string) error {
	field, err := c.field(key)
	if err != nil {
		return err
	}

	switch field.Interface().(type) {
	case time.Duration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %s", key, value)
		}
		field.SetInt(int64(d))
	case int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %s", key, value)
		}
		field.SetInt(int64(n))
	case bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %s", key, value)
		}
		field.SetBool(b)
	case string:
		field.SetString(value)
	default:
		return fmt.Errorf("unsupported configuration key: %s", key)
	}
	return nil
}

// GetValue returns a configuration value by key as a string.
func (c *Config) GetValue(key string) (string, error) {
	field, err := c.field(key)
	if err != nil {
		return "", err
	}
	return formatValue(field), nil
}

// ToMap flattens the configuration into "section.key" → value.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)
	walkFields(reflect.ValueOf(c).Elem(), func(key string, v reflect.Value) {
		result[key] = formatValue(v)
	})
	return result
}

func (c *Config) field(key string) (reflect.Value, error) {
	var found reflect.Value
	walkFields(reflect.ValueOf(c).Elem(), func(k string, v reflect.Value) {
		if k == key {
			found = v
		}
	})
	if !found.IsValid() {
		return reflect.Value{}, fmt.Errorf("unknown configuration key: %s", key)
	}
	return found, nil
}

// walkFields visits every yaml-tagged leaf of the two-level config struct.
func walkFields(root reflect.Value, visit func(key string, v reflect.Value)) {
	rootType := root.Type()
	for i := 0; i < root.NumField(); i++ {
		section := yamlKey(rootType.Field(i))
		if section == "" {
			continue
		}
		sectionValue := root.Field(i)
		sectionType := sectionValue.Type()
		for j := 0; j < sectionValue.NumField(); j++ {
			name := yamlKey(sectionType.Field(j))
			if name == "" {
				continue
			}
			visit(section+"."+name, sectionValue.Field(j))
		}
	}
}

func yamlKey(field reflect.StructField) string {
	tag := field.Tag.Get("yaml")
	if tag == "" || tag == "-" {
		return ""
	}
	return strings.Split(tag, ",")[0]
}

func formatValue(v reflect.Value) string {
	switch val := v.Interface().(type) {
	case time.Duration:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
