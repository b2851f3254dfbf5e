// Package env writes structs tagged for caarlos0/env back out as .env files.
package env

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// MarshalEnv renders one KEY=value line per exported, env-tagged field of
// the struct c points to, in field order. Zero values are left out so the
// reader's envDefault applies. Values godotenv would misread are quoted.
func MarshalEnv(c any) (string, error) {
	v := reflect.ValueOf(c)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return "", fmt.Errorf("env: MarshalEnv needs a pointer to a struct, got %T", c)
	}
	v = v.Elem()
	t := v.Type()

	var b strings.Builder
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		// "KEY,required,notEmpty" keeps only KEY
		key, _, _ := strings.Cut(field.Tag.Get("env"), ",")
		if key == "" {
			continue
		}

		val := v.Field(i)
		if val.IsZero() {
			continue
		}

		s, err := formatValue(val)
		if err != nil {
			return "", fmt.Errorf("env: field %s: %w", field.Name, err)
		}
		fmt.Fprintf(&b, "%s=%s\n", key, quote(s))
	}
	return b.String(), nil
}

func formatValue(v reflect.Value) (string, error) {
	if v.Type() == durationType {
		return time.Duration(v.Int()).String(), nil
	}

	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.Slice:
		parts := make([]string, v.Len())
		for i := range parts {
			p, err := formatValue(v.Index(i))
			if err != nil {
				return "", err
			}
			parts[i] = p
		}
		// caarlos0/env splits slices on commas by default
		return strings.Join(parts, ","), nil
	}
	return "", fmt.Errorf("unsupported kind %s", v.Kind())
}

func quote(s string) string {
	if strings.ContainsAny(s, " \t\n\"'#$\\") {
		return strconv.Quote(s)
	}
	return s
}
