package discord

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// parseDiscordTag parses a struct tag value (e.g. "optional,description:desc,default:foo")
// into a map of keys and values.
func parseDiscordTag(tag string) map[string]string {
	parts := strings.Split(tag, ",")
	result := make(map[string]string)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, ":", 2)
		if len(kv) == 2 {
			key := strings.TrimSpace(kv[0])
			value := strings.TrimSpace(kv[1])
			result[key] = value
		} else {
			result[part] = "true"
		}
	}
	return result
}

// setDefaults iterates over the fields of a struct pointed to by req and, if a field is zero
// and was not provided, sets it to the default value specified by the "default" key in the
// "discord" tag.
func setDefaults(req interface{}, provided map[string]interface{}) error {
	v := reflect.ValueOf(req)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("setDefaults: req is not a pointer to struct")
	}
	v = v.Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)
		if !fieldVal.CanSet() {
			continue
		}
		if _, ok := provided[field.Name]; ok || !fieldVal.IsZero() {
			continue
		}
		tag := field.Tag.Get("discord")
		if tag == "" {
			continue
		}
		tags := parseDiscordTag(tag)
		if def, ok := tags["default"]; ok && def != "" {
			converted, err := convertType(def, field.Type)
			if err != nil {
				return err
			}
			fieldVal.Set(converted)
		}
	}

	return nil
}

// convertType converts a string value to a reflect.Value of type t for basic types.
func convertType(val string, t reflect.Type) (reflect.Value, error) {
	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(val).Convert(t), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(i).Convert(t), nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(f).Convert(t), nil
	case reflect.Bool:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(b).Convert(t), nil
	default:
		return reflect.Value{}, fmt.Errorf("unsupported type for default conversion: %s", t.Kind())
	}
}

// structToUsage renders the argument signature of a request struct:
// <required>, [optional] and <rest...>.
func structToUsage(req Request) string {
	t := reflect.TypeOf(req)
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return ""
	}

	var parts []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := strings.ToLower(field.Name)
		tags := parseDiscordTag(field.Tag.Get("discord"))
		if _, ok := tags["rest"]; ok {
			name += "..."
		}
		if _, ok := tags["optional"]; ok {
			parts = append(parts, "["+name+"]")
		} else {
			parts = append(parts, "<"+name+">")
		}
	}
	return strings.Join(parts, " ")
}

type token struct {
	value string
	// start is the byte offset of the token in the input, including an
	// opening quote.
	start int
}

// tokenize splits s on whitespace. A double-quoted run is one token with
// the quotes removed; an unterminated quote is taken literally.
func tokenize(s string) []token {
	var tokens []token
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		if r == '"' {
			if end := strings.IndexByte(s[i+1:], '"'); end >= 0 {
				tokens = append(tokens, token{value: s[i+1 : i+1+end], start: i})
				i += end + 2
				continue
			}
		}
		j := i
		for j < len(s) {
			r, size := utf8.DecodeRuneInString(s[j:])
			if unicode.IsSpace(r) {
				break
			}
			j += size
		}
		tokens = append(tokens, token{value: s[i:j], start: i})
		i = j
	}
	return tokens
}

func tokenValues(tokens []token) []string {
	values := make([]string, len(tokens))
	for i, t := range tokens {
		values[i] = t.value
	}
	return values
}
