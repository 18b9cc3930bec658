package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

var errNotObject = errors.New("response is not a JSON object")

type requiredField struct {
	path string
	typ  gjson.Type
}

var responseFields = []requiredField{
	{"id", gjson.String},
	{"object", gjson.String},
	{"created", gjson.Number},
	{"model", gjson.String},
	{"usage.prompt_tokens", gjson.Number},
	{"usage.completion_tokens", gjson.Number},
	{"usage.total_tokens", gjson.Number},
}

var choiceFields = []requiredField{
	{"message.role", gjson.String},
	{"message.content", gjson.String},
	{"finish_reason", gjson.String},
	{"index", gjson.Number},
}

// Known keys per object. encoding/json matches keys case-insensitively and
// keeps the last match while gjson takes the first exact one, so each known
// key may appear only once in any casing.
var (
	responseKeys = []string{"id", "object", "created", "model", "usage", "choices"}
	usageKeys    = []string{"prompt_tokens", "completion_tokens", "total_tokens"}
	choiceKeys   = []string{"message", "finish_reason", "index"}
	messageKeys  = []string{"role", "content"}
)

// counts that must be non-negative
var countFields = []string{
	"usage.prompt_tokens",
	"usage.completion_tokens",
	"usage.total_tokens",
}

// decodeResponse parses body into a CompletionResponse. Every field of the
// response must be present with its JSON type; null counts as missing.
// Unknown fields are ignored.
func decodeResponse(body []byte) (*CompletionResponse, error) {
	var resp CompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, errNotObject
	}
	if err := checkKeys(root, "", responseKeys); err != nil {
		return nil, err
	}
	if err := checkKeys(root.Get("usage"), "usage.", usageKeys); err != nil {
		return nil, err
	}
	if err := checkFields(root, "", responseFields); err != nil {
		return nil, err
	}
	for _, path := range countFields {
		if root.Get(path).Int() < 0 {
			return nil, fmt.Errorf("field %s: negative token count", path)
		}
	}

	choices := root.Get("choices")
	if !choices.Exists() || choices.Type == gjson.Null {
		return nil, errors.New("missing field choices")
	}
	if !choices.IsArray() {
		return nil, fmt.Errorf("field choices: expected array, got %s", choices.Type)
	}

	var err error
	i := 0
	choices.ForEach(func(_, choice gjson.Result) bool {
		prefix := fmt.Sprintf("choices.%d.", i)
		i++
		if !choice.IsObject() {
			err = fmt.Errorf("field %s: expected object, got %s", prefix[:len(prefix)-1], choice.Type)
			return false
		}
		if err = checkKeys(choice, prefix, choiceKeys); err != nil {
			return false
		}
		if err = checkKeys(choice.Get("message"), prefix+"message.", messageKeys); err != nil {
			return false
		}
		if err = checkFields(choice, prefix, choiceFields); err != nil {
			return false
		}
		if choice.Get("index").Int() < 0 {
			err = fmt.Errorf("field %sindex: negative index", prefix)
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func checkFields(obj gjson.Result, prefix string, fields []requiredField) error {
	for _, f := range fields {
		v := obj.Get(f.path)
		if !v.Exists() || v.Type == gjson.Null {
			return fmt.Errorf("missing field %s%s", prefix, f.path)
		}
		if v.Type != f.typ {
			return fmt.Errorf("field %s%s: expected %s, got %s", prefix, f.path, f.typ, v.Type)
		}
	}
	return nil
}

// checkKeys rejects obj when two of its keys fold to the same known name.
// Non-objects are left to checkFields.
func checkKeys(obj gjson.Result, prefix string, names []string) error {
	if !obj.IsObject() {
		return nil
	}
	seen := make(map[string]string, len(names))
	var err error
	obj.ForEach(func(key, _ gjson.Result) bool {
		k := key.String()
		for _, name := range names {
			if !strings.EqualFold(k, name) {
				continue
			}
			if prev, ok := seen[name]; ok {
				err = fmt.Errorf("field %s%s: duplicate keys %q and %q", prefix, name, prev, k)
				return false
			}
			seen[name] = k
		}
		return true
	})
	return err
}

// providerMessage extracts error.message from an API error object.
func providerMessage(body []byte) string {
	return gjson.GetBytes(body, "error.message").String()
}
