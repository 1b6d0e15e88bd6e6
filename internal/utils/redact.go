package utils

import (
	"encoding/json"
	"net/http"
	"strings"
)

const redacted = "[REDACTED]"

var sensitiveKeys = []string{"password", "authorization", "token", "secret", "signature", "api_key", "apikey", "cookie"}

func isSensitive(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// RedactHeaders copies h with sensitive values masked.
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if isSensitive(k) {
			out[k] = redacted
			continue
		}
		out[k] = strings.Join(v, ",")
	}
	return out
}

// RedactBody masks sensitive fields of a JSON body at any depth. Bodies that
// are not JSON are not logged.
func RedactBody(body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return "[non-JSON body omitted]"
	}
	return redactValue(v)
}

func redactValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			if isSensitive(k) {
				t[k] = redacted
			} else {
				t[k] = redactValue(val)
			}
		}
		return t
	case []interface{}:
		for i := range t {
			t[i] = redactValue(t[i])
		}
		return t
	default:
		return v
	}
}
