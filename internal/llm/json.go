package llm

import "strings"

// ExtractJSONObject returns the span from the first '{' to the last '}' in
// the response. Models often wrap their JSON in commentary or markdown
// fences; everything outside the outermost braces is ignored.
func ExtractJSONObject(response string) (string, bool) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end < start {
		return "", false
	}
	return response[start : end+1], true
}

// ExtractJSONArray is the list counterpart of ExtractJSONObject.
func ExtractJSONArray(response string) (string, bool) {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start < 0 || end < start {
		return "", false
	}
	return response[start : end+1], true
}
