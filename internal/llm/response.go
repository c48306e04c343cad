package llm

// ExtractText picks the usable text from a response. Preference order: the
// first completion with a clean stop, then the first non-empty completion,
// then the provider-level accessor. Returns "" when nothing is extractable.
func ExtractText(resp *Response) string {
	if resp == nil {
		return ""
	}
	var fallback string
	for _, c := range resp.Completions {
		if c.Text == "" {
			continue
		}
		if c.CleanStop {
			return c.Text
		}
		if fallback == "" {
			fallback = c.Text
		}
	}
	if fallback != "" {
		return fallback
	}
	return resp.Text
}
