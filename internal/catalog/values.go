package catalog

import "strings"

// ValueDelimiter joins the entries of a multi-value field into one string.
const ValueDelimiter = "; "

// SplitValues breaks a multi-value field string into its entries.
func SplitValues(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ValueDelimiter)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// JoinValues joins entries with the multi-value delimiter, dropping blanks.
func JoinValues(values []string) string {
	kept := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value != "" {
			kept = append(kept, value)
		}
	}
	return strings.Join(kept, ValueDelimiter)
}
