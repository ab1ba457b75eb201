package sanitizer

import "strings"

// equipmentSeparators covers the multi-choice encoding of list connectors and plain commas.
var equipmentSeparators = []string{";#", ",", ";"}

func NormalizeStringSlice(items []string, normalizer func(string) string) []string {
	if len(items) == 0 {
		return []string{}
	}

	seen := make(map[string]bool)
	result := make([]string, 0, len(items))

	for _, item := range items {
		normalized := normalizer(item)

		if normalized == "" {
			continue
		}

		key := strings.ToLower(normalized)
		if seen[key] {
			continue
		}

		seen[key] = true
		result = append(result, normalized)
	}

	return result
}

func NormalizeEquipment(items []string) []string {
	return NormalizeStringSlice(items, TrimAndNormalize)
}

// SplitEquipment turns "Projector;#Whiteboard" or "Projector, Whiteboard" into a normalized list.
func SplitEquipment(raw string) []string {
	parts := []string{raw}
	for _, sep := range equipmentSeparators {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, sep)...)
		}
		parts = next
	}
	return NormalizeEquipment(parts)
}
