package statement

import "strings"

// resolveField resolves a record value from a ranked list of column-name
// synonyms. Three passes, each scanning the whole candidate list before the
// next tier is tried:
//
//  1. exact key match
//  2. case-insensitive exact key match
//  3. case-insensitive substring match (either direction)
//
// Within a pass the first non-empty hit wins, so candidate rank decides ties
// inside a tier while a stronger tier always beats a weaker one. The raw value
// is returned untouched.
func resolveField(header []string, record map[string]string, candidates []string) (string, bool) {
	for _, cand := range candidates {
		if v, ok := record[cand]; ok && strings.TrimSpace(v) != "" {
			return v, true
		}
	}

	for _, cand := range candidates {
		for _, key := range header {
			if strings.EqualFold(key, cand) {
				if v := record[key]; strings.TrimSpace(v) != "" {
					return v, true
				}
			}
		}
	}

	for _, cand := range candidates {
		lcand := strings.ToLower(cand)
		for _, key := range header {
			lkey := strings.ToLower(key)
			if strings.Contains(lkey, lcand) || strings.Contains(lcand, lkey) {
				if v := record[key]; strings.TrimSpace(v) != "" {
					return v, true
				}
			}
		}
	}

	return "", false
}
