package categorize

import "strings"

// placeholderSummary fills in for activities the model returned without one.
const placeholderSummary = "Untitled activity"

// RepairActivities applies the validation/repair rules to every activity,
// regardless of how well the upstream model behaved:
//
//   - a missing summary gets a placeholder
//   - a category outside the caller's id set becomes "other" when the caller
//     has an "other" category, else the caller's first category id, else the
//     literal "other"
//   - tags are lowercased
func RepairActivities(activities []Activity, categories []CategoryRef) []Activity {
	valid := make(map[string]bool, len(categories))
	hasOther := false
	for _, c := range categories {
		valid[c.ID] = true
		if c.ID == "other" {
			hasOther = true
		}
	}

	fallback := "other"
	if !hasOther && len(categories) > 0 {
		fallback = categories[0].ID
	}

	repaired := make([]Activity, 0, len(activities))
	for _, a := range activities {
		if a.Summary == "" {
			a.Summary = placeholderSummary
		}
		if !valid[a.Category] {
			a.Category = fallback
		}
		tags := make([]string, 0, len(a.Tags))
		for _, tag := range a.Tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag != "" {
				tags = append(tags, tag)
			}
		}
		a.Tags = tags
		repaired = append(repaired, a)
	}
	return repaired
}
