package models

import (
	"fmt"
	"strings"
)

// PriorityName returns the label for a priority level
func PriorityName(priority int) string {
	switch priority {
	case PriorityLow:
		return "Low"
	case PriorityHigh:
		return "High"
	default:
		return "Medium"
	}
}

// ParsePriority converts "low/medium/high" or "1/2/3" to a priority level.
// An empty string yields medium.
func ParsePriority(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return PriorityMedium, nil
	case "low", "l", "1":
		return PriorityLow, nil
	case "medium", "med", "m", "2":
		return PriorityMedium, nil
	case "high", "h", "3":
		return PriorityHigh, nil
	default:
		return 0, fmt.Errorf("invalid priority %q: use low, medium or high", s)
	}
}
