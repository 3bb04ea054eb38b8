// Package timeunit holds the pure deadline arithmetic shared by the widget
// render path, the background notifier and the countdown engine.
package timeunit

import (
	"strconv"
	"strings"
)

// Unit pairs a stable, language-independent key with its length in seconds.
type Unit struct {
	Key     string
	Seconds int64
}

// Count is one decomposed unit value.
type Count struct {
	Unit  string `json:"unit"`
	Value int64  `json:"value"`
}

// Urgency classifies how close a deadline is.
type Urgency string

const (
	UrgencyNone    Urgency = "none"
	UrgencyWarning Urgency = "warning"
	UrgencyDanger  Urgency = "danger"
	UrgencyExpired Urgency = "expired"
)

// Table returns the full unit table in descending order. Index positions are
// part of the configuration contract (0=years .. 6=seconds).
func Table() []Unit {
	return []Unit{
		{Key: "years", Seconds: 31536000},
		{Key: "months", Seconds: 2592000},
		{Key: "weeks", Seconds: 604800},
		{Key: "days", Seconds: 86400},
		{Key: "hours", Seconds: 3600},
		{Key: "minutes", Seconds: 60},
		{Key: "seconds", Seconds: 1},
	}
}

// Keys returns the stable keys of the provided units.
func Keys(units []Unit) []string {
	keys := make([]string, len(units))
	for i, u := range units {
		keys[i] = u.Key
	}
	return keys
}

// Decompose greedily breaks seconds into counts for the active units. The walk
// always follows the full table so that an inactive unit's seconds flow into
// the next smaller active unit at its true length, never a rescaled one.
func Decompose(seconds int64, activeKeys []string) []Count {
	if seconds < 0 {
		seconds = 0
	}
	active := make(map[string]struct{}, len(activeKeys))
	for _, k := range activeKeys {
		active[k] = struct{}{}
	}

	remaining := seconds
	out := make([]Count, 0, len(activeKeys))
	for _, unit := range Table() {
		if _, ok := active[unit.Key]; !ok {
			continue
		}
		value := remaining / unit.Seconds
		remaining -= value * unit.Seconds
		out = append(out, Count{Unit: unit.Key, Value: value})
	}
	return out
}

// SelectDisplayUnits parses a comma-separated list of indices into the full
// table. Tokens that are blank, non-numeric or out of range are skipped; an
// empty result falls back to the full table.
func SelectDisplayUnits(indexCSV string) []Unit {
	table := Table()
	if strings.TrimSpace(indexCSV) == "" {
		return table
	}

	seen := make(map[int]struct{})
	var out []Unit
	for _, token := range strings.Split(indexCSV, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		idx, err := strconv.Atoi(token)
		if err != nil || idx < 0 || idx >= len(table) {
			continue
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, table[idx])
	}

	if len(out) == 0 {
		return table
	}
	return out
}

// Progress returns the elapsed share of [start, end] at now, clamped to
// [0, 100]. Zero when the window is unset or inverted.
func Progress(start, end, now int64) float64 {
	if start <= 0 || end <= start {
		return 0
	}
	pct := float64(now-start) / float64(end-start) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// ClassifyUrgency buckets the remaining days against the configured thresholds.
func ClassifyUrgency(daysRemaining, dangerDays, warningDays int) Urgency {
	switch {
	case daysRemaining <= 0:
		return UrgencyExpired
	case daysRemaining <= dangerDays:
		return UrgencyDanger
	case daysRemaining <= warningDays:
		return UrgencyWarning
	default:
		return UrgencyNone
	}
}
