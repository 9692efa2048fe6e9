package shared

import (
	"fmt"
	"sort"
	"strings"
)

// WarningType enumerates the categories of non-fatal problems the resolver
// accumulates while processing a batch, generalized from the teacher's
// download-specific WarningType (cover art, MusicBrainz lookups) to the
// resolver's enrichment/apply concerns.
type WarningType int

const (
	ProviderLookupWarning WarningType = iota
	TagReadWarning
	TagWriteWarning
	CoverArtWarning
	MoveWarning
	CacheCorruptionWarning
	TrackSkippedWarning
)

// Warning is a single recorded problem with enough context to summarize at
// end of run.
type Warning struct {
	Type    WarningType
	Message string
	Context string
	Details string
}

// WarningCollector accumulates Warnings during a scan, exactly mirroring
// the teacher's shared.WarningCollector shape and PrintSummary rendering.
type WarningCollector struct {
	warnings []Warning
	enabled  bool
}

// NewWarningCollector returns a collector; when enabled is false, every
// Add call is a no-op.
func NewWarningCollector(enabled bool) *WarningCollector {
	return &WarningCollector{enabled: enabled}
}

func (wc *WarningCollector) AddWarning(warningType WarningType, context, message, details string) {
	if !wc.enabled {
		return
	}
	wc.warnings = append(wc.warnings, Warning{Type: warningType, Message: message, Context: context, Details: details})
}

func (wc *WarningCollector) AddProviderLookupWarning(provider, context, details string) {
	wc.AddWarning(ProviderLookupWarning, context, fmt.Sprintf("%s lookup failed", provider), details)
}

func (wc *WarningCollector) AddTagReadWarning(path, details string) {
	wc.AddWarning(TagReadWarning, path, "failed to read existing tags", details)
}

func (wc *WarningCollector) AddTagWriteWarning(path, details string) {
	wc.AddWarning(TagWriteWarning, path, "failed to write tags", details)
}

func (wc *WarningCollector) AddMoveWarning(path, details string) {
	wc.AddWarning(MoveWarning, path, "failed to relocate file", details)
}

func (wc *WarningCollector) AddCacheCorruptionWarning(key, details string) {
	wc.AddWarning(CacheCorruptionWarning, key, "cache row unreadable, treated as miss", details)
}

// HasWarnings reports whether anything has been recorded.
func (wc *WarningCollector) HasWarnings() bool { return len(wc.warnings) > 0 }

// GetWarningCount returns the total number of recorded warnings.
func (wc *WarningCollector) GetWarningCount() int { return len(wc.warnings) }

// GetWarningsByType groups the collected warnings by WarningType.
func (wc *WarningCollector) GetWarningsByType() map[WarningType][]Warning {
	grouped := make(map[WarningType][]Warning)
	for _, w := range wc.warnings {
		grouped[w.Type] = append(grouped[w.Type], w)
	}
	return grouped
}

// PrintSummary prints a formatted end-of-run summary, grouped and
// deduplicated by context the same way the teacher's download summary is.
func (wc *WarningCollector) PrintSummary() {
	if !wc.HasWarnings() {
		return
	}

	ColorWarning.Printf("\nWarning summary (%d warnings):\n", len(wc.warnings))
	ColorWarning.Println(strings.Repeat("-", 50))

	grouped := wc.GetWarningsByType()
	var types []WarningType
	for t := range grouped {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, t := range types {
		wc.printSection(t, grouped[t])
	}
}

func (wc *WarningCollector) printSection(warningType WarningType, warnings []Warning) {
	if len(warnings) == 0 {
		return
	}
	ColorWarning.Printf("\n%s (%d):\n", wc.title(warningType), len(warnings))

	counts := make(map[string]int)
	for _, w := range warnings {
		counts[w.Context]++
	}
	var contexts []string
	for c := range counts {
		contexts = append(contexts, c)
	}
	sort.Strings(contexts)
	for _, c := range contexts {
		if n := counts[c]; n > 1 {
			ColorWarning.Printf("  - %s (x%d)\n", c, n)
		} else {
			ColorWarning.Printf("  - %s\n", c)
		}
	}
}

func (wc *WarningCollector) title(warningType WarningType) string {
	switch warningType {
	case ProviderLookupWarning:
		return "Provider lookup failures"
	case TagReadWarning:
		return "Tag read failures"
	case TagWriteWarning:
		return "Tag write failures"
	case CoverArtWarning:
		return "Cover art failures"
	case MoveWarning:
		return "Relocation failures"
	case CacheCorruptionWarning:
		return "Cache corruption"
	case TrackSkippedWarning:
		return "Tracks skipped"
	default:
		return "Other warnings"
	}
}
