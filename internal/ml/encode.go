package ml

import "sort"

// OneHot expands a categorical column into indicator columns, one per level in
// sorted order with the first level dropped as the reference. Missing labels
// ("") produce all-zero rows and never become a level. Column names follow the
// "prefix_level" convention.
func OneHot(labels []string, prefix string) (cols [][]float64, names []string) {
	levelSet := make(map[string]struct{})
	for _, l := range labels {
		if l != "" {
			levelSet[l] = struct{}{}
		}
	}
	levels := make([]string, 0, len(levelSet))
	for l := range levelSet {
		levels = append(levels, l)
	}
	sort.Strings(levels)

	if len(levels) < 2 {
		// Nothing to indicate: a constant or empty column encodes to nothing
		// once the reference level is dropped.
		return nil, nil
	}

	kept := levels[1:]
	cols = make([][]float64, len(kept))
	names = make([]string, len(kept))
	for k, level := range kept {
		col := make([]float64, len(labels))
		for i, l := range labels {
			if l == level {
				col[i] = 1
			}
		}
		cols[k] = col
		names[k] = prefix + "_" + level
	}
	return cols, names
}

// LabelEncode maps every distinct label to a stable integer index in sorted
// order. Missing labels map to -1.
func LabelEncode(labels []string) (encoded []float64, classes []string) {
	levelSet := make(map[string]struct{})
	for _, l := range labels {
		if l != "" {
			levelSet[l] = struct{}{}
		}
	}
	classes = make([]string, 0, len(levelSet))
	for l := range levelSet {
		classes = append(classes, l)
	}
	sort.Strings(classes)

	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}

	encoded = make([]float64, len(labels))
	for i, l := range labels {
		if l == "" {
			encoded[i] = -1
			continue
		}
		encoded[i] = float64(index[l])
	}
	return encoded, classes
}
