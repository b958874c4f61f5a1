package ingest

import "strings"

type column struct {
	name     string
	aliases  []string
	position int // index in the standard analytics export
}

var (
	colSource      = column{"traffic source", []string{"traffic source", "traffic source type"}, 0}
	colImpressions = column{"impressions", []string{"impressions"}, 3}
	colCTR         = column{"impressions click-through rate (%)", []string{"impressions click-through rate (%)", "impressions ctr", "ctr"}, 4}
	colViews       = column{"views", []string{"views"}, 5}
	colAvgDuration = column{"average view duration", []string{"average view duration", "avg view duration"}, 6}
	colWatchTime   = column{"watch time (hours)", []string{"watch time (hours)", "watch time"}, 7}
)

type layout struct {
	source, impressions, ctr, views, avgDuration, watchTime int
}

func resolveLayout(header []string) (layout, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	var l layout
	var err error
	resolve := func(c column) int {
		if err != nil {
			return -1
		}
		for _, a := range c.aliases {
			if i, ok := index[a]; ok {
				return i
			}
		}
		if c.position < len(header) {
			return c.position
		}
		err = &FormatError{Field: c.name, Line: 1, Reason: "column not found in header"}
		return -1
	}

	l.source = resolve(colSource)
	l.impressions = resolve(colImpressions)
	l.ctr = resolve(colCTR)
	l.views = resolve(colViews)
	l.avgDuration = resolve(colAvgDuration)
	l.watchTime = resolve(colWatchTime)
	return l, err
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
