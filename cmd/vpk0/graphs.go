package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	//exposes "chart"
)

// Scatter plot for X, Y ints
func scatterIntMap(path string, results map[int]int) error {
	// Create sorted list
	keys := make([]int, 0, len(results))
	for i := range results {
		keys = append(keys, i)
	}
	sort.Ints(keys)

	// An axis needs a non-zero range
	if len(keys) < 2 {
		return fmt.Errorf("%s: need at least 2 distinct values to graph, have %d", path, len(keys))
	}

	// Convert map to 2 arrays
	xvals := make([]float64, 0, len(keys))
	yvals := make([]float64, 0, len(keys))
	for _, k := range keys {
		xvals = append(xvals, float64(k))
		yvals = append(yvals, float64(results[k]))
	}
	graph := chart.Chart{
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style: chart.Style{
					DotWidth: 3,
				},
				XValues: xvals,
				YValues: yvals,
			},
		},
	}

	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := graph.Render(chart.SVG, fh); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}
