package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// asciiPlot draws a vertical bar chart of values in 0..1, one column
// per epoch, with the epoch number's last digit under every fifth column.
func asciiPlot(w io.Writer, values []float64) {
	const height = 10 // text rows
	n := len(values)
	if n == 0 {
		fmt.Fprintln(w, "no data to plot")
		return
	}
	for row := height; row >= 1; row-- {
		threshold := float64(row) / float64(height)
		var line strings.Builder
		for _, v := range values {
			if v >= threshold {
				line.WriteString("█")
			} else {
				line.WriteString(" ")
			}
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
	fmt.Fprintln(w, strings.Repeat("─", n))
	var axis strings.Builder
	for i := range values {
		if i%5 == 0 {
			axis.WriteString(strconv.Itoa((i + 1) % 10))
		} else {
			axis.WriteString(" ")
		}
	}
	fmt.Fprintln(w, strings.TrimRight(axis.String(), " "))
}
