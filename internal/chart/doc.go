// Package chart renders small multi-panel line and bar charts as PNG
// images using gonum/plot.
//
// A Figure is a grid of Panels, two per row. Every panel shares one set of
// category labels on the x axis; values that are NaN leave a gap.
package chart
