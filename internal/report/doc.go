// Package report presents an inflation.Analysis to people: a plain-text
// console report and the two chart figures saved as PNG.
package report
