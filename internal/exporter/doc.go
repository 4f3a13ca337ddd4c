// Package exporter writes the analysis tables to disk.
//
// Three table shapes are produced from an inflation.Analysis:
//
//	ResultsTable     implied index per sales period
//	ComparisonTable  implied vs. reference rates merged with the
//	                 reference-deflated real values
//	SummaryTable     comparison statistics and key findings
//
// CSVWriter renders a Table with a configurable separator and a UTF-8 BOM
// so spreadsheet tools detect the encoding. WorkbookExporter puts all three
// tables into one XLSX file with native charts. WriteSummaryJSON emits the
// same numbers as JSON; an undefined correlation is null there and an empty
// cell in the tables.
package exporter
