// Package dataprocessing reads the sales and reference inflation tables
// into calculator records.
//
// Inputs are CSV files (semicolon separated by default) or the first sheet
// of an XLSX workbook with the same columns:
//
//	bio_umsatz_nominal.csv                jahr;umsatz_nominal
//	bio_umsatz_real.csv                   jahr;umsatz_real
//	destatis_inflation_lebensmittel.csv   jahr;inflation_rate_jahr
//
// Headers are matched case-insensitively after trimming whitespace and a
// UTF-8 byte order mark. Numbers may use a decimal point or a decimal
// comma.
//
// The nominal and real series are inner-joined on jahr. Years present in
// only one file are dropped and listed in the MergeReport. A duplicate
// year or an unparseable cell fails the load with a PARSING error that
// names the file, line and column.
package dataprocessing
