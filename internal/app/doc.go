// Package app runs one inflation analysis from input files to reports.
//
// # Pipeline
//
// Application.Run executes a fixed sequence of stages, each traced as its
// own span and timed in the run metrics:
//
//  1. resolve_inputs  locate the nominal, real and reference tables
//  2. load            read sales and reference series concurrently
//  3. analyze         implied index, comparison, deflation
//  4. report          print the console report
//  5. export          CSV, JSON, workbook and PNG charts concurrently
//
// A cancelled or expired context stops the run before the next stage.
// Nothing is exported unless every earlier stage succeeded.
//
// # Usage
//
//	application, err := app.NewApplication(cfg, paths, logger, otelProviders)
//	if err != nil {
//	    return err
//	}
//	result, err := application.Run(ctx)
package app
