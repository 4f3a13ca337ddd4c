package config

// Application constants
const (
	AppName    = "lakner-inflation"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. LAKNER_ANALYSIS_BASE_PERIOD
	EnvPrefix = "LAKNER"

	// EnvConfigFile names an explicit YAML config file
	EnvConfigFile = "LAKNER_CONFIG"
)

// Input file names
const (
	NominalSalesFile  = "bio_umsatz_nominal.csv"
	RealSalesFile     = "bio_umsatz_real.csv"
	ReferenceRateFile = "destatis_inflation_lebensmittel.csv"
)

// Output file names
const (
	ResultsCSVFile      = "bio_inflation_results.csv"
	ComparisonCSVFile   = "bio_destatis_comparison.csv"
	AnalysisChartFile   = "bio_inflation_analysis.png"
	ComparisonChartFile = "bio_destatis_comparison.png"
	WorkbookFile        = "bio_inflation_analysis.xlsx"
	SummaryJSONFile     = "bio_inflation_summary.json"
)

// Reference rate units accepted by AnalysisConfig.ReferenceRateUnit
const (
	RateUnitFraction = "fraction"
	RateUnitPercent  = "percent"
)

// Logging outputs accepted by LoggingConfig.Output
const (
	LogOutputConsole = "console"
	LogOutputFile    = "file"
	LogOutputBoth    = "both"
)
