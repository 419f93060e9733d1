// Package config loads the report configuration.
//
// Values are resolved in this order, later sources winning:
//
//   - Default(), the electricity production and urban population analysis
//   - a YAML file passed to Load
//   - REPORT_* environment variables, e.g. REPORT_OUTPUT or REPORT_CHARTS_PIE_INDICATOR
//
// The command line applies its flags on top of the loaded value.
package config
