package config

// Indicator names as they appear in the World Development Indicators export.
const (
	IndicatorHydro   = "Electricity production from hydroelectric sources (% of total)"
	IndicatorNuclear = "Electricity production from nuclear sources (% of total)"
	IndicatorGas     = "Electricity production from natural gas sources (% of total)"
	IndicatorUrban   = "Urban population (% of total population)"
)

const defaultCommentary = "Hydroelectric output keeps a steady share in most of the selected countries " +
	"while natural gas shows the largest swings over the period. Nuclear generation in the focus year " +
	"is concentrated in a few producers, and urbanisation is highest in Argentina and the Netherlands."

// Default returns the configuration of the electricity and urbanisation analysis.
func Default() *Config {
	return &Config{
		Input:  "Electricity.csv",
		Output: "report.png",
		Countries: []string{
			"Netherlands", "Mexico", "China", "Pakistan", "Germany", "Spain", "Argentina",
		},
		MilestoneYears: []int{1995, 2000, 2007, 2014},
		FocusYear:      2014,
		Explode: ExplodeConfig{
			Country: "Spain",
			Offset:  0.1,
		},
		Charts: ChartsConfig{
			Bar: PanelConfig{
				Indicator: IndicatorHydro,
				Title:     "Electricity production from hydroelectric sources",
				XLabel:    "Years",
				YLabel:    "% of total production",
			},
			Pie: PanelConfig{
				Indicator: IndicatorNuclear,
				Title:     "Electricity production from nuclear source {year}",
			},
			Line: PanelConfig{
				Indicator: IndicatorGas,
				Title:     "Electricity production from natural gas sources",
				XLabel:    "Years",
				YLabel:    "% of production",
			},
			HBar: PanelConfig{
				Indicator: IndicatorUrban,
				Title:     "Urban population - {year}",
				XLabel:    "% of total population - {year}",
				YLabel:    "Countries",
			},
		},
		Report: ReportConfig{
			Title:      "Urban Population Growth and Electricity Production",
			Commentary: defaultCommentary,
			Width:      12,
			Height:     10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
