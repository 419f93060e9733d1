// Package dataset loads indicator tables and reshapes them for plotting.
//
// A RawTable holds one row per country and indicator and one column per
// year, exactly as exported by the World Development Indicators databank:
//
//	Country Name,Country Code,Series Name,Series Code,1995 [YR1995],1996 [YR1996],...
//
// Extract filters a RawTable to one indicator and a set of countries and
// returns two views of the same values:
//
//	wide, years := dataset.Extract(raw, "Urban population (% of total population)", countries)
//
//	// wide: one row per country, one column per bare year label ("1995")
//	v, ok := wide.Value("Spain", "2014")
//
//	// years: one row per year, one column per country plus "Years"
//	col, ok := years.Column("Spain")
//
// Cells are always addressed by column name, never by position.
package dataset
