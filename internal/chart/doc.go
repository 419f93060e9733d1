// Package chart renders the four report panels with gonum/plot.
//
// Every renderer takes a derived table from package dataset and returns a
// *Panel, which draws itself onto any draw.Canvas region:
//
//	panel, err := chart.LineRenderer{Title: "Natural gas", XLabel: "Years"}.Render(years)
//	if err != nil {
//	    return err
//	}
//	panel.Draw(region)
//
// Renderers never modify their input. Empty or malformed input yields an
// apperr RENDER error.
package chart
