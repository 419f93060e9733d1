// Package report composes the rendered chart panels into the final figure
// and runs the whole load, extract, render and export pipeline.
package report
