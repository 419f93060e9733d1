package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gonum.org/v1/plot/vg"

	"energyreport/internal/apperr"
	"energyreport/internal/chart"
	"energyreport/internal/config"
	"energyreport/internal/dataset"
	"energyreport/internal/export"
)

// Panel file names written under PanelsDir, in grid order.
var panelFiles = [4]string{"bar.png", "pie.png", "line.png", "hbar.png"}

// Result describes what a run produced.
type Result struct {
	Output   string
	Workbook string
	Markdown string
	Panels   []string

	// Missing maps each panel indicator to the requested countries it has
	// no rows for.
	Missing map[string][]string
}

type extracted struct {
	panel config.PanelConfig
	wide  *dataset.WideTable
	years *dataset.YearTable
}

// Run loads the input table, renders the four panels, assembles them into
// the report image and writes the optional panel files, workbook and digest.
// The image is encoded in memory and written last; when any output fails the
// files already written by the run are removed.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Result, error) {
	start := time.Now()
	logger.Info("loading input", slog.String("path", cfg.Input))
	raw, err := dataset.Load(cfg.Input, cfg.Sheet)
	if err != nil {
		return nil, err
	}
	logger.Debug("input loaded",
		slog.Int("rows", len(raw.Rows)),
		slog.Int("years", len(raw.YearColumns())))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Missing: make(map[string][]string)}
	panels := [4]config.PanelConfig{
		cfg.Charts.Bar.Resolve(cfg.FocusYear),
		cfg.Charts.Pie.Resolve(cfg.FocusYear),
		cfg.Charts.Line.Resolve(cfg.FocusYear),
		cfg.Charts.HBar.Resolve(cfg.FocusYear),
	}
	var data [4]extracted
	for i, p := range panels {
		wide, years := dataset.Extract(raw, p.Indicator, cfg.Countries)
		data[i] = extracted{panel: p, wide: wide, years: years}

		if wide.Len() == 0 {
			logger.Warn("indicator has no rows for the selected countries",
				slog.String("indicator", p.Indicator),
				slog.Any("error", apperr.NewLookupError("indicator not found").WithContext("indicator", p.Indicator)))
			continue
		}
		if missing := dataset.MissingCountries(cfg.Countries, wide); len(missing) > 0 {
			res.Missing[p.Indicator] = missing
			logger.Warn("countries missing from indicator",
				slog.String("indicator", p.Indicator),
				slog.String("countries", strings.Join(missing, ", ")))
		}
		logger.Debug("indicator extracted",
			slog.String("indicator", p.Indicator),
			slog.Int("countries", wide.Len()),
			slog.Int("years", years.Len()))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Info("rendering panels")
	rendered, err := renderPanels(cfg, data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var drawers [4]chart.Drawer
	for i, p := range rendered {
		drawers[i] = p
	}
	asm := NewAssembler(vg.Length(cfg.Report.Width)*vg.Inch, vg.Length(cfg.Report.Height)*vg.Inch)
	meta := Meta{
		Title:      cfg.Report.Title,
		Commentary: cfg.Report.Commentary,
		Author:     cfg.Report.Author,
		StudentID:  cfg.Report.StudentID,
	}
	var buf bytes.Buffer
	if err := asm.Assemble(&buf, cfg.OutputFormat(), drawers, meta); err != nil {
		return nil, err
	}

	out := &outputs{logger: logger}
	if err := writeOutputs(ctx, cfg, asm, rendered, data, buf.Bytes(), res, out); err != nil {
		out.remove()
		return nil, err
	}

	logger.Info("report complete", slog.Duration("elapsed", time.Since(start)))
	return res, nil
}

// outputs tracks the files a run created so a failed run can remove them.
type outputs struct {
	logger *slog.Logger
	paths  []string
}

func (o *outputs) add(path string) {
	o.paths = append(o.paths, path)
}

func (o *outputs) remove() {
	for _, p := range o.paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			o.logger.Warn("failed to remove partial output", slog.String("path", p), slog.Any("error", err))
		}
	}
}

// writeOutputs writes the panel files, workbook and digest, then the report
// image last.
func writeOutputs(ctx context.Context, cfg *config.Config, asm *Assembler, rendered [4]*chart.Panel,
	data [4]extracted, image []byte, res *Result, out *outputs) error {
	if cfg.PanelsDir != "" {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.MkdirAll(cfg.PanelsDir, 0o755); err != nil {
			return apperr.NewIOError("failed to create panels directory", err).
				WithContext("path", cfg.PanelsDir)
		}
		w := asm.Width / 2
		h := asm.Height / 2
		for i, p := range rendered {
			path := filepath.Join(cfg.PanelsDir, panelFiles[i])
			out.add(path)
			if err := p.Save(w, h, path); err != nil {
				return err
			}
			res.Panels = append(res.Panels, path)
		}
		out.logger.Info("panels written", slog.String("dir", cfg.PanelsDir))
	}

	if cfg.Workbook != "" || cfg.Markdown != "" {
		if err := ctx.Err(); err != nil {
			return err
		}
		sheets := make([]export.Sheet, 0, len(data))
		var summaries []export.Summary
		for i, d := range data {
			sheets = append(sheets, export.Sheet{
				Name:  sheetTitle(i, d.panel.Indicator),
				Table: d.years,
			})
			summaries = append(summaries, export.Summarize(d.years)...)
		}

		if cfg.Workbook != "" {
			if err := ensureDir(cfg.Workbook); err != nil {
				return err
			}
			out.add(cfg.Workbook)
			if err := export.WriteWorkbook(cfg.Workbook, sheets); err != nil {
				return err
			}
			res.Workbook = cfg.Workbook
			out.logger.Info("workbook written", slog.String("path", cfg.Workbook))
		}

		if cfg.Markdown != "" {
			if err := ensureDir(cfg.Markdown); err != nil {
				return err
			}
			out.add(cfg.Markdown)
			if err := export.SaveMarkdown(cfg.Markdown, cfg.Report.Title, summaries); err != nil {
				return err
			}
			res.Markdown = cfg.Markdown
			out.logger.Info("markdown summary written", slog.String("path", cfg.Markdown))
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	out.add(cfg.Output)
	if err := writeFile(cfg.Output, image); err != nil {
		return err
	}
	res.Output = cfg.Output
	out.logger.Info("report written", slog.String("path", cfg.Output), slog.Int("bytes", len(image)))
	return nil
}

func renderPanels(cfg *config.Config, data [4]extracted) ([4]*chart.Panel, error) {
	var out [4]*chart.Panel
	var err error

	bar := data[0]
	out[0], err = chart.BarRenderer{
		Title:  bar.panel.Title,
		XLabel: bar.panel.XLabel,
		YLabel: bar.panel.YLabel,
		Years:  cfg.MilestoneYears,
	}.Render(bar.years)
	if err != nil {
		return out, panelError(bar.panel, err)
	}

	pie := data[1]
	out[1], err = chart.PieRenderer{
		Title:         pie.panel.Title,
		Year:          cfg.FocusYear,
		Labels:        cfg.Countries,
		Exploded:      cfg.Explode.Country,
		ExplodeOffset: cfg.Explode.Offset,
	}.Render(pie.wide)
	if err != nil {
		return out, panelError(pie.panel, err)
	}

	line := data[2]
	out[2], err = chart.LineRenderer{
		Title:  line.panel.Title,
		XLabel: line.panel.XLabel,
		YLabel: line.panel.YLabel,
	}.Render(line.years)
	if err != nil {
		return out, panelError(line.panel, err)
	}

	hbar := data[3]
	out[3], err = chart.HorizontalBarRenderer{
		Title:     hbar.panel.Title,
		XLabel:    hbar.panel.XLabel,
		YLabel:    hbar.panel.YLabel,
		Year:      cfg.FocusYear,
		Countries: cfg.Countries,
	}.Render(hbar.years)
	if err != nil {
		return out, panelError(hbar.panel, err)
	}
	return out, nil
}

func panelError(p config.PanelConfig, err error) error {
	var ae *apperr.AppError
	if errors.As(err, &ae) {
		return ae.WithContext("indicator", p.Indicator)
	}
	return apperr.NewRenderError("failed to render panel", err).WithContext("indicator", p.Indicator)
}

func writeFile(path string, data []byte) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperr.NewIOError("failed to write report", err).WithContext("path", path)
	}
	return nil
}

// ensureDir creates the parent directory of path.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.NewIOError("failed to create directory", err).WithContext("path", dir)
	}
	return nil
}

// sheetTitle gives each panel's worksheet a short, unique name.
func sheetTitle(i int, indicator string) string {
	name := indicator
	if idx := strings.Index(name, " ("); idx > 0 {
		name = name[:idx]
	}
	name = strings.TrimPrefix(name, "Electricity production from ")
	return fmt.Sprintf("%d %s", i+1, name)
}
