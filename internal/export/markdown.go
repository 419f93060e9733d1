package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"energyreport/internal/apperr"
)

// WriteMarkdown writes a readable digest of the summaries to w: an overview
// of the largest movers followed by one table per indicator.
func WriteMarkdown(w io.Writer, title string, summaries []Summary) error {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# %s\n\n", title)

	var indicators []string
	byIndicator := make(map[string][]Summary)
	countries := make(map[string]bool)
	for _, s := range summaries {
		if _, ok := byIndicator[s.Indicator]; !ok {
			indicators = append(indicators, s.Indicator)
		}
		byIndicator[s.Indicator] = append(byIndicator[s.Indicator], s)
		countries[s.Country] = true
	}

	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- **Indicators**: %d\n", len(indicators))
	fmt.Fprintf(&b, "- **Countries**: %d\n", len(countries))
	if len(summaries) > 0 {
		ranked := make([]Summary, len(summaries))
		copy(ranked, summaries)
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Change > ranked[j].Change })
		top, bottom := ranked[0], ranked[len(ranked)-1]
		fmt.Fprintf(&b, "- **Largest increase**: %s, %s (%+.2f)\n", top.Country, top.Indicator, top.Change)
		fmt.Fprintf(&b, "- **Largest decrease**: %s, %s (%+.2f)\n", bottom.Country, bottom.Indicator, bottom.Change)
	}

	for _, ind := range indicators {
		fmt.Fprintf(&b, "\n## %s\n\n", ind)
		b.WriteString("| Country | First | Last | Change | Growth | Peak year | Volatility | Trend |\n")
		b.WriteString("|---------|-------|------|--------|--------|-----------|------------|-------|\n")
		for _, s := range byIndicator[ind] {
			fmt.Fprintf(&b, "| %s | %.2f | %.2f | %+.2f | %+.1f%% | %d | %.1f | %s |\n",
				s.Country, s.First, s.Last, s.Change, s.Growth, s.PeakYear, s.Volatility, s.Trend)
		}
	}

	if _, err := w.Write(b.Bytes()); err != nil {
		return apperr.NewIOError("failed to write markdown summary", err)
	}
	return nil
}

// SaveMarkdown writes the digest to path.
func SaveMarkdown(path, title string, summaries []Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return apperr.NewIOError("failed to create markdown summary", err).WithContext("path", path)
	}
	if err := WriteMarkdown(f, title, summaries); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return apperr.NewIOError("failed to close markdown summary", err).WithContext("path", path)
	}
	return nil
}
