package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/xilidan/s2t-translator/services/translation/consts"
	"github.com/xilidan/s2t-translator/services/translation/entity"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Render writes run to w as text, json or yaml.
func Render(w io.Writer, run *entity.Run, format string) error {
	switch strings.ToLower(format) {
	case "", consts.FormatText:
		return Text(w, run)
	case consts.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	case consts.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(run); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Text prints the alternatives table, the joined transcript, the supported
// languages (when listed) and the translation.
func Text(w io.Writer, run *entity.Run) error {
	var b strings.Builder

	b.WriteString("Normalized response:\n")
	b.WriteString(Alternatives(run.Transcription.Segments))

	fmt.Fprintf(&b, "\nTranscription result (%s):\n%s\n", run.Transcription.AudioFile, run.Transcription.Text)

	if len(run.Languages) > 0 {
		b.WriteString("\nSupported languages:\n")
		b.WriteString(Languages(run.Languages))
	}

	fmt.Fprintf(&b, "\nTranslation result (%s):\n%s\n", run.Translation.ModelID, run.Translation.Text)

	_, err := io.WriteString(w, b.String())
	return err
}

// Alternatives flattens every alternative of every segment into one row,
// numbered in order like a normalized table.
func Alternatives(segments []entity.Segment) string {
	rows := [][]string{{"", "segment", "transcript", "confidence"}}
	n := 0
	for i, seg := range segments {
		for _, alt := range seg.Alternatives {
			rows = append(rows, []string{
				strconv.Itoa(n),
				strconv.Itoa(i),
				strings.TrimSpace(alt.Transcript),
				confidence(alt.Confidence),
			})
			n++
		}
	}
	return table(rows)
}

func Languages(languages []entity.Language) string {
	rows := [][]string{{"", "language", "name"}}
	for i, l := range languages {
		rows = append(rows, []string{strconv.Itoa(i), l.Code, l.Name})
	}
	return table(rows)
}

func confidence(c float64) string {
	if c == 0 {
		return "-"
	}
	return strconv.FormatFloat(c, 'f', 2, 64)
}

// table left-aligns columns by display width so CJK text lines up.
func table(rows [][]string) string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}
	return b.String()
}
