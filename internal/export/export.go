// Package export writes intervals in formats other tools can read.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/stt/internal/model"
	"github.com/Tiliavir/stt/internal/storage"
)

// ErrUnknownFormat is returned for format names Write does not know.
var ErrUnknownFormat = errors.New("unknown export format")

const (
	FormatSTT  = "stt"
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatYAML = "yaml"
)

// Formats lists the supported format names.
func Formats() []string {
	return []string{FormatSTT, FormatJSON, FormatCSV, FormatYAML}
}

// Write encodes items, in the order given, to w.
func Write(w io.Writer, format string, items []model.Interval) error {
	switch format {
	case FormatSTT:
		return writeSTT(w, items)
	case FormatJSON:
		return writeJSON(w, items)
	case FormatCSV:
		return writeCSV(w, items)
	case FormatYAML:
		return writeYAML(w, items)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func writeSTT(w io.Writer, items []model.Interval) error {
	for _, iv := range items {
		if _, err := io.WriteString(w, storage.FormatLine(iv)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// jsonInterval keeps the shape of the original serde encoding: the end is
// either the string "Open" or {"At": <unix seconds>}.
type jsonInterval struct {
	Start    int64  `json:"start"`
	End      any    `json:"end"`
	Activity string `json:"activity"`
}

type jsonAt struct {
	At int64 `json:"At"`
}

func writeJSON(w io.Writer, items []model.Interval) error {
	out := make([]jsonInterval, 0, len(items))
	for _, iv := range items {
		ji := jsonInterval{Start: iv.Start.Unix(), End: "Open", Activity: iv.Activity}
		if end, ok := iv.End.Time(); ok {
			ji.End = jsonAt{At: end.Unix()}
		}
		out = append(out, ji)
	}

	data, err := sonic.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func writeCSV(w io.Writer, items []model.Interval) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "activity", "start", "end", "duration_minutes"}); err != nil {
		return err
	}
	for _, iv := range items {
		end, duration := "", ""
		if t, ok := iv.End.Time(); ok {
			end = t.Format(time.RFC3339)
			duration = strconv.FormatInt(int64(t.Sub(iv.Start)/time.Minute), 10)
		}
		record := []string{
			iv.Start.Format("2006-01-02"),
			iv.Activity,
			iv.Start.Format(time.RFC3339),
			end,
			duration,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type yamlInterval struct {
	Start    time.Time  `yaml:"start"`
	End      *time.Time `yaml:"end,omitempty"`
	Activity string     `yaml:"activity"`
}

func writeYAML(w io.Writer, items []model.Interval) error {
	out := make([]yamlInterval, 0, len(items))
	for _, iv := range items {
		yi := yamlInterval{Start: iv.Start, Activity: iv.Activity}
		if end, ok := iv.End.Time(); ok {
			yi.End = &end
		}
		out = append(out, yi)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}
