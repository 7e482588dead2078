package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/KaramelBytes/dataclean-cli/internal/cleaning"
)

// WriteCSV writes cleaned rows with a header line. Missing cells are written empty.
func WriteCSV(w io.Writer, columns []string, rows []cleaning.ProposalRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(columns))
	for i, r := range rows {
		for j, c := range columns {
			rec[j] = ""
			if p := r[c]; p != nil {
				rec[j] = *p
			}
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// AuditHeader is the header of the CSV audit log.
var AuditHeader = []string{"row", "column", "before", "after", "rule", "confidence"}

// WriteAuditCSV writes one line per diff entry.
func WriteAuditCSV(w io.Writer, diffs []cleaning.DiffEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(AuditHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, d := range diffs {
		rec := []string{
			strconv.Itoa(d.Row),
			d.Column,
			deref(d.Before),
			deref(d.After),
			string(d.Rule),
			strconv.FormatFloat(d.Confidence, 'f', 2, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write diff %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

type auditLine struct {
	Row        int           `json:"row"`
	Column     string        `json:"column"`
	OldValue   *string       `json:"old_value"`
	NewValue   *string       `json:"new_value"`
	Rule       cleaning.Rule `json:"rule"`
	Confidence float64       `json:"confidence"`
	TS         string        `json:"ts"`
}

// WriteAuditJSONL writes one JSON object per diff entry, all stamped with ts.
func WriteAuditJSONL(w io.Writer, diffs []cleaning.DiffEntry, ts time.Time) error {
	enc := json.NewEncoder(w)
	stamp := ts.UTC().Format(time.RFC3339)
	for i, d := range diffs {
		line := auditLine{
			Row:        d.Row,
			Column:     d.Column,
			OldValue:   d.Before,
			NewValue:   d.After,
			Rule:       d.Rule,
			Confidence: d.Confidence,
			TS:         stamp,
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("encode diff %d: %w", i, err)
		}
	}
	return nil
}

// WriteReportJSON writes the whole report as indented JSON.
func WriteReportJSON(w io.Writer, rep *cleaning.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
