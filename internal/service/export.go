package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "AuditLog"

var exportHeadings = []string{
	"id", "timestamp", "actor_id", "branch_id", "device_id", "ip_address", "action",
	"entity_type", "entity_id", "before", "after", "metadata", "duration_ms",
	"previous_hash", "record_hash",
}

// exportRow flattens an entry into the column order of exportHeadings.
func exportRow(e *domain.LedgerEntry) ([]string, error) {
	before, err := snapshotText(e.Before)
	if err != nil {
		return nil, err
	}
	after, err := snapshotText(e.After)
	if err != nil {
		return nil, err
	}
	metadata, err := snapshotText(e.Metadata)
	if err != nil {
		return nil, err
	}
	duration := ""
	if e.DurationMS != nil {
		duration = strconv.FormatInt(*e.DurationMS, 10)
	}
	actor, branch := "", ""
	if e.ActorID != nil {
		actor = e.ActorID.String()
	}
	if e.BranchID != nil {
		branch = e.BranchID.String()
	}
	return []string{
		strconv.FormatInt(e.ID, 10),
		domain.FormatTimestamp(e.Timestamp),
		actor,
		branch,
		e.DeviceID,
		e.IPAddress,
		string(e.Action),
		e.EntityType,
		e.EntityID,
		before,
		after,
		metadata,
		duration,
		e.PreviousHash,
		e.RecordHash,
	}, nil
}

func snapshotText(f domain.Fields) (string, error) {
	if f == nil {
		return "", nil
	}
	b, err := domain.Canonicalize(f)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func renderExport(format ports.ExportFormat, entries []domain.LedgerEntry) ([]byte, string, error) {
	switch format {
	case ports.ExportJSON:
		data, err := json.MarshalIndent(entries, "", "  ")
		return data, "application/json", err
	case ports.ExportCSV:
		data, err := renderCSV(entries)
		return data, "text/csv", err
	case ports.ExportXLSX:
		data, err := renderXLSX(entries)
		return data, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", err
	default:
		return nil, "", fmt.Errorf("unsupported export format %q", format)
	}
}

func renderCSV(entries []domain.LedgerEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeadings); err != nil {
		return nil, err
	}
	for i := range entries {
		row, err := exportRow(&entries[i])
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", entries[i].ID, err)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func renderXLSX(entries []domain.LedgerEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	// Add headers
	for col, h := range exportHeadings {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, err
		}
	}

	// Add data
	for i := range entries {
		row, err := exportRow(&entries[i])
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", entries[i].ID, err)
		}
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
