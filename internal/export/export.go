// Package export renders snapshot collections as CSV or XLSX. It only reads
// the snapshot it is given.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"voteledger/internal/persistence"
	dErrors "voteledger/pkg/domain-errors"
)

type Collection string

const (
	Voters     Collection = "voters"
	Elections  Collection = "elections"
	Candidates Collection = "candidates"
	Votes      Collection = "votes"
	Audit      Collection = "audit"
)

// Collections lists every exportable collection in workbook order.
var Collections = []Collection{Voters, Elections, Candidates, Votes, Audit}

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseCollection resolves a collection name, case-insensitively.
func ParseCollection(name string) (Collection, error) {
	c := Collection(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Collections {
		if c == known {
			return c, nil
		}
	}
	return "", dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("unknown collection %q", name))
}

// ParseFormat resolves a format name. Empty means CSV.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unsupported format %q", name))
	}
}

// ContentType is the media type for f.
func ContentType(f Format) string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName is the download name for c in format f.
func FileName(c Collection, f Format) string {
	return string(c) + "." + string(f)
}

// Table flattens one collection into a header and string rows.
func Table(snap persistence.Snapshot, c Collection) ([]string, [][]string) {
	switch c {
	case Voters:
		header := []string{"walletId", "name", "externalId", "email", "registeredAt", "status"}
		rows := make([][]string, 0, len(snap.Voters))
		for _, v := range snap.Voters {
			rows = append(rows, []string{v.WalletID, v.Name, v.ExternalID, v.Email, formatTime(v.RegisteredAt), string(v.Status)})
		}
		return header, rows
	case Elections:
		header := []string{"electionId", "title", "description", "startAt", "endAt", "status", "totalVotes", "createdAt"}
		rows := make([][]string, 0, len(snap.Elections))
		for _, e := range snap.Elections {
			rows = append(rows, []string{
				strconv.Itoa(e.ElectionID), e.Title, e.Description,
				formatTimePtr(e.StartAt), formatTimePtr(e.EndAt),
				string(e.Status), strconv.Itoa(e.TotalVotes), formatTime(e.CreatedAt),
			})
		}
		return header, rows
	case Candidates:
		header := []string{"electionId", "candidateId", "name", "affiliation", "votes", "percentage"}
		rows := make([][]string, 0, len(snap.Candidates))
		for _, cand := range snap.Candidates {
			rows = append(rows, []string{
				strconv.Itoa(cand.ElectionID), strconv.Itoa(cand.CandidateID), cand.Name, cand.Affiliation,
				strconv.Itoa(cand.Votes), strconv.FormatFloat(cand.Percentage, 'f', 2, 64),
			})
		}
		return header, rows
	case Votes:
		header := []string{"voteId", "walletId", "electionId", "candidateId", "castAt", "externalTxRef"}
		rows := make([][]string, 0, len(snap.Votes))
		for _, v := range snap.Votes {
			rows = append(rows, []string{
				strconv.Itoa(v.VoteID), v.WalletID, strconv.Itoa(v.ElectionID), strconv.Itoa(v.CandidateID),
				formatTime(v.CastAt), v.ExternalTxRef,
			})
		}
		return header, rows
	case Audit:
		header := []string{"sequence", "id", "timestamp", "action", "actor", "outcome", "errorMessage", "requestId", "client", "details", "prevHash", "hash"}
		rows := make([][]string, 0, len(snap.Audit))
		for _, e := range snap.Audit {
			details := ""
			if len(e.Details) > 0 {
				if raw, err := json.Marshal(e.Details); err == nil {
					details = string(raw)
				}
			}
			rows = append(rows, []string{
				strconv.FormatUint(e.Sequence, 10), e.ID, formatTime(e.Timestamp), e.Action, e.Actor,
				string(e.Outcome), e.ErrorMessage, e.RequestID, e.Client, details, e.PrevHash, e.Hash,
			})
		}
		return header, rows
	}
	return nil, nil
}

// Write renders one collection to w.
func Write(w io.Writer, snap persistence.Snapshot, c Collection, f Format) error {
	if f == FormatXLSX {
		return WriteWorkbook(w, snap, c)
	}
	return WriteCSV(w, snap, c)
}

func WriteCSV(w io.Writer, snap persistence.Snapshot, c Collection) error {
	header, rows := Table(snap, c)
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// WriteWorkbook renders the given collections as one sheet each. No
// collections means all of them.
func WriteWorkbook(w io.Writer, snap persistence.Snapshot, collections ...Collection) error {
	if len(collections) == 0 {
		collections = Collections
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	for i, c := range collections {
		sheet := SheetName(c)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
		header, rows := Table(snap, c)
		if err := setRow(f, sheet, 1, header); err != nil {
			return err
		}
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
		for r, row := range rows {
			if err := setRow(f, sheet, r+2, row); err != nil {
				return err
			}
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SheetName is the title-cased sheet name for c.
func SheetName(c Collection) string {
	s := string(c)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("set row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
