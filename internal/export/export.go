// Package export writes client listings as CSV or XLSX. The CSV layout is
// the one the importer reads back.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/BruksfildServices01/agent-crm/internal/httperr"
	"github.com/BruksfildServices01/agent-crm/internal/models"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	SheetName = "Clients"
)

var Columns = []string{
	"name", "email", "phone", "wallet", "full_name",
	"status", "tags", "notes", "assigned_agent_id", "last_contact_at",
}

// ParseFormat defaults to CSV.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", httperr.Newf(httperr.CodeUnsupportedFormat, "Unknown export format %q.", s)
	}
}

func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

func Filename(format string, now time.Time) string {
	return fmt.Sprintf("clients-%s.%s", now.UTC().Format("20060102-150405"), format)
}

func Write(w io.Writer, format string, clients []models.Client) error {
	if format == FormatXLSX {
		return WriteXLSX(w, clients)
	}
	return WriteCSV(w, clients)
}

func WriteCSV(w io.Writer, clients []models.Client) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return err
	}
	for i := range clients {
		if err := cw.Write(row(&clients[i])); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func WriteXLSX(w io.Writer, clients []models.Client) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := setRow(f, 1, Columns); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return err
	}

	for i := range clients {
		if err := setRow(f, i+2, row(&clients[i])); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func setRow(f *excelize.File, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}

	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return f.SetSheetRow(SheetName, cell, &vals)
}

func row(c *models.Client) []string {
	var agent, lastContact string
	if c.AssignedAgentID != nil {
		agent = strconv.FormatUint(uint64(*c.AssignedAgentID), 10)
	}
	if c.LastContactAt != nil {
		lastContact = c.LastContactAt.UTC().Format(time.RFC3339Nano)
	}

	return []string{
		c.Name, c.Email, c.Phone, c.Wallet, c.FullName,
		c.Status, c.Tags, c.Notes, agent, lastContact,
	}
}
