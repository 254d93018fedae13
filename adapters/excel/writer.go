package excel

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"paxclean/domain/table"
	"paxclean/internal/errors"
	"paxclean/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/xuri/excelize/v2"
)

// DataWriter writes tables as CSV or XLSX to any afs URL. Rows keep the
// table order and missing values are written as empty cells.
type DataWriter struct {
	fs     afs.Service
	logger logrus.FieldLogger
}

// NewDataWriter creates a writer.
func NewDataWriter(logger logrus.FieldLogger) *DataWriter {
	return &DataWriter{fs: afs.New(), logger: logging.Component(logger, "writer")}
}

// Write encodes t in the format implied by the extension of url and uploads it.
func (w *DataWriter) Write(ctx context.Context, t *table.Table, url string) error {
	var buf bytes.Buffer
	if err := Encode(&buf, t, FileType(url)); err != nil {
		return err
	}
	if err := w.fs.Upload(ctx, url, 0644, &buf); err != nil {
		return errors.IOError(fmt.Sprintf("failed to write %s", url), err)
	}
	w.logger.WithFields(logrus.Fields{
		"url":     url,
		"rows":    t.Rows(),
		"columns": len(t.Names()),
	}).Info("table written")
	return nil
}

// Encode writes t to out as fileType.
func Encode(out io.Writer, t *table.Table, fileType string) error {
	switch fileType {
	case FileTypeCSV:
		return encodeCSV(out, t)
	case FileTypeXLSX:
		return encodeXLSX(out, t)
	default:
		return errors.InvalidInput(fmt.Sprintf("unsupported file type: %s", fileType))
	}
}

func encodeCSV(out io.Writer, t *table.Table) error {
	cw := csv.NewWriter(out)
	cols := t.Columns()
	if err := cw.Write(t.Names()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	record := make([]string, len(cols))
	for i := 0; i < t.Rows(); i++ {
		for j, col := range cols {
			record[j] = cellText(col, i)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func encodeXLSX(out io.Writer, t *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	cols := t.Columns()
	header := make([]interface{}, len(cols))
	for j, col := range cols {
		header[j] = col.Name()
	}
	if err := f.SetSheetRow(DefaultSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write sheet header: %w", err)
	}

	row := make([]interface{}, len(cols))
	for i := 0; i < t.Rows(); i++ {
		for j, col := range cols {
			row[j] = cellValue(col, i)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(DefaultSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write sheet row %d: %w", i, err)
		}
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to encode workbook: %w", err)
	}
	return nil
}

func cellText(col *table.Column, i int) string {
	if col.Kind() == table.KindNumeric {
		v, ok := col.Float(i)
		if !ok {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s, _ := col.Str(i)
	return s
}

// cellValue keeps finite numbers numeric in the workbook.
func cellValue(col *table.Column, i int) interface{} {
	if col.Kind() == table.KindNumeric {
		v, ok := col.Float(i)
		switch {
		case !ok:
			return nil
		case math.IsInf(v, 0):
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
		return v
	}
	s, ok := col.Str(i)
	if !ok {
		return nil
	}
	return s
}
