package excel

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"paxclean/domain/core"
	"paxclean/domain/table"
	"paxclean/internal/errors"
	"paxclean/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/xuri/excelize/v2"
)

// DataReader reads CSV and XLSX files from any afs URL (local path, file://,
// mem://, cloud storage) into raw tables.
type DataReader struct {
	fs       afs.Service
	url      string
	fileType string
	config   ReaderConfig
	logger   logrus.FieldLogger
}

// NewDataReader creates a reader for url. The file type follows the extension.
func NewDataReader(url string, config ReaderConfig, logger logrus.FieldLogger) *DataReader {
	return &DataReader{
		fs:       afs.New(),
		url:      url,
		fileType: FileType(url),
		config:   config,
		logger:   logging.Component(logger, "reader"),
	}
}

// ReadData downloads the file and splits it into headers and rows.
func (r *DataReader) ReadData(ctx context.Context) (*RawData, error) {
	r.logger.WithFields(logrus.Fields{"url": r.url, "type": r.fileType}).Debug("reading file")

	start := time.Now()
	content, err := r.fs.DownloadWithURL(ctx, r.url)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("failed to read %s", r.url), err)
	}
	r.logger.WithField("duration_ms", time.Since(start).Milliseconds()).Debug("file downloaded")

	return r.Parse(content)
}

// Parse splits file content of the reader's type into headers and rows.
func (r *DataReader) Parse(content []byte) (*RawData, error) {
	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case FileTypeCSV:
		rows, err = readCSVRows(content)
	case FileTypeXLSX:
		rows, err = readExcelRows(content, r.config.Sheet)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported file type: %s", r.fileType))
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s file has no header row", strings.ToUpper(r.fileType)))
	}
	return r.processRows(rows), nil
}

func readCSVRows(content []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to parse CSV file: %w", err))
	}
	return rows, nil
}

func readExcelRows(content []byte, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to open Excel file: %w", err))
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.InvalidInput("Excel file has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to read sheet %s: %w", sheet, err))
	}
	return rows, nil
}

// processRows trims headers and drops trailing blank rows.
func (r *DataReader) processRows(rows [][]string) *RawData {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	data := rows[1:]
	for len(data) > 0 && blankRow(data[len(data)-1]) {
		data = data[:len(data)-1]
	}

	r.logger.WithFields(logrus.Fields{
		"columns": len(headers),
		"rows":    len(data),
	}).Debug("file processed")
	return &RawData{Headers: headers, Rows: data}
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ReadTable reads the file and coerces it into a raw table labelled "raw".
func (r *DataReader) ReadTable(ctx context.Context, schema *table.Schema) (*table.Table, error) {
	data, err := r.ReadData(ctx)
	if err != nil {
		return nil, err
	}
	return Coerce(data, schema, r.config)
}

// Coerce converts raw cells into typed columns. Schema fields come first in
// schema order; declared fields absent from the file are left out so that
// schema validation reports them. Numeric cells that do not parse are a schema
// error.
func Coerce(data *RawData, schema *table.Schema, config ReaderConfig) (*table.Table, error) {
	var cols []*table.Column
	declared := make(map[string]bool)
	for _, f := range schema.Fields() {
		declared[f.Name] = true
		j := data.Column(f.Name)
		if j < 0 {
			continue
		}
		var (
			col *table.Column
			err error
		)
		if f.Kind == table.KindNumeric {
			col, err = numericColumn(data, f.Name, j, config)
		} else {
			col = categoricalColumn(data, f.Name, j, config)
		}
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}

	if config.KeepExtraColumns {
		for j, h := range data.Headers {
			if declared[h] || h == "" {
				continue
			}
			declared[h] = true
			cols = append(cols, categoricalColumn(data, h, j, config))
		}
	}

	return table.New("raw", cols...)
}

func numericColumn(data *RawData, name string, j int, config ReaderConfig) (*table.Column, error) {
	values := make([]float64, len(data.Rows))
	for i := range data.Rows {
		cell := strings.TrimSpace(data.Cell(i, j))
		if config.isMissing(cell) {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(v) {
			return nil, fmt.Errorf("%w: %q row %d: %q is not a number", core.ErrWrongKind, name, i, cell)
		}
		values[i] = v
	}
	return table.NewNumeric(name, values), nil
}

func categoricalColumn(data *RawData, name string, j int, config ReaderConfig) *table.Column {
	values := make([]string, len(data.Rows))
	valid := make([]bool, len(data.Rows))
	for i := range data.Rows {
		cell := data.Cell(i, j)
		if config.isMissing(cell) {
			continue
		}
		values[i] = cell
		valid[i] = true
	}
	return table.NewCategorical(name, values, valid)
}
