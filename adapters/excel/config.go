package excel

import (
	"path"
	"strings"
)

// File types handled by the reader and writer.
const (
	FileTypeCSV  = "csv"
	FileTypeXLSX = "xlsx"
)

// DefaultSheet is the sheet written to new workbooks.
const DefaultSheet = "Sheet1"

// ReaderConfig holds coercion settings for table files
type ReaderConfig struct {
	// MissingMarkers are cell values read as missing. Numeric cells are
	// trimmed before matching, categorical cells are matched as read.
	MissingMarkers []string `json:"missing_markers"`
	// Sheet to read from workbooks. Empty means the first sheet.
	Sheet string `json:"sheet"`
	// KeepExtraColumns passes columns outside the schema through as
	// categorical columns.
	KeepExtraColumns bool `json:"keep_extra_columns"`
}

// DefaultReaderConfig returns the markers pandas treats as missing by default
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		MissingMarkers:   []string{"", "NA", "N/A", "NaN", "nan", "NULL", "null"},
		KeepExtraColumns: true,
	}
}

func (c ReaderConfig) isMissing(cell string) bool {
	for _, m := range c.MissingMarkers {
		if cell == m {
			return true
		}
	}
	return false
}

// FileType guesses the file type from the extension of a path or URL.
// Anything that is not .xlsx is read as CSV.
func FileType(url string) string {
	if strings.EqualFold(path.Ext(url), ".xlsx") {
		return FileTypeXLSX
	}
	return FileTypeCSV
}
