package app

import (
	"bytes"
	"context"
	"fmt"

	"paxclean/adapters/excel"
	"paxclean/domain/quality"
	"paxclean/domain/table"
	"paxclean/internal/errors"
	"paxclean/internal/logging"
	"paxclean/internal/pipeline"
	"paxclean/internal/report"
	"paxclean/ports"

	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

// OutputOptions controls which files a run writes. Nothing is written when
// Dir is empty.
type OutputOptions struct {
	Dir           string
	TableFormats  []string
	ReportFormats []string
}

// CleaningService reads passenger files, runs the pipeline, stores the run
// report and writes the cleaned table and rendered reports.
type CleaningService struct {
	pipeline *pipeline.Pipeline
	runs     ports.RunRepository
	schema   *table.Schema
	reader   excel.ReaderConfig
	writer   *excel.DataWriter
	outputs  OutputOptions
	fs       afs.Service
	logger   logrus.FieldLogger
}

// NewCleaningService creates a cleaning service. runs may be nil to skip
// persistence.
func NewCleaningService(p *pipeline.Pipeline, schema *table.Schema, runs ports.RunRepository, outputs OutputOptions, logger logrus.FieldLogger) *CleaningService {
	return &CleaningService{
		pipeline: p,
		runs:     runs,
		schema:   schema,
		reader:   excel.DefaultReaderConfig(),
		writer:   excel.NewDataWriter(logger),
		outputs:  outputs,
		fs:       afs.New(),
		logger:   logging.Component(logger, "cleaning"),
	}
}

// Outcome is a finished run with the files it produced. RunErr is the stage
// failure of a failed run and is nil when the run succeeded.
type Outcome struct {
	*pipeline.Result
	Files  []string `json:"files,omitempty"`
	RunErr error    `json:"-"`
}

// ReadFile reads a CSV or XLSX file into a raw table.
func (s *CleaningService) ReadFile(ctx context.Context, input string) (*table.Table, error) {
	return excel.NewDataReader(input, s.reader, s.logger).ReadTable(ctx, s.schema)
}

// ReadBytes parses uploaded file content of fileType into a raw table.
func (s *CleaningService) ReadBytes(content []byte, fileType string) (*table.Table, error) {
	name := "upload." + fileType
	data, err := excel.NewDataReader(name, s.reader, s.logger).Parse(content)
	if err != nil {
		return nil, err
	}
	return excel.Coerce(data, s.schema, s.reader)
}

// RunFile reads input and cleans it.
func (s *CleaningService) RunFile(ctx context.Context, input string) (*Outcome, error) {
	raw, err := s.ReadFile(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.RunTable(ctx, raw, input)
}

// RunTable cleans raw. A failed run still stores its report and writes the
// rendered reports, and its stage failure is set on Outcome.RunErr. The
// returned error covers persistence and output failures only.
func (s *CleaningService) RunTable(ctx context.Context, raw *table.Table, input string) (*Outcome, error) {
	res, runErr := s.pipeline.Run(ctx, raw, input)
	if res == nil {
		return nil, runErr
	}
	outcome := &Outcome{Result: res, RunErr: runErr}

	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, res.Report); err != nil {
			return outcome, errors.DatabaseError("failed to store run report", err)
		}
	}

	files, err := s.writeOutputs(ctx, res)
	outcome.Files = files
	if err != nil {
		return outcome, err
	}

	s.logger.WithFields(logrus.Fields{
		"run_id": res.Report.ID(),
		"status": res.Report.Status,
		"files":  len(files),
	}).Info("run recorded")
	return outcome, nil
}

// ProfileFile reads input and profiles it without cleaning.
func (s *CleaningService) ProfileFile(ctx context.Context, input string) (quality.ProfileResult, error) {
	raw, err := s.ReadFile(ctx, input)
	if err != nil {
		return quality.ProfileResult{}, err
	}
	return s.pipeline.Profile(raw)
}

// writeOutputs writes <dir>/<run id>/cleaned.<fmt> for a succeeded run and
// report.<fmt> for every run.
func (s *CleaningService) writeOutputs(ctx context.Context, res *pipeline.Result) ([]string, error) {
	if s.outputs.Dir == "" {
		return nil, nil
	}
	base := url.Join(s.outputs.Dir, res.Report.ID().String())

	var files []string
	if res.Table != nil {
		for _, format := range s.outputs.TableFormats {
			target := url.Join(base, "cleaned."+format)
			if err := s.writer.Write(ctx, res.Table, target); err != nil {
				return files, err
			}
			files = append(files, target)
		}
	}

	for _, format := range s.outputs.ReportFormats {
		data, err := report.Render(res.Report, format)
		if err != nil {
			return files, err
		}
		target := url.Join(base, "report."+format)
		if err := s.fs.Upload(ctx, target, 0644, bytes.NewReader(data)); err != nil {
			return files, errors.IOError(fmt.Sprintf("failed to write %s", target), err)
		}
		files = append(files, target)
	}
	return files, nil
}
