package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tupadhub/tupadhub/internal/blob"
	"github.com/tupadhub/tupadhub/internal/domain/project"
)

var (
	ErrUnknownFormat   = errors.New("unknown export format")
	ErrProjectRequired = errors.New("export format requires a project id")
	ErrNoSink          = errors.New("no export sink configured")
)

// Format names an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// Document is a rendered export.
type Document struct {
	Name        string
	ContentType string
	Body        []byte
}

// ProjectSource is the read side of the project service.
type ProjectSource interface {
	All(ctx context.Context) []project.Project
	Get(ctx context.Context, id string) (*project.Project, error)
}

// Service renders exports and publishes them to a blob sink.
type Service struct {
	projects ProjectSource
	sink     blob.Store
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates an export service. sink may be nil, in which case
// Publish fails with ErrNoSink.
func NewService(projects ProjectSource, sink blob.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{projects: projects, sink: sink, logger: logger, now: time.Now}
}

// Render encodes projects in format. An empty id selects every project;
// CSV always needs one.
func (s *Service) Render(ctx context.Context, format Format, id string) (*Document, error) {
	var projects []project.Project
	name := "tupad-projects"
	if id != "" {
		p, err := s.projects.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		projects = []project.Project{*p}
		name = "tupad-" + fileSafe(project.ResolveADL(*p))
	} else {
		if format == FormatCSV {
			return nil, ErrProjectRequired
		}
		projects = s.projects.All(ctx)
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case FormatJSON:
		err = JSON(&buf, projects)
	case FormatCSV:
		err = CSV(&buf, projects[0])
	case FormatXLSX:
		err = XLSX(&buf, projects)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("rendering %s export: %w", format, err)
	}

	return &Document{
		Name:        name + "." + string(format),
		ContentType: format.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}

// Publish renders an export and writes it to the sink under
// exports/<timestamp>-<uuid>-<name>.
func (s *Service) Publish(ctx context.Context, format Format, id string) (blob.Info, error) {
	if s.sink == nil {
		return blob.Info{}, ErrNoSink
	}
	doc, err := s.Render(ctx, format, id)
	if err != nil {
		return blob.Info{}, err
	}

	key := fmt.Sprintf("exports/%s-%s-%s", s.now().UTC().Format("20060102T150405Z"), uuid.NewString(), doc.Name)
	info, err := s.sink.Put(ctx, key, bytes.NewReader(doc.Body), doc.ContentType)
	if err != nil {
		return blob.Info{}, fmt.Errorf("publishing export: %w", err)
	}

	s.logger.Info("export published", "key", info.Key, "driver", s.sink.Driver(), "size", info.Size)
	return info, nil
}

// Published lists previously published exports.
func (s *Service) Published(ctx context.Context) ([]blob.Info, error) {
	if s.sink == nil {
		return nil, ErrNoSink
	}
	return s.sink.List(ctx, "exports/")
}

func fileSafe(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "project"
	}
	return b.String()
}
