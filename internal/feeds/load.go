package feeds

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/floor_report/backend/internal/models"
	"github.com/floor_report/backend/internal/utils"
)

const (
	KindAssignment = "assignment"
	KindAudit      = "audit"
)

// Source is an input file, either on disk or uploaded.
type Source struct {
	Name string
	Open func() (io.ReadCloser, error)
}

func FileSource(path string) Source {
	return Source{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

func MultipartSource(fh *multipart.FileHeader) Source {
	return Source{
		Name: fh.Filename,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

func BytesSource(name string, b []byte) Source {
	return Source{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(b)), nil },
	}
}

func (s Source) read() ([]byte, error) {
	f, err := s.Open()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &ValidationError{File: s.Name, Err: ErrNotFound}
	}
	if err != nil {
		return nil, &ValidationError{File: s.Name, Err: ErrMalformed, Detail: err.Error()}
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, &ValidationError{File: s.Name, Err: ErrMalformed, Detail: err.Error()}
	}
	return b, nil
}

// LoadAssignments decodes every assignment file, up to workers at a time, and
// concatenates them in the order given. When several files are invalid the
// error of the first one is returned.
func LoadAssignments(ctx context.Context, sources []Source, loc *time.Location, workers int) (models.AssignmentTable, []models.RunInput, error) {
	if len(sources) == 0 {
		return models.AssignmentTable{}, nil, &ValidationError{Err: ErrNoFiles, Detail: "expedição"}
	}

	tables := make([]models.AssignmentTable, len(sources))
	inputs := make([]models.RunInput, len(sources))
	errs := make([]error, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := src.read()
			if err != nil {
				errs[i] = err
				return nil
			}
			t, err := DecodeAssignments(bytes.NewReader(b), src.Name, loc)
			if err != nil {
				errs[i] = err
				return nil
			}
			tables[i] = t
			inputs[i] = models.RunInput{Kind: KindAssignment, Name: src.Name, Fingerprint: utils.Fingerprint(b), Rows: len(t.Records)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.AssignmentTable{}, nil, err
	}
	for _, err := range errs {
		if err != nil {
			return models.AssignmentTable{}, nil, err
		}
	}
	return MergeAssignments(tables...), inputs, nil
}

func LoadAudit(src Source, loc *time.Location) (models.AuditTable, models.RunInput, error) {
	b, err := src.read()
	if err != nil {
		return models.AuditTable{}, models.RunInput{}, err
	}
	t, err := DecodeAudit(bytes.NewReader(b), src.Name, loc)
	if err != nil {
		return models.AuditTable{}, models.RunInput{}, err
	}
	return t, models.RunInput{Kind: KindAudit, Name: src.Name, Fingerprint: utils.Fingerprint(b), Rows: len(t.Records)}, nil
}
