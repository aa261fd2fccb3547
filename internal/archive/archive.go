// Package archive keeps a copy of every uploaded import file.
package archive

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/agent-crm/internal/config"
)

const (
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendNone  = "none"
)

type Archiver interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// New picks the backend named in cfg.
func New(cfg config.ArchiveConfig) (Archiver, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendLocal, "":
		return NewLocal(cfg.Dir), nil
	case BackendS3:
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("archive: ARCHIVE_S3_BUCKET is required for the s3 backend")
		}
		return NewS3(cfg), nil
	case BackendNone:
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("archive: unknown backend %q", cfg.Backend)
	}
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Key builds imports/YYYY/MM/DD/<uuid>-<filename>.
func Key(filename string, now time.Time) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = strings.Trim(unsafeChars.ReplaceAllString(name, "_"), "._")
	if name == "" {
		name = "upload.csv"
	}

	return fmt.Sprintf("imports/%s/%s-%s", now.UTC().Format("2006/01/02"), uuid.NewString(), name)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Put(context.Context, string, []byte, string) error { return nil }
