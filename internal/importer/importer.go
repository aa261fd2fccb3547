// Package importer turns an uploaded CSV file into client records.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	"github.com/BruksfildServices01/agent-crm/internal/archive"
	"github.com/BruksfildServices01/agent-crm/internal/audit"
	"github.com/BruksfildServices01/agent-crm/internal/config"
	"github.com/BruksfildServices01/agent-crm/internal/domain/crm"
	"github.com/BruksfildServices01/agent-crm/internal/httperr"
	"github.com/BruksfildServices01/agent-crm/internal/metrics"
	"github.com/BruksfildServices01/agent-crm/internal/models"
)

// Skip reasons reported in Result.Skipped.
const (
	SkipMissingName     = "missing_name"
	SkipMissingEmail    = "missing_email"
	SkipInvalidEmail    = "invalid_email"
	SkipDuplicateEmail  = "duplicate_email"
	SkipInvalidAgent    = "invalid_assigned_agent"
	SkipInvalidLastCall = "invalid_last_contact"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type Options struct {
	LegacyEncoding bool
	RequireEmail   bool
	ValidateEmail  bool
	UniqueEmail    bool
	MaxBytes       int64
	Mapping        ColumnMapping
	Policy         access.Policy
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		LegacyEncoding: cfg.Import.LegacyEncoding,
		RequireEmail:   cfg.Import.RequireEmail,
		ValidateEmail:  cfg.Import.ValidateEmail,
		UniqueEmail:    cfg.Import.UniqueEmail,
		MaxBytes:       cfg.Import.MaxBytes,
		Mapping:        DefaultColumnMapping(),
		Policy: access.Policy{
			AgentSeesAll:           cfg.Access.AgentSeesAll,
			ImportAnyAuthenticated: cfg.Import.AnyAuthenticated,
		},
	}
}

// Store is the part of the repository an import needs.
type Store interface {
	Transaction(ctx context.Context, fn func(tx crm.Repository) error) error
}

// Deps groups the collaborators of an Importer. Archiver, Audit and
// Metrics are optional.
type Deps struct {
	Store    Store
	Archiver archive.Archiver
	Audit    audit.Sink
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
}

type Request struct {
	Filename    string
	ContentType string
	Body        io.Reader
	Actor       access.Principal
}

type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type Result struct {
	Inserted       int          `json:"inserted"`
	Skipped        []SkippedRow `json:"skipped"`
	HeaderDetected bool         `json:"header_detected"`
	Encoding       string       `json:"encoding"`
	ArchiveKey     string       `json:"archive_key,omitempty"`
}

type Importer struct {
	deps     Deps
	opts     Options
	validate *validator.Validate
	now      func() time.Time
}

func New(deps Deps, opts Options) *Importer {
	if deps.Archiver == nil {
		deps.Archiver = archive.Nop{}
	}
	if deps.Audit == nil {
		deps.Audit = audit.Discard{}
	}
	if opts.Mapping.Aliases == nil {
		opts.Mapping = DefaultColumnMapping()
	}

	return &Importer{
		deps:     deps,
		opts:     opts,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Import validates and stores every row of req.Body in one transaction.
// Bad rows are skipped and reported; a parse or storage failure rolls the
// whole file back.
func (im *Importer) Import(ctx context.Context, req Request) (Result, error) {
	start := im.now()

	res, raw, err := im.run(ctx, req)
	im.observe(start, res, err)
	if err != nil {
		im.deps.Logger.Warn().Err(err).
			Str("user", req.Actor.Username).
			Str("file", req.Filename).
			Msg("client import failed")
		return Result{}, err
	}

	im.afterCommit(ctx, req, raw, &res)
	return res, nil
}

func (im *Importer) run(ctx context.Context, req Request) (Result, []byte, error) {
	if err := access.Check(req.Actor, access.CapImportClients, im.opts.Policy).Err(); err != nil {
		return Result{}, nil, err
	}

	if err := checkFormat(req.Filename, req.ContentType); err != nil {
		return Result{}, nil, err
	}

	if req.Body == nil {
		return Result{}, nil, httperr.New(httperr.CodeValidationFailed, "No file selected.")
	}

	raw, err := readLimited(req.Body, im.opts.MaxBytes)
	if err != nil {
		return Result{}, nil, err
	}

	text, encoding, err := decodeText(raw, im.opts.LegacyEncoding)
	if err != nil {
		return Result{}, nil, err
	}

	var res Result
	err = im.deps.Store.Transaction(ctx, func(tx crm.Repository) error {
		res = Result{Encoding: encoding}
		return im.insertRows(ctx, tx, text, req.Actor, &res)
	})
	if err != nil {
		return Result{}, nil, err
	}
	return res, raw, nil
}

func (im *Importer) insertRows(ctx context.Context, tx crm.Repository, text string, actor access.Principal, res *Result) error {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1

	var cols columns
	seen := make(map[string]bool)

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return httperr.Wrap(httperr.CodeValidationFailed, "The CSV file is malformed.", err)
		}

		line, _ := r.FieldPos(0)
		if isBlank(record) {
			continue
		}

		if cols == nil {
			if header, ok := im.opts.Mapping.resolveHeader(record); ok {
				cols = header
				res.HeaderDetected = true
				continue
			}
			cols = im.opts.Mapping.positional()
		}

		client, reason, err := im.buildClient(ctx, tx, cols, record, actor, seen)
		if err != nil {
			return err
		}
		if reason != "" {
			res.Skipped = append(res.Skipped, SkippedRow{Line: line, Reason: reason})
			continue
		}

		if err := tx.CreateClient(ctx, client); err != nil {
			return err
		}
		res.Inserted++
	}
}

// buildClient maps one record to a client. A non-empty reason means the
// row is skipped; an error aborts the import.
func (im *Importer) buildClient(
	ctx context.Context,
	tx crm.Repository,
	cols columns,
	record []string,
	actor access.Principal,
	seen map[string]bool,
) (*models.Client, string, error) {
	name := cols.get(record, FieldName)
	if name == "" {
		return nil, SkipMissingName, nil
	}

	email := cols.get(record, FieldEmail)
	if email == "" && im.opts.RequireEmail {
		return nil, SkipMissingEmail, nil
	}
	if email != "" && im.opts.ValidateEmail {
		if err := im.validate.Var(email, "email"); err != nil {
			return nil, SkipInvalidEmail, nil
		}
	}

	client := &models.Client{
		Name:     name,
		Email:    email,
		Phone:    cols.get(record, FieldPhone),
		Wallet:   cols.get(record, FieldWallet),
		FullName: cols.get(record, FieldFullName),
		Status:   crm.NormalizeStatus(cols.get(record, FieldStatus)),
		Tags:     cols.get(record, FieldTags),
		Notes:    cols.get(record, FieldNotes),
	}

	if raw := cols.get(record, FieldAssignedAgentID); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return nil, SkipInvalidAgent, nil
		}
		agentID := uint(id)
		client.AssignedAgentID = &agentID
	}

	if raw := cols.get(record, FieldLastContactAt); raw != "" {
		t, ok := parseTime(raw)
		if !ok {
			return nil, SkipInvalidLastCall, nil
		}
		client.LastContactAt = &t
	}

	// Agents own what they import.
	if actor.IsAgent() {
		id := actor.UserID
		client.AssignedAgentID = &id
	}

	if email != "" && im.opts.UniqueEmail {
		key := strings.ToLower(email)
		if seen[key] {
			return nil, SkipDuplicateEmail, nil
		}
		exists, err := tx.EmailExists(ctx, email)
		if err != nil {
			return nil, "", err
		}
		if exists {
			return nil, SkipDuplicateEmail, nil
		}
		seen[key] = true
	}

	return client, "", nil
}

func (im *Importer) afterCommit(ctx context.Context, req Request, raw []byte, res *Result) {
	key := archive.Key(req.Filename, im.now())
	contentType := req.ContentType
	if contentType == "" {
		contentType = "text/csv"
	}

	if err := im.deps.Archiver.Put(ctx, key, raw, contentType); err != nil {
		im.deps.Logger.Error().Err(err).Str("key", key).Msg("archive upload failed")
	} else {
		res.ArchiveKey = key
	}

	im.deps.Audit.Dispatch(audit.EventFor(req.Actor, audit.ActionClientsImported, audit.EntityClient, nil, map[string]any{
		"file":     req.Filename,
		"inserted": res.Inserted,
		"skipped":  len(res.Skipped),
		"archive":  res.ArchiveKey,
	}))

	im.deps.Logger.Info().
		Str("user", req.Actor.Username).
		Str("file", req.Filename).
		Int("inserted", res.Inserted).
		Int("skipped", len(res.Skipped)).
		Bool("header", res.HeaderDetected).
		Str("encoding", res.Encoding).
		Msg("clients imported")
}

func (im *Importer) observe(start time.Time, res Result, err error) {
	m := im.deps.Metrics
	if m == nil {
		return
	}

	outcome := "ok"
	if err != nil {
		switch httperr.CodeOf(err) {
		case httperr.CodePermissionDenied:
			outcome = "denied"
		case httperr.CodeStorageError:
			outcome = "failed"
		default:
			outcome = "rejected"
		}
	} else {
		m.ClientsImported.Add(float64(res.Inserted))
		for _, s := range res.Skipped {
			m.ImportRowsSkipped.WithLabelValues(s.Reason).Inc()
		}
	}

	m.ImportDuration.WithLabelValues(outcome).Observe(im.now().Sub(start).Seconds())
}

// SuccessMessage is the flash shown after an import.
func SuccessMessage(res Result) string {
	msg := fmt.Sprintf("Successfully imported %d clients.", res.Inserted)
	if n := len(res.Skipped); n > 0 {
		msg += fmt.Sprintf(" %d rows skipped.", n)
	}
	return msg
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
