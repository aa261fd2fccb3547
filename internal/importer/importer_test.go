package importer_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	"github.com/BruksfildServices01/agent-crm/internal/audit"
	"github.com/BruksfildServices01/agent-crm/internal/db/dbtest"
	"github.com/BruksfildServices01/agent-crm/internal/httperr"
	"github.com/BruksfildServices01/agent-crm/internal/importer"
	"github.com/BruksfildServices01/agent-crm/internal/infra/repository"
	"github.com/BruksfildServices01/agent-crm/internal/metrics"
	"github.com/BruksfildServices01/agent-crm/internal/models"
)

var admin = access.Principal{Username: "root", Role: models.RoleAdmin, Superuser: true}

type fixture struct {
	db       *gorm.DB
	im       *importer.Importer
	archived *recordingArchiver
	events   *recordingSink
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T, opts importer.Options) *fixture {
	t.Helper()

	gdb := dbtest.New(t)
	f := &fixture{
		db:       gdb,
		archived: &recordingArchiver{},
		events:   &recordingSink{},
		metrics:  metrics.NewNop(),
	}
	f.im = importer.New(importer.Deps{
		Store:    repository.NewCRMGormRepository(gdb),
		Archiver: f.archived,
		Audit:    f.events,
		Metrics:  f.metrics,
		Logger:   zerolog.Nop(),
	}, opts)
	return f
}

func defaultOptions() importer.Options {
	return importer.Options{
		LegacyEncoding: true,
		MaxBytes:       1 << 20,
		Mapping:        importer.DefaultColumnMapping(),
	}
}

func csvRequest(body string, actor access.Principal) importer.Request {
	return importer.Request{
		Filename:    "clients.csv",
		ContentType: "text/csv",
		Body:        strings.NewReader(body),
		Actor:       actor,
	}
}

func (f *fixture) clients(t *testing.T) []models.Client {
	t.Helper()
	var out []models.Client
	require.NoError(t, f.db.Order("id ASC").Find(&out).Error)
	return out
}

type recordingArchiver struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (a *recordingArchiver) Put(_ context.Context, key string, _ []byte, _ string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.keys = append(a.keys, key)
	return nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *recordingSink) Dispatch(ev audit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// ==================================================
// Row handling
// ==================================================

func TestImport_SkipsRowWithoutName(t *testing.T) {
	f := newFixture(t, defaultOptions())

	res, err := f.im.Import(context.Background(), csvRequest("name,email\nAlice,a@x.com\n,b@x.com\n", admin))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Inserted)
	assert.True(t, res.HeaderDetected)
	assert.Equal(t, []importer.SkippedRow{{Line: 3, Reason: importer.SkipMissingName}}, res.Skipped)

	clients := f.clients(t)
	require.Len(t, clients, 1)
	assert.Equal(t, "Alice", clients[0].Name)
	assert.Equal(t, "a@x.com", clients[0].Email)
	assert.Equal(t, "NEW", clients[0].Status)
	assert.Nil(t, clients[0].AssignedAgentID)

	assert.Equal(t, "Successfully imported 1 clients. 1 rows skipped.", importer.SuccessMessage(res))
}

func TestImport_DuplicatesInsertedByDefault(t *testing.T) {
	f := newFixture(t, defaultOptions())

	res, err := f.im.Import(context.Background(), csvRequest("name,email\nBob,b@x.com\nBob,b@x.com\n", admin))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Inserted)
	assert.Len(t, f.clients(t), 2)
}

func TestImport_UniqueEmail(t *testing.T) {
	opts := defaultOptions()
	opts.UniqueEmail = true
	f := newFixture(t, opts)

	require.NoError(t, f.db.Create(&models.Client{Name: "Existing", Email: "taken@x.com", Status: "NEW"}).Error)

	body := "name,email\n" +
		"A,TAKEN@x.com\n" +
		"B,new@x.com\n" +
		"C,New@X.com\n" +
		"D,\n" +
		"E,\n"

	res, err := f.im.Import(context.Background(), csvRequest(body, admin))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Inserted)
	assert.Equal(t, []importer.SkippedRow{
		{Line: 2, Reason: importer.SkipDuplicateEmail},
		{Line: 4, Reason: importer.SkipDuplicateEmail},
	}, res.Skipped)
}

func TestImport_RequireAndValidateEmail(t *testing.T) {
	opts := defaultOptions()
	opts.RequireEmail = true
	opts.ValidateEmail = true
	f := newFixture(t, opts)

	res, err := f.im.Import(context.Background(), csvRequest("name,email\nA,\nB,not-an-email\nC,c@x.com\n", admin))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, []importer.SkippedRow{
		{Line: 2, Reason: importer.SkipMissingEmail},
		{Line: 3, Reason: importer.SkipInvalidEmail},
	}, res.Skipped)
}

func TestImport_HeaderlessUsesPositionalColumns(t *testing.T) {
	f := newFixture(t, defaultOptions())

	res, err := f.im.Import(context.Background(), csvRequest("Bob,bob@x.com,555-1234,0xabc,Bob Builder,deposit,vip,likes tea\n", admin))
	require.NoError(t, err)

	assert.False(t, res.HeaderDetected)
	assert.Equal(t, 1, res.Inserted)

	c := f.clients(t)[0]
	assert.Equal(t, "Bob", c.Name)
	assert.Equal(t, "bob@x.com", c.Email)
	assert.Equal(t, "555-1234", c.Phone)
	assert.Equal(t, "0xabc", c.Wallet)
	assert.Equal(t, "Bob Builder", c.FullName)
	assert.Equal(t, "DEPOSIT", c.Status)
	assert.Equal(t, "vip", c.Tags)
	assert.Equal(t, "likes tea", c.Notes)
}

func TestImport_RepeatedAliasIsData(t *testing.T) {
	f := newFixture(t, defaultOptions())

	res, err := f.im.Import(context.Background(), csvRequest("Contact,client\nBob,b@x.com\n", admin))
	require.NoError(t, err)

	assert.False(t, res.HeaderDetected)
	assert.Equal(t, 2, res.Inserted)

	clients := f.clients(t)
	require.Len(t, clients, 2)
	assert.Equal(t, "Contact", clients[0].Name)
	assert.Equal(t, "client", clients[0].Email)
	assert.Equal(t, "Bob", clients[1].Name)
}

func TestImport_HeaderAliasesAndBOM(t *testing.T) {
	f := newFixture(t, defaultOptions())

	body := "\xEF\xBB\xBF Client Name ,E-Mail,Mobile,Ignored\n  Carol  ,carol@x.com,777,zzz\n,,,\n"

	res, err := f.im.Import(context.Background(), csvRequest(body, admin))
	require.NoError(t, err)

	assert.True(t, res.HeaderDetected)
	assert.Equal(t, 1, res.Inserted)
	assert.Empty(t, res.Skipped)

	c := f.clients(t)[0]
	assert.Equal(t, "Carol", c.Name)
	assert.Equal(t, "carol@x.com", c.Email)
	assert.Equal(t, "777", c.Phone)
}

func TestImport_UnparseableAgentAndTimestampAreSkipped(t *testing.T) {
	f := newFixture(t, defaultOptions())

	body := "name,assigned_agent_id,last_contact_at\n" +
		"A,abc,\n" +
		"B,,yesterday\n" +
		"C,7,2024-03-01T10:00:00Z\n"

	res, err := f.im.Import(context.Background(), csvRequest(body, admin))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, []importer.SkippedRow{
		{Line: 2, Reason: importer.SkipInvalidAgent},
		{Line: 3, Reason: importer.SkipInvalidLastCall},
	}, res.Skipped)

	c := f.clients(t)[0]
	require.NotNil(t, c.AssignedAgentID)
	assert.Equal(t, uint(7), *c.AssignedAgentID)
	require.NotNil(t, c.LastContactAt)
	assert.Equal(t, 2024, c.LastContactAt.UTC().Year())
}

// ==================================================
// Encoding
// ==================================================

func TestImport_Latin1Fallback(t *testing.T) {
	f := newFixture(t, defaultOptions())

	res, err := f.im.Import(context.Background(), csvRequest("name,email\nJos\xe9,jose@x.com\n", admin))
	require.NoError(t, err)

	assert.Equal(t, importer.EncodingLatin1, res.Encoding)
	assert.Equal(t, "José", f.clients(t)[0].Name)
}

func TestImport_InvalidEncodingWithoutFallback(t *testing.T) {
	opts := defaultOptions()
	opts.LegacyEncoding = false
	f := newFixture(t, opts)

	_, err := f.im.Import(context.Background(), csvRequest("name,email\nJos\xe9,jose@x.com\n", admin))
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidEncoding))
	assert.Empty(t, f.clients(t))
}

// ==================================================
// Rejections
// ==================================================

func TestImport_PermissionDenied(t *testing.T) {
	f := newFixture(t, defaultOptions())

	agent := access.Principal{UserID: 4, Username: "alice", Role: models.RoleAgent}
	for _, p := range []access.Principal{agent, {}} {
		_, err := f.im.Import(context.Background(), csvRequest("name\nA\nB\n", p))
		require.Error(t, err)
		assert.True(t, httperr.IsBusiness(err, httperr.CodePermissionDenied))
	}

	assert.Empty(t, f.clients(t))
	assert.Empty(t, f.archived.keys)
	assert.Equal(t, 1, testutil.CollectAndCount(f.metrics.ImportDuration), "both attempts share the denied series")
}

func TestImport_AgentImportAssignsToSelf(t *testing.T) {
	opts := defaultOptions()
	opts.Policy.ImportAnyAuthenticated = true
	f := newFixture(t, opts)

	agentRow := models.User{Username: "alice", PasswordHash: "x", Role: models.RoleAgent}
	require.NoError(t, f.db.Create(&agentRow).Error)
	agent := access.Principal{UserID: agentRow.ID, Username: "alice", Role: models.RoleAgent}

	res, err := f.im.Import(context.Background(), csvRequest("name,agent_id\nA,\nB,999\n", agent))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)

	for _, c := range f.clients(t) {
		require.NotNil(t, c.AssignedAgentID)
		assert.Equal(t, agentRow.ID, *c.AssignedAgentID)
	}
}

func TestImport_RejectsNonCSV(t *testing.T) {
	f := newFixture(t, defaultOptions())

	cases := []struct {
		name, filename, contentType, code string
	}{
		{"empty name", "", "text/csv", httperr.CodeValidationFailed},
		{"wrong extension", "clients.xlsx", "text/csv", httperr.CodeUnsupportedFormat},
		{"wrong content type", "clients.csv", "image/png", httperr.CodeUnsupportedFormat},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.im.Import(context.Background(), importer.Request{
				Filename:    tc.filename,
				ContentType: tc.contentType,
				Body:        strings.NewReader("name\nA\n"),
				Actor:       admin,
			})
			require.Error(t, err)
			assert.Equal(t, tc.code, httperr.CodeOf(err))
		})
	}

	_, err := f.im.Import(context.Background(), importer.Request{
		Filename:    "CLIENTS.CSV",
		ContentType: "application/vnd.ms-excel",
		Body:        strings.NewReader("name\nA\n"),
		Actor:       admin,
	})
	require.NoError(t, err)
}

func TestImport_TooLarge(t *testing.T) {
	opts := defaultOptions()
	opts.MaxBytes = 10
	f := newFixture(t, opts)

	_, err := f.im.Import(context.Background(), csvRequest("name\nAlice\nBob\nCarol\n", admin))
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeValidationFailed))
}

// ==================================================
// Atomicity
// ==================================================

func TestImport_MalformedCSVRollsBack(t *testing.T) {
	f := newFixture(t, defaultOptions())

	_, err := f.im.Import(context.Background(), csvRequest("name,email\nBob,b@x.com\n\"Alice,a@x.com\n", admin))
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeValidationFailed))
	assert.Empty(t, f.clients(t))
}

func TestImport_StorageFailureRollsBack(t *testing.T) {
	f := newFixture(t, defaultOptions())

	creates := 0
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:fail_fourth_client", func(tx *gorm.DB) {
		if tx.Statement.Table != "clients" {
			return
		}
		creates++
		if creates == 4 {
			_ = tx.AddError(errors.New("disk full"))
		}
	}))

	_, err := f.im.Import(context.Background(), csvRequest("name\nA\nB\nC\nD\nE\n", admin))
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeStorageError))

	assert.Empty(t, f.clients(t))
	assert.Empty(t, f.archived.keys)
	assert.Empty(t, f.events.events)
}

// ==================================================
// After commit
// ==================================================

func TestImport_ArchivesAndAudits(t *testing.T) {
	f := newFixture(t, defaultOptions())

	res, err := f.im.Import(context.Background(), csvRequest("name\nA\nB\n", admin))
	require.NoError(t, err)

	require.Len(t, f.archived.keys, 1)
	assert.Equal(t, f.archived.keys[0], res.ArchiveKey)
	assert.True(t, strings.HasPrefix(res.ArchiveKey, "imports/"))
	assert.True(t, strings.HasSuffix(res.ArchiveKey, "-clients.csv"))

	require.Len(t, f.events.events, 1)
	assert.Equal(t, audit.ActionClientsImported, f.events.events[0].Action)
	assert.Equal(t, "root", f.events.events[0].Actor)

	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.ClientsImported))
}

func TestImport_ArchiveFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, defaultOptions())
	f.archived.err = errors.New("bucket gone")

	res, err := f.im.Import(context.Background(), csvRequest("name\nA\n", admin))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Inserted)
	assert.Empty(t, res.ArchiveKey)
	assert.Len(t, f.events.events, 1)
}
