package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/crewdigital/promptgate/internal/db"
	"github.com/crewdigital/promptgate/internal/events"
	"github.com/crewdigital/promptgate/internal/llm"
	"github.com/crewdigital/promptgate/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeGenerator returns a canned result or error and records calls.
type fakeGenerator struct {
	mu     sync.Mutex
	result *llm.Result
	err    error
	calls  []fakeCall
}

type fakeCall struct {
	Prompt string
	Model  string
	Opts   llm.Options
}

func (f *fakeGenerator) Generate(_ context.Context, prompt, model string, opts llm.Options) (*llm.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{Prompt: prompt, Model: model, Opts: opts})
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// testSetup creates a temp database with the default roles seeded and
// returns a PromptService over a fake generator.
func testSetup(t *testing.T, gen llm.Generator) (*PromptService, *gorm.DB, *events.Recorder) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open db")
	require.NoError(t, db.Migrate(database), "migrate")

	rec := &events.Recorder{}
	return NewPromptService(database, gen, rec, "llama3"), database, rec
}

// createTestUser inserts an account and returns its ID.
func createTestUser(t *testing.T, database *gorm.DB, email string) uint {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "x", IsActive: true}
	require.NoError(t, database.Create(&user).Error, "create user")
	return user.ID
}

func okGenerator(text string, latency int64) *fakeGenerator {
	return &fakeGenerator{result: &llm.Result{
		OutputText: text,
		LatencyMs:  latency,
		Metadata:   map[string]interface{}{},
	}}
}

// --- Create ---

func TestCreate_PersistsGeneratedResult(t *testing.T) {
	gen := okGenerator("4", 50)
	svc, database, rec := testSetup(t, gen)
	uid := createTestUser(t, database, "a@x.com")

	p, err := svc.Create(context.Background(), CreatePromptRequest{PromptText: "2+2=?", Model: "llama3"}, uid)
	require.NoError(t, err)

	assert.NotZero(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	var stored models.Prompt
	require.NoError(t, database.First(&stored, p.ID).Error)
	require.NotNil(t, stored.ResponseText)
	assert.Equal(t, "4", *stored.ResponseText)
	require.NotNil(t, stored.ProcessingTimeMs)
	assert.Equal(t, int64(50), *stored.ProcessingTimeMs)
	require.NotNil(t, stored.UserID)
	assert.Equal(t, uid, *stored.UserID)
	assert.Equal(t, "llama3", stored.ModelName)

	require.Len(t, gen.calls, 1)
	assert.Equal(t, "2+2=?", gen.calls[0].Prompt)

	var audits int64
	database.Model(&models.AuditLog{}).Where("action = ? AND resource = ?", "create_prompt", "prompt:1").Count(&audits)
	assert.Equal(t, int64(1), audits)

	require.Len(t, rec.Events, 1)
	assert.Equal(t, p.ID, rec.Events[0].PromptID)
}

func TestCreate_UpdatedAtIsNullUntilModified(t *testing.T) {
	svc, database, _ := testSetup(t, okGenerator("4", 5))
	uid := createTestUser(t, database, "a@x.com")

	prompt, err := svc.Create(context.Background(), CreatePromptRequest{PromptText: "2+2"}, uid)
	require.NoError(t, err)
	assert.Nil(t, prompt.UpdatedAt)

	var stored models.Prompt
	require.NoError(t, database.First(&stored, prompt.ID).Error)
	assert.Nil(t, stored.UpdatedAt)

	require.NoError(t, database.Model(&stored).Update("response_text", "four").Error)
	require.NoError(t, database.First(&stored, prompt.ID).Error)
	require.NotNil(t, stored.UpdatedAt)
	assert.False(t, stored.UpdatedAt.Before(stored.CreatedAt))
}

func TestCreate_DefaultModel(t *testing.T) {
	gen := okGenerator("hi", 1)
	svc, database, _ := testSetup(t, gen)
	uid := createTestUser(t, database, "a@x.com")

	p, err := svc.Create(context.Background(), CreatePromptRequest{PromptText: "hello"}, uid)
	require.NoError(t, err)
	assert.Equal(t, "llama3", p.ModelName)
	assert.Equal(t, "llama3", gen.calls[0].Model)
}

func TestCreate_CallerMetadataWins(t *testing.T) {
	gen := &fakeGenerator{result: &llm.Result{
		OutputText: "ok",
		Metadata: map[string]interface{}{
			"raw_response": map[string]interface{}{"response": "ok"},
			"type":         "generation",
		},
	}}
	svc, database, _ := testSetup(t, gen)
	uid := createTestUser(t, database, "a@x.com")

	p, err := svc.Create(context.Background(), CreatePromptRequest{
		PromptText: "x",
		Metadata:   map[string]interface{}{"type": "invoice_extraction", "source": "cli"},
	}, uid)
	require.NoError(t, err)

	var stored models.Prompt
	require.NoError(t, database.First(&stored, p.ID).Error)
	assert.Equal(t, "invoice_extraction", stored.MetaData["type"])
	assert.Equal(t, "cli", stored.MetaData["source"])
	assert.Contains(t, stored.MetaData, "raw_response")
}

func TestCreate_GeneratorFailureLeavesNoRecord(t *testing.T) {
	gen := &fakeGenerator{err: &llm.UpstreamError{StatusCode: 500, Body: "boom"}}
	svc, database, rec := testSetup(t, gen)
	uid := createTestUser(t, database, "a@x.com")

	_, err := svc.Create(context.Background(), CreatePromptRequest{PromptText: "2+2=?"}, uid)
	require.Error(t, err)

	var upErr *llm.UpstreamError
	assert.True(t, errors.As(err, &upErr))

	var count int64
	database.Model(&models.Prompt{}).Where("prompt_text = ? AND user_id = ?", "2+2=?", uid).Count(&count)
	assert.Zero(t, count)
	database.Model(&models.AuditLog{}).Count(&count)
	assert.Zero(t, count)
	assert.Empty(t, rec.Events)
}

func TestCreate_PersistenceFailureIsFatal(t *testing.T) {
	gen := okGenerator("4", 5)
	svc, database, rec := testSetup(t, gen)
	uid := createTestUser(t, database, "a@x.com")

	require.NoError(t, database.Migrator().DropTable(&models.AuditLog{}))

	_, err := svc.Create(context.Background(), CreatePromptRequest{PromptText: "2+2=?"}, uid)
	require.Error(t, err)

	var count int64
	database.Model(&models.Prompt{}).Count(&count)
	assert.Zero(t, count, "prompt insert must roll back with the audit entry")
	assert.Empty(t, rec.Events)
}

func TestCreate_EmptyPrompt(t *testing.T) {
	gen := okGenerator("x", 1)
	svc, database, _ := testSetup(t, gen)
	uid := createTestUser(t, database, "a@x.com")

	_, err := svc.Create(context.Background(), CreatePromptRequest{PromptText: "   "}, uid)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Empty(t, gen.calls)
}

// --- List / Get ---

func TestList_ScopedToOwnerNewestFirst(t *testing.T) {
	gen := okGenerator("ok", 1)
	svc, database, _ := testSetup(t, gen)
	alice := createTestUser(t, database, "alice@x.com")
	bob := createTestUser(t, database, "bob@x.com")

	for _, text := range []string{"a1", "a2", "a3"} {
		_, err := svc.Create(context.Background(), CreatePromptRequest{PromptText: text}, alice)
		require.NoError(t, err)
	}
	_, err := svc.Create(context.Background(), CreatePromptRequest{PromptText: "b1"}, bob)
	require.NoError(t, err)

	prompts, err := svc.List(bob, Page{Offset: 0, Limit: 20})
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Equal(t, "b1", prompts[0].PromptText)

	prompts, err = svc.List(alice, Page{})
	require.NoError(t, err)
	require.Len(t, prompts, 3)
	assert.Equal(t, []string{"a3", "a2", "a1"}, []string{prompts[0].PromptText, prompts[1].PromptText, prompts[2].PromptText})
	for _, p := range prompts {
		assert.Equal(t, alice, *p.UserID)
	}

	prompts, err = svc.List(alice, Page{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Equal(t, "a2", prompts[0].PromptText)
}

func TestList_InvalidPage(t *testing.T) {
	svc, _, _ := testSetup(t, okGenerator("ok", 1))

	_, err := svc.List(1, Page{Offset: -1})
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestGet_OwnershipIsIndistinguishableFromMissing(t *testing.T) {
	svc, database, _ := testSetup(t, okGenerator("ok", 1))
	alice := createTestUser(t, database, "alice@x.com")
	bob := createTestUser(t, database, "bob@x.com")

	p, err := svc.Create(context.Background(), CreatePromptRequest{PromptText: "secret"}, alice)
	require.NoError(t, err)

	got, err := svc.Get(p.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "secret", got.PromptText)

	_, err = svc.Get(p.ID, bob)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(9999, alice)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAll(t *testing.T) {
	svc, database, _ := testSetup(t, okGenerator("ok", 1))
	alice := createTestUser(t, database, "alice@x.com")
	bob := createTestUser(t, database, "bob@x.com")

	_, err := svc.Create(context.Background(), CreatePromptRequest{PromptText: "a1"}, alice)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreatePromptRequest{PromptText: "b1"}, bob)
	require.NoError(t, err)

	prompts, err := svc.ListAll(Page{})
	require.NoError(t, err)
	require.Len(t, prompts, 2)
	assert.Equal(t, "b1", prompts[0].PromptText)
	assert.Equal(t, "a1", prompts[1].PromptText)
}

// --- Accounts ---

func TestListAccounts(t *testing.T) {
	_, database, _ := testSetup(t, okGenerator("ok", 1))
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		createTestUser(t, database, email)
	}

	svc := NewAccountService(database)

	users, err := svc.ListAccounts(Page{})
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "a@x.com", users[0].Email)

	users, err = svc.ListAccounts(Page{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "b@x.com", users[0].Email)
}

func TestPageNormalize(t *testing.T) {
	p, err := Page{}.normalize(20)
	require.NoError(t, err)
	assert.Equal(t, 20, p.Limit)

	p, err = Page{Limit: 5000}.normalize(20)
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, p.Limit)

	_, err = Page{Limit: -1}.normalize(20)
	assert.Error(t, err)
}
