package console

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/model"
)

type fakeBackend struct {
	generateResult string
	generateErr    error
	generateCalls  int
	lastProvider   string
	lastPrompt     string

	createErr error
	created   []model.Document

	deleteErr error
	deleted   []uint

	uploadErr error

	listCalls int

	// observed mid-call, to check the in-progress marker and the
	// re-entrancy guard while a request is in flight.
	observeDuring func()

	nextID uint
}

func (f *fakeBackend) Generate(ctx context.Context, provider, prompt string) (string, error) {
	f.generateCalls++
	f.lastProvider = provider
	f.lastPrompt = prompt
	if f.observeDuring != nil {
		f.observeDuring()
	}
	return f.generateResult, f.generateErr
}

func (f *fakeBackend) CreateDocument(ctx context.Context, employee, title, content string) (*model.Document, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	document := model.Document{
		ID:        f.nextID,
		Employee:  employee,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now(),
	}
	f.created = append(f.created, document)
	return &document, nil
}

func (f *fakeBackend) ListDocuments(ctx context.Context) ([]model.Document, error) {
	f.listCalls++
	out := make([]model.Document, 0, len(f.created))
	for i := len(f.created) - 1; i >= 0; i-- {
		out = append(out, f.created[i])
	}
	return out, nil
}

func (f *fakeBackend) DeleteDocument(ctx context.Context, documentID uint) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, documentID)
	kept := f.created[:0]
	for _, d := range f.created {
		if d.ID != documentID {
			kept = append(kept, d)
		}
	}
	f.created = kept
	return nil
}

func (f *fakeBackend) UploadDocument(ctx context.Context, filename string, file io.Reader) (*model.Document, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	if _, err := io.ReadAll(file); err != nil {
		return nil, err
	}
	f.nextID++
	document := model.Document{
		ID:       f.nextID,
		Employee: "文件上传",
		Title:    filename,
		Content:  "路径: 1/1700000000000_" + filename,
	}
	f.created = append(f.created, document)
	return &document, nil
}

func TestGenerateRequiresPersonaAndPrompt(t *testing.T) {
	backend := &fakeBackend{}
	session := NewSession(backend)

	session.Prompt = "写一个测试计划"
	if err := session.Generate(context.Background()); !errors.Is(err, ErrMissingInput) {
		t.Errorf("no persona: got %v, want ErrMissingInput", err)
	}

	session.Prompt = ""
	if err := session.SelectPersona("AI测试员 🧪"); err != nil {
		t.Fatalf("select persona: %v", err)
	}
	if err := session.Generate(context.Background()); !errors.Is(err, ErrMissingInput) {
		t.Errorf("no prompt: got %v, want ErrMissingInput", err)
	}
	if backend.generateCalls != 0 {
		t.Errorf("expected no relay calls, got %d", backend.generateCalls)
	}
}

func TestGenerateComposesPersonaPrompt(t *testing.T) {
	backend := &fakeBackend{generateResult: "计划内容"}
	session := NewSession(backend)
	if err := session.SelectPersona("AI测试员 🧪"); err != nil {
		t.Fatalf("select persona: %v", err)
	}
	session.Prompt = "写一个测试计划"

	if err := session.Generate(context.Background()); err != nil {
		t.Fatalf("generate: %v", err)
	}

	want := "你是一位专业的AI测试员 🧪。请根据以下用户指令完成任务:\n写一个测试计划"
	if backend.lastPrompt != want {
		t.Errorf("composed prompt: got %q, want %q", backend.lastPrompt, want)
	}
	if backend.lastProvider != "openai" {
		t.Errorf("provider: got %q, want openai", backend.lastProvider)
	}
	if session.Output != "计划内容" {
		t.Errorf("output: got %q, want %q", session.Output, "计划内容")
	}
	if session.Submitting() {
		t.Error("submitting flag still set after completion")
	}
}

func TestGenerateInFlightShowsMarkerAndBlocksReentry(t *testing.T) {
	backend := &fakeBackend{generateResult: "ok"}
	session := NewSession(backend)
	if err := session.SelectPersona("AI程序员 👨‍💻"); err != nil {
		t.Fatalf("select persona: %v", err)
	}
	session.Prompt = "hello"

	backend.observeDuring = func() {
		if session.Output != LoadingMarker {
			t.Errorf("in-flight output: got %q, want %q", session.Output, LoadingMarker)
		}
		if err := session.Generate(context.Background()); !errors.Is(err, ErrBusy) {
			t.Errorf("re-entry: got %v, want ErrBusy", err)
		}
	}
	if err := session.Generate(context.Background()); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if backend.generateCalls != 1 {
		t.Errorf("relay calls: got %d, want 1", backend.generateCalls)
	}
}

func TestGenerateFailureSetsFailureText(t *testing.T) {
	backend := &fakeBackend{generateErr: errors.New("connection refused")}
	session := NewSession(backend)
	session.SetAuthenticated(true)
	if err := session.SelectPersona("AI文档员 ✍️"); err != nil {
		t.Fatalf("select persona: %v", err)
	}
	session.Prompt = "写文档"

	if err := session.Generate(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if session.Output != FailureText {
		t.Errorf("output: got %q, want %q", session.Output, FailureText)
	}
	if len(backend.created) != 0 {
		t.Errorf("expected no document on failure, got %d", len(backend.created))
	}
}

func TestGeneratePersistsWhenAuthenticated(t *testing.T) {
	backend := &fakeBackend{generateResult: "计划内容"}
	session := NewSession(backend)
	session.SetAuthenticated(true)
	if err := session.SelectPersona("AI测试员 🧪"); err != nil {
		t.Fatalf("select persona: %v", err)
	}
	longPrompt := strings.Repeat("测", 60)
	session.Prompt = longPrompt

	if err := session.Generate(context.Background()); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(backend.created) != 1 {
		t.Fatalf("created documents: got %d, want 1", len(backend.created))
	}
	document := backend.created[0]
	if document.Employee != "AI测试员 🧪" {
		t.Errorf("employee: got %q", document.Employee)
	}
	if want := strings.Repeat("测", 50); document.Title != want {
		t.Errorf("title: got %d runes, want 50", len([]rune(document.Title)))
	}
	if document.Content != "计划内容" {
		t.Errorf("content: got %q", document.Content)
	}
	if len(session.Documents) != 1 {
		t.Errorf("session list: got %d entries, want 1", len(session.Documents))
	}
}

func TestGenerateSkipsPersistenceWhenAnonymous(t *testing.T) {
	backend := &fakeBackend{generateResult: "ok"}
	session := NewSession(backend)
	if err := session.SelectPersona("AI市场专员 📈"); err != nil {
		t.Fatalf("select persona: %v", err)
	}
	session.Prompt = "写个口号"

	if err := session.Generate(context.Background()); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(backend.created) != 0 {
		t.Errorf("expected no documents, got %d", len(backend.created))
	}
	if backend.listCalls != 0 {
		t.Errorf("expected no list calls, got %d", backend.listCalls)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	backend := &fakeBackend{}
	session := NewSession(backend)
	session.SetAuthenticated(true)

	if err := session.DeleteDocument(context.Background(), 7, false); !errors.Is(err, ErrNotConfirmed) {
		t.Errorf("got %v, want ErrNotConfirmed", err)
	}
	if len(backend.deleted) != 0 {
		t.Errorf("expected no deletes, got %v", backend.deleted)
	}

	backend.created = []model.Document{{ID: 7, Title: "t"}}
	if err := session.DeleteDocument(context.Background(), 7, true); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(backend.deleted) != 1 || backend.deleted[0] != 7 {
		t.Errorf("deleted: got %v, want [7]", backend.deleted)
	}
	if len(session.Documents) != 0 {
		t.Errorf("session list: got %d entries, want 0", len(session.Documents))
	}
}

func TestUploadRefreshesList(t *testing.T) {
	backend := &fakeBackend{}
	session := NewSession(backend)
	session.SetAuthenticated(true)

	document, err := session.Upload(context.Background(), "spec.pdf", strings.NewReader("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(document.Content, "路径: ") {
		t.Errorf("content: got %q, want 路径: prefix", document.Content)
	}
	if len(session.Documents) != 1 {
		t.Fatalf("session list: got %d entries, want 1", len(session.Documents))
	}
	if session.Documents[0].Title != "spec.pdf" {
		t.Errorf("title: got %q, want spec.pdf", session.Documents[0].Title)
	}
}

func TestUploadRequiresSession(t *testing.T) {
	backend := &fakeBackend{}
	session := NewSession(backend)

	if _, err := session.Upload(context.Background(), "spec.pdf", strings.NewReader("x")); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("got %v, want ErrNotSignedIn", err)
	}
	if len(backend.created) != 0 {
		t.Errorf("expected no documents, got %d", len(backend.created))
	}
}

func TestUploadFailureCreatesNothing(t *testing.T) {
	backend := &fakeBackend{uploadErr: errors.New("bucket unavailable")}
	session := NewSession(backend)
	session.SetAuthenticated(true)

	if _, err := session.Upload(context.Background(), "spec.pdf", strings.NewReader("x")); err == nil {
		t.Fatal("expected error")
	}
	if len(backend.created) != 0 {
		t.Errorf("expected no documents, got %d", len(backend.created))
	}
}

func TestSelectProvider(t *testing.T) {
	session := NewSession(&fakeBackend{})
	if session.Provider != "openai" {
		t.Errorf("default provider: got %q, want openai", session.Provider)
	}
	if err := session.SelectProvider("gemini"); err != nil {
		t.Fatalf("select gemini: %v", err)
	}
	if err := session.SelectProvider("claude"); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("got %v, want ErrUnknownProvider", err)
	}
	if session.Provider != "gemini" {
		t.Errorf("provider: got %q, want gemini", session.Provider)
	}
}

func TestSelectPersonaRejectsUnknown(t *testing.T) {
	session := NewSession(&fakeBackend{})
	if err := session.SelectPersona("AI厨师 🍳"); !errors.Is(err, ErrUnknownPersona) {
		t.Errorf("got %v, want ErrUnknownPersona", err)
	}
}
