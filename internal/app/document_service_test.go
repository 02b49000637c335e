package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/model"
	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/repository"
)

type fakeObjectStore struct {
	uploads map[string][]byte
	err     error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{uploads: map[string][]byte{}}
}

func (s *fakeObjectStore) Upload(ctx context.Context, path string, data io.Reader) error {
	if s.err != nil {
		return s.err
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.uploads[path] = b
	return nil
}

func newDocumentTestService(t *testing.T, store ObjectStore) *DocumentService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Document{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewDocumentService(repository.NewDocumentRepository(db), nil, store)
}

func TestDocumentCreateTruncatesTitle(t *testing.T) {
	svc := newDocumentTestService(t, newFakeObjectStore())

	longPrompt := strings.Repeat("测", 80)
	doc, err := svc.Create(context.Background(), CreateDocumentInput{
		UserID:   1,
		Employee: "AI文档员 ✍️",
		Title:    longPrompt,
		Content:  "generated text",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := len([]rune(doc.Title)); got != TitleMaxRunes {
		t.Errorf("title length: got %d runes, want %d", got, TitleMaxRunes)
	}
}

func TestDocumentCreateRejectsEmptyFields(t *testing.T) {
	svc := newDocumentTestService(t, newFakeObjectStore())

	_, err := svc.Create(context.Background(), CreateDocumentInput{UserID: 1, Employee: "AI程序员 👨‍💻"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDocumentUploadCreatesPathMarker(t *testing.T) {
	store := newFakeObjectStore()
	svc := newDocumentTestService(t, store)

	doc, err := svc.Upload(context.Background(), UploadInput{
		UserID:   3,
		Filename: "spec.pdf",
		Data:     []byte("%PDF-stub"),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if doc.Title != "spec.pdf" {
		t.Errorf("title: got %q, want %q", doc.Title, "spec.pdf")
	}
	if !strings.HasPrefix(doc.Content, PathMarkerPrefix) {
		t.Errorf("content %q missing path marker %q", doc.Content, PathMarkerPrefix)
	}
	storedPath := strings.TrimPrefix(doc.Content, PathMarkerPrefix)
	if !strings.HasPrefix(storedPath, "3/") || !strings.HasSuffix(storedPath, "_spec.pdf") {
		t.Errorf("object path %q not namespaced by user and timestamp", storedPath)
	}
	if _, ok := store.uploads[storedPath]; !ok {
		t.Errorf("no object stored at %q", storedPath)
	}

	list, err := svc.List(context.Background(), 3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Title != "spec.pdf" {
		t.Fatalf("expected exactly the uploaded document in the list, got %+v", list)
	}
}

func TestDocumentUploadFailureCreatesNothing(t *testing.T) {
	store := newFakeObjectStore()
	store.err = errors.New("bucket unavailable")
	svc := newDocumentTestService(t, store)

	_, err := svc.Upload(context.Background(), UploadInput{
		UserID:   3,
		Filename: "spec.pdf",
		Data:     []byte("%PDF-stub"),
	})
	if !errors.Is(err, ErrStorageUpload) {
		t.Fatalf("expected ErrStorageUpload, got %v", err)
	}

	list, err := svc.List(context.Background(), 3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no documents after failed upload, got %d", len(list))
	}
}

func TestDocumentDeleteNotFound(t *testing.T) {
	svc := newDocumentTestService(t, newFakeObjectStore())

	err := svc.Delete(context.Background(), 1, 99)
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestDocumentDeleteThenList(t *testing.T) {
	svc := newDocumentTestService(t, newFakeObjectStore())

	doc, err := svc.Create(context.Background(), CreateDocumentInput{
		UserID:   1,
		Employee: "AI测试员 🧪",
		Title:    "计划",
		Content:  "text",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(context.Background(), 1, doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	list, err := svc.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list after delete, got %d", len(list))
	}
}
