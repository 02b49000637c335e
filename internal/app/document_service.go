package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/model"
	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/pkg/pdfextract"
	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/repository"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrStorageUpload    = errors.New("storage upload failed")
)

const (
	// PathMarkerPrefix marks a Document whose content is a stored-file
	// path rather than generated text.
	PathMarkerPrefix = "路径:"

	// TitleMaxRunes caps generated-document titles at the first 50
	// characters of the raw prompt.
	TitleMaxRunes = 50

	uploadEmployee   = "文件上传"
	previewMaxRunes  = 200
)

// ObjectStore persists raw uploaded files keyed by path.
type ObjectStore interface {
	Upload(ctx context.Context, path string, data io.Reader) error
}

// DocumentCache keeps per-user document lists; nil disables caching.
type DocumentCache interface {
	GetList(ctx context.Context, userID uint) ([]model.Document, bool, error)
	SetList(ctx context.Context, userID uint, documents []model.Document) error
	Invalidate(ctx context.Context, userID uint) error
}

type DocumentService struct {
	documentRepo *repository.DocumentRepository
	cache        DocumentCache
	store        ObjectStore
}

type CreateDocumentInput struct {
	UserID   uint
	Employee string
	Title    string
	Content  string
}

type UploadInput struct {
	UserID   uint
	Filename string
	Data     []byte
}

func NewDocumentService(documentRepo *repository.DocumentRepository, cache DocumentCache, store ObjectStore) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		cache:        cache,
		store:        store,
	}
}

func (s *DocumentService) Create(ctx context.Context, input CreateDocumentInput) (*model.Document, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}
	employee := strings.TrimSpace(input.Employee)
	title := strings.TrimSpace(input.Title)
	content := input.Content
	if employee == "" || title == "" || content == "" {
		return nil, ErrInvalidInput
	}

	document := &model.Document{
		UserID:   input.UserID,
		Employee: employee,
		Title:    TruncateTitle(title),
		Content:  content,
	}
	if err := s.documentRepo.Create(document); err != nil {
		return nil, err
	}
	s.invalidate(ctx, input.UserID)
	return document, nil
}

func (s *DocumentService) List(ctx context.Context, userID uint) ([]model.Document, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	if s.cache != nil {
		if cached, hit, err := s.cache.GetList(ctx, userID); err == nil && hit {
			return cached, nil
		}
	}

	documents, err := s.documentRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetList(ctx, userID, documents); err != nil {
			log.Printf("cache document list failed: %v", err)
		}
	}
	return documents, nil
}

func (s *DocumentService) Delete(ctx context.Context, userID, documentID uint) error {
	if userID == 0 || documentID == 0 {
		return ErrInvalidInput
	}

	document, err := s.documentRepo.GetByIDAndUserID(documentID, userID)
	if err != nil {
		return err
	}
	if document == nil {
		return ErrDocumentNotFound
	}
	if err := s.documentRepo.DeleteByIDAndUserID(documentID, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// Upload stores the raw file under {userID}/{unix-millis}_{filename} and
// records a Document whose content is the path marker. Nothing is recorded
// when the store rejects the upload.
func (s *DocumentService) Upload(ctx context.Context, input UploadInput) (*model.Document, error) {
	if input.UserID == 0 || strings.TrimSpace(input.Filename) == "" || len(input.Data) == 0 {
		return nil, ErrInvalidInput
	}

	filename := path.Base(strings.TrimSpace(input.Filename))
	objectPath := fmt.Sprintf("%d/%d_%s", input.UserID, time.Now().UnixMilli(), filename)

	if err := s.store.Upload(ctx, objectPath, bytes.NewReader(input.Data)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUpload, err)
	}

	preview := ""
	if strings.EqualFold(path.Ext(filename), ".pdf") {
		extracted, err := pdfextract.ExtractPreview(input.Data, previewMaxRunes)
		if err != nil {
			log.Printf("extract pdf preview failed: %v", err)
		} else {
			preview = extracted
		}
	}

	document := &model.Document{
		UserID:   input.UserID,
		Employee: uploadEmployee,
		Title:    filename,
		Content:  PathMarkerPrefix + objectPath,
		Preview:  preview,
	}
	if err := s.documentRepo.Create(document); err != nil {
		return nil, err
	}
	s.invalidate(ctx, input.UserID)
	return document, nil
}

func (s *DocumentService) invalidate(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		log.Printf("invalidate document list cache failed: %v", err)
	}
}

// TruncateTitle keeps the first TitleMaxRunes characters of a raw prompt.
func TruncateTitle(raw string) string {
	runes := []rune(strings.TrimSpace(raw))
	if len(runes) <= TitleMaxRunes {
		return string(runes)
	}
	return string(runes[:TitleMaxRunes])
}
