package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(document *model.Document) error {
	if err := r.db.Create(document).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

// ListByUserID returns the user's full document list, newest first.
// Callers replace their local list wholesale; there is no pagination.
func (r *DocumentRepository) ListByUserID(userID uint) ([]model.Document, error) {
	var documents []model.Document
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&documents).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return documents, nil
}

func (r *DocumentRepository) GetByIDAndUserID(documentID, userID uint) (*model.Document, error) {
	var document model.Document
	if err := r.db.Where("id = ? AND user_id = ?", documentID, userID).First(&document).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &document, nil
}

func (r *DocumentRepository) DeleteByIDAndUserID(documentID, userID uint) error {
	if err := r.db.Where("id = ? AND user_id = ?", documentID, userID).Delete(&model.Document{}).Error; err != nil {
		return fmt.Errorf("delete document failed: %w", err)
	}
	return nil
}
