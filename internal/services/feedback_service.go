package services

import (
	"context"
	"errors"

	"flavorfix/internal/apperrors"
	"flavorfix/internal/models"
	"flavorfix/internal/repositories"
	"flavorfix/internal/validation"
)

// FeedbackInput is a customer feedback submission.
type FeedbackInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Rating   int    `json:"rating"`
	Category string `json:"category"`
	Message  string `json:"message"`
	OrderID  string `json:"orderId"`
}

// FeedbackService stores customer feedback and its triage state.
type FeedbackService struct {
	feedbackRepo repositories.FeedbackRepository
	orderRepo    repositories.OrderRepository
}

func NewFeedbackService(feedbackRepo repositories.FeedbackRepository, orderRepo repositories.OrderRepository) *FeedbackService {
	return &FeedbackService{feedbackRepo: feedbackRepo, orderRepo: orderRepo}
}

// Submit records feedback. user is nil for anonymous submissions; when
// present, its name fills an empty Name.
func (s *FeedbackService) Submit(ctx context.Context, user *models.User, in FeedbackInput) (*models.Feedback, error) {
	fb := &models.Feedback{
		Name:     in.Name,
		Email:    in.Email,
		Rating:   in.Rating,
		Category: in.Category,
		Message:  in.Message,
		Status:   models.FeedbackPending,
	}
	if fb.Category == "" {
		fb.Category = "general"
	}
	if user != nil {
		id := user.ID
		fb.UserID = &id
		if fb.Name == "" {
			fb.Name = user.Name
		}
		if fb.Email == "" {
			fb.Email = user.Email
		}
	}
	if err := validation.Struct(fb); err != nil {
		return nil, err
	}

	if in.OrderID != "" {
		if _, err := s.orderRepo.GetByID(ctx, in.OrderID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.Validation("orderId does not reference an existing order")
			}
			return nil, err
		}
		orderID := in.OrderID
		fb.OrderID = &orderID
	}

	if err := s.feedbackRepo.Create(ctx, fb); err != nil {
		return nil, err
	}
	return fb, nil
}

// List returns all feedback, newest first.
func (s *FeedbackService) List(ctx context.Context) ([]models.Feedback, error) {
	items, err := s.feedbackRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Feedback{}
	}
	return items, nil
}

// UpdateStatus moves feedback through pending, reviewed and resolved.
func (s *FeedbackService) UpdateStatus(ctx context.Context, id, status string) (*models.Feedback, error) {
	switch status {
	case models.FeedbackPending, models.FeedbackReviewed, models.FeedbackResolved:
	default:
		return nil, apperrors.Validation("status must be one of [pending reviewed resolved]")
	}
	fb, err := s.feedbackRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fb.Status = status
	if err := s.feedbackRepo.Save(ctx, fb); err != nil {
		return nil, err
	}
	return fb, nil
}
