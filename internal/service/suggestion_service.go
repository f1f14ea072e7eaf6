package service

import (
	"context"
	"fmt"
	"log"

	"github.com/avdeev/script-access/internal/capability"
	"github.com/avdeev/script-access/internal/model"
)

// SuggestionService takes improvement suggestions from users with an
// active grant and keeps them for the admin to read.
type SuggestionService struct {
	suggestions SuggestionStore
	access      *AccessService
	notify      Notifier
}

func NewSuggestionService(suggestions SuggestionStore, access *AccessService, notify Notifier) *SuggestionService {
	return &SuggestionService{suggestions: suggestions, access: access, notify: notify}
}

// Submit stores a suggestion.  Only users holding an active grant may
// submit; everyone else gets ErrNoAccess.
func (s *SuggestionService) Submit(ctx context.Context, userID int64, script, text string) error {
	if !capability.IsKnown(script) {
		return ErrUnknownCapability
	}
	if len(text) < minDescriptionLen {
		return ErrShortDescription
	}
	nickname, err := s.access.ApprovedNickname(ctx, userID)
	if err != nil {
		return err
	}
	if nickname == "" {
		return ErrNoAccess
	}
	if err := s.suggestions.Insert(ctx, userID, nickname, script, text); err != nil {
		return err
	}
	content := fmt.Sprintf("suggestion from %s (%d) for %s: %s", nickname, userID, script, text)
	if err := s.notify.NotifyAdmin(ctx, "new_suggestion", content, ""); err != nil {
		log.Printf("suggestion: notifying admin about %d: %v", userID, err)
	}
	return nil
}

// List returns all stored suggestions, newest first.
func (s *SuggestionService) List(ctx context.Context) ([]model.Suggestion, error) {
	return s.suggestions.List(ctx)
}

// Get returns one suggestion by id.
func (s *SuggestionService) Get(ctx context.Context, id int64) (model.Suggestion, error) {
	return s.suggestions.Get(ctx, id)
}

// Delete removes a handled suggestion.
func (s *SuggestionService) Delete(ctx context.Context, id int64) error {
	return s.suggestions.Delete(ctx, id)
}
