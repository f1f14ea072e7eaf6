package repository

import (
	"context"
	"database/sql"

	"github.com/avdeev/script-access/internal/database"
	"github.com/avdeev/script-access/internal/model"
)

// SuggestionRepo owns all SQL against the 'suggestions' table.
type SuggestionRepo struct{ Store *database.Store }

func NewSuggestionRepo(s *database.Store) *SuggestionRepo { return &SuggestionRepo{Store: s} }

// Insert stores a new suggestion.
func (r *SuggestionRepo) Insert(ctx context.Context, userID int64, nickname, script, text string) error {
	ok := r.Store.Exec(ctx, "suggestion save",
		"INSERT INTO suggestions (tg_user_id, nickname, script_name, suggestion_text) VALUES (?, ?, ?, ?)",
		userID, nickname, script, text)
	if !ok {
		return ErrUnavailable
	}
	return nil
}

// Get fetches one suggestion by id.
func (r *SuggestionRepo) Get(ctx context.Context, id int64) (model.Suggestion, error) {
	var s model.Suggestion
	found, ok := r.Store.FetchOne(ctx, "suggestion fetch",
		"SELECT id, tg_user_id, nickname, script_name, suggestion_text, created_at FROM suggestions WHERE id = ? LIMIT 1",
		[]any{&s.ID, &s.UserID, &s.Nickname, &s.Script, &s.Text, &s.CreatedAt}, id)
	if !ok {
		return s, ErrUnavailable
	}
	if !found {
		return s, ErrNotFound
	}
	return s, nil
}

// List returns all suggestions, newest first.
func (r *SuggestionRepo) List(ctx context.Context) ([]model.Suggestion, error) {
	var out []model.Suggestion
	ok := r.Store.FetchAll(ctx, "suggestion list fetch",
		"SELECT id, tg_user_id, nickname, script_name, suggestion_text, created_at FROM suggestions ORDER BY created_at DESC",
		func() { out = out[:0] },
		func(rows *sql.Rows) error {
			var s model.Suggestion
			if err := rows.Scan(&s.ID, &s.UserID, &s.Nickname, &s.Script, &s.Text, &s.CreatedAt); err != nil {
				return err
			}
			out = append(out, s)
			return nil
		})
	if !ok {
		return nil, ErrUnavailable
	}
	return out, nil
}

// Delete removes a suggestion by id.
func (r *SuggestionRepo) Delete(ctx context.Context, id int64) error {
	ok := r.Store.Exec(ctx, "suggestion delete",
		"DELETE FROM suggestions WHERE id = ?", id)
	if !ok {
		return ErrUnavailable
	}
	return nil
}
