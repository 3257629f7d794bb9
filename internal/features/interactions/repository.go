// Package interactions: repository.go выполняет операции с таблицами interactions и tags.
package interactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/devflow-bot/internal/common"
)

// Repository работает с таблицами interactions и tags.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий взаимодействий.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const interactionColumns = `id, user_id, action, question_id, answer_id, tag_ids, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanInteraction(row scanner) (*Interaction, error) {
	var i Interaction
	if err := row.Scan(
		&i.ID, &i.UserID, &i.Action, &i.QuestionID, &i.AnswerID, &i.TagIDs, &i.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &i, nil
}

// Create сохраняет взаимодействие и заполняет ID.
// Если CreatedAt пустой, ставится текущее время.
func (r *Repository) Create(ctx context.Context, i *Interaction) error {
	err := r.insert(ctx, i, "")
	if err != nil {
		return fmt.Errorf("ошибка сохранения взаимодействия: %w", err)
	}
	return nil
}

// CreateOnce сохраняет голос или просмотр, если такого ещё нет.
// Уникальность держат индексы uniq_interactions_question_once и
// uniq_interactions_answer_once, поэтому два одновременных запроса
// не создадут две записи. При конфликте возвращает common.ErrAlreadyVoted.
func (r *Repository) CreateOnce(ctx context.Context, i *Interaction) error {
	err := r.insert(ctx, i, "ON CONFLICT DO NOTHING")
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrAlreadyVoted
		}
		return fmt.Errorf("ошибка сохранения взаимодействия: %w", err)
	}
	return nil
}

func (r *Repository) insert(ctx context.Context, i *Interaction, onConflict string) error {
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now().UTC()
	}
	tagIDs := i.TagIDs
	if tagIDs == nil {
		tagIDs = []int64{}
	}

	query := `
		INSERT INTO interactions (user_id, action, question_id, answer_id, tag_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		` + onConflict + `
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		i.UserID, i.Action, i.QuestionID, i.AnswerID, tagIDs, i.CreatedAt,
	).Scan(&i.ID)
	if err != nil {
		return err
	}
	i.TagIDs = tagIDs
	return nil
}

// ListByUser возвращает последние действия пользователя, новые первыми.
func (r *Repository) ListByUser(ctx context.Context, userID int64, limit int) ([]*Interaction, error) {
	query := `
		SELECT ` + interactionColumns + `
		FROM interactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения активности: %w", err)
	}
	defer rows.Close()

	var out []*Interaction
	for rows.Next() {
		i, err := scanInteraction(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}

// FindQuestion возвращает запись ask_question для сообщения-вопроса.
// Если такого вопроса нет: common.ErrInteractionNotFound.
func (r *Repository) FindQuestion(ctx context.Context, questionID int64) (*Interaction, error) {
	query := `
		SELECT ` + interactionColumns + `
		FROM interactions
		WHERE action = $1 AND question_id = $2
		ORDER BY id
		LIMIT 1
	`
	return r.queryOne(ctx, query, ActionAskQuestion, questionID)
}

// FindAnswer возвращает запись answer для сообщения-ответа.
func (r *Repository) FindAnswer(ctx context.Context, answerID int64) (*Interaction, error) {
	query := `
		SELECT ` + interactionColumns + `
		FROM interactions
		WHERE action = $1 AND answer_id = $2
		ORDER BY id
		LIMIT 1
	`
	return r.queryOne(ctx, query, ActionAnswer, answerID)
}

// FindUserAction ищет действие пользователя над конкретным вопросом/ответом.
// nil в questionID/answerID означает «ссылка отсутствует».
func (r *Repository) FindUserAction(ctx context.Context, userID int64, action string, questionID, answerID *int64) (*Interaction, error) {
	query := `
		SELECT ` + interactionColumns + `
		FROM interactions
		WHERE user_id = $1 AND action = $2
		  AND question_id IS NOT DISTINCT FROM $3
		  AND answer_id IS NOT DISTINCT FROM $4
		ORDER BY id
		LIMIT 1
	`
	return r.queryOne(ctx, query, userID, action, questionID, answerID)
}

func (r *Repository) queryOne(ctx context.Context, query string, args ...any) (*Interaction, error) {
	i, err := scanInteraction(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrInteractionNotFound
		}
		return nil, fmt.Errorf("ошибка чтения взаимодействия: %w", err)
	}
	return i, nil
}

// Delete удаляет взаимодействие по ID.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM interactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления взаимодействия: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrInteractionNotFound
	}
	return nil
}

// EnsureTags создаёт недостающие теги и возвращает ID всех переданных.
func (r *Repository) EnsureTags(ctx context.Context, names []string) ([]int64, error) {
	if len(names) == 0 {
		return nil, nil
	}

	// DO UPDATE нужен, чтобы RETURNING вернул и уже существующие строки
	query := `
		INSERT INTO tags (name)
		SELECT unnest($1::text[])
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`
	rows, err := r.db.Query(ctx, query, names)
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения тегов: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения тегов: %w", err)
	}
	return ids, nil
}

// TagNames возвращает имена тегов по их ID.
func (r *Repository) TagNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, `SELECT id, name FROM tags WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения тегов: %w", err)
	}
	tags, err := pgx.CollectRows(rows, pgx.RowToStructByName[Tag])
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения тегов: %w", err)
	}
	for _, t := range tags {
		out[t.ID] = t.Name
	}
	return out, nil
}
