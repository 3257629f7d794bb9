// Package badges: repository.go считает критерии по таблице interactions
// и хранит последние подсчитанные бейджи в user_badges.
package badges

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/devflow-bot/internal/features/interactions"
)

// Repository работает с таблицами interactions (чтение) и user_badges.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий бейджей.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Criteria возвращает счётчики активности пользователя по всем категориям.
//
// Голоса и просмотры считаются по чужим действиям над вопросами
// и ответами, которые написал userID.
func (r *Repository) Criteria(ctx context.Context, userID int64) ([]Criterion, error) {
	query := `
		WITH own_questions AS (
			SELECT question_id FROM interactions
			WHERE user_id = $1 AND action = $2 AND question_id IS NOT NULL
		),
		own_answers AS (
			SELECT answer_id FROM interactions
			WHERE user_id = $1 AND action = $3 AND answer_id IS NOT NULL
		)
		SELECT
			(SELECT COUNT(*) FROM own_questions),
			(SELECT COUNT(*) FROM own_answers),
			(SELECT COUNT(*) FROM interactions
			  WHERE action = $4 AND question_id IN (SELECT question_id FROM own_questions)),
			(SELECT COUNT(*) FROM interactions
			  WHERE action = $5 AND answer_id IN (SELECT answer_id FROM own_answers)),
			(SELECT COUNT(*) FROM interactions
			  WHERE action = $6 AND question_id IN (SELECT question_id FROM own_questions))
	`
	var questions, answers, questionUpvotes, answerUpvotes, views int64
	err := r.db.QueryRow(ctx, query, userID,
		interactions.ActionAskQuestion,
		interactions.ActionAnswer,
		interactions.ActionUpvoteQuestion,
		interactions.ActionUpvoteAnswer,
		interactions.ActionViewQuestion,
	).Scan(&questions, &answers, &questionUpvotes, &answerUpvotes, &views)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта активности (user_id=%d): %w", userID, err)
	}

	return []Criterion{
		{Category: CategoryQuestionCount, Count: questions},
		{Category: CategoryAnswerCount, Count: answers},
		{Category: CategoryQuestionUpvotes, Count: questionUpvotes},
		{Category: CategoryAnswerUpvotes, Count: answerUpvotes},
		{Category: CategoryTotalViews, Count: views},
	}, nil
}

// GetTally возвращает сохранённые бейджи или нули, если записи нет.
func (r *Repository) GetTally(ctx context.Context, userID int64) (Tally, error) {
	query := `SELECT gold, silver, bronze FROM user_badges WHERE user_id = $1`

	var t Tally
	err := r.db.QueryRow(ctx, query, userID).Scan(&t.Gold, &t.Silver, &t.Bronze)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tally{}, nil
		}
		return Tally{}, fmt.Errorf("ошибка чтения бейджей (user_id=%d): %w", userID, err)
	}
	return t, nil
}

// SaveTally сохраняет бейджи пользователя.
func (r *Repository) SaveTally(ctx context.Context, userID int64, t Tally) error {
	query := `
		INSERT INTO user_badges (user_id, gold, silver, bronze, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET gold = EXCLUDED.gold, silver = EXCLUDED.silver, bronze = EXCLUDED.bronze,
		    updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, userID, t.Gold, t.Silver, t.Bronze); err != nil {
		return fmt.Errorf("ошибка сохранения бейджей (user_id=%d): %w", userID, err)
	}
	return nil
}

// ActiveUsers возвращает всех, у кого есть хотя бы одно взаимодействие.
func (r *Repository) ActiveUsers(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT user_id FROM interactions ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения активных пользователей: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения пользователей: %w", err)
	}
	return ids, nil
}
