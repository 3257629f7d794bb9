// Package interactions хранит действия участников: вопросы, ответы, голоса, просмотры.
// models.go описывает запись взаимодействия и её проверку.
package interactions

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Метки действий
const (
	ActionAskQuestion    = "ask_question"
	ActionAnswer         = "answer"
	ActionUpvoteQuestion = "upvote_question"
	ActionUpvoteAnswer   = "upvote_answer"
	ActionViewQuestion   = "view_question"
)

// Interaction описывает одно действие пользователя.
// Вопросы и ответы живут в чате сообщества, поэтому QuestionID и AnswerID
// хранят ID сообщений Telegram.
type Interaction struct {
	ID         int64     `db:"id"`
	UserID     int64     `db:"user_id" validate:"required"` // Кто сделал действие
	Action     string    `db:"action" validate:"required"`
	QuestionID *int64    `db:"question_id"`                 // Вопрос (может быть nil)
	AnswerID   *int64    `db:"answer_id"`                   // Ответ (может быть nil)
	TagIDs     []int64   `db:"tag_ids"`                     // Теги вопроса
	CreatedAt  time.Time `db:"created_at"`                  // Пустое значение означает «сейчас»
}

// Tag описывает тег вопроса (#go, #postgres).
type Tag struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// ActivityItem дополняет взаимодействие именами тегов для вывода в чат.
type ActivityItem struct {
	*Interaction
	Tags []string
}

var validate = validator.New()

// Validate проверяет обязательные поля: пользователь и действие.
func (i *Interaction) Validate() error {
	err := validate.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		msgs := make([]string, 0, len(ve))
		for _, e := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed validation: %s", e.Field(), e.Tag()))
		}
		return fmt.Errorf("invalid interaction: %s", strings.Join(msgs, "; "))
	}
	return fmt.Errorf("validation failed: %w", err)
}

// Describe возвращает короткое описание действия для ленты активности.
func (i *Interaction) Describe() string {
	switch i.Action {
	case ActionAskQuestion:
		return "asked a question"
	case ActionAnswer:
		return "answered a question"
	case ActionUpvoteQuestion:
		return "upvoted a question"
	case ActionUpvoteAnswer:
		return "upvoted an answer"
	case ActionViewQuestion:
		return "viewed a question"
	default:
		return i.Action
	}
}

func int64Ptr(v int64) *int64 { return &v }
