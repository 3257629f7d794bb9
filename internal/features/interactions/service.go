// Package interactions: service.go содержит бизнес-логику записи действий:
// вопросы с тегами, ответы, голоса и просмотры.
package interactions

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/devflow-bot/internal/common"
)

// Store хранит взаимодействия. Реализуется Repository.
//
// CreateOnce обязан атомарно отклонять дубль голоса или просмотра
// ошибкой common.ErrAlreadyVoted.
type Store interface {
	Create(ctx context.Context, i *Interaction) error
	CreateOnce(ctx context.Context, i *Interaction) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*Interaction, error)
	FindQuestion(ctx context.Context, questionID int64) (*Interaction, error)
	FindAnswer(ctx context.Context, answerID int64) (*Interaction, error)
	FindUserAction(ctx context.Context, userID int64, action string, questionID, answerID *int64) (*Interaction, error)
	Delete(ctx context.Context, id int64) error
	EnsureTags(ctx context.Context, names []string) ([]int64, error)
	TagNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

// Service управляет записью взаимодействий.
type Service struct {
	store Store
}

// NewService создаёт сервис взаимодействий.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Record проверяет и сохраняет взаимодействие.
func (s *Service) Record(ctx context.Context, i *Interaction) error {
	return s.save(ctx, i, s.store.Create)
}

// recordOnce сохраняет голос или просмотр, не допуская дублей.
func (s *Service) recordOnce(ctx context.Context, i *Interaction) error {
	return s.save(ctx, i, s.store.CreateOnce)
}

func (s *Service) save(ctx context.Context, i *Interaction, create func(context.Context, *Interaction) error) error {
	if err := i.Validate(); err != nil {
		return err
	}
	if err := create(ctx, i); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"user_id": i.UserID,
		"action":  i.Action,
		"id":      i.ID,
	}).Debug("Взаимодействие сохранено")
	return nil
}

// RecordQuestion сохраняет вопрос. messageID: ID сообщения с вопросом,
// хештеги из текста становятся тегами.
func (s *Service) RecordQuestion(ctx context.Context, userID, messageID int64, text string) (*Interaction, error) {
	body, tags := ParseQuestion(text)
	if body == "" {
		return nil, common.ErrEmptyQuestion
	}

	tagIDs, err := s.store.EnsureTags(ctx, tags)
	if err != nil {
		return nil, err
	}

	i := &Interaction{
		UserID:     userID,
		Action:     ActionAskQuestion,
		QuestionID: int64Ptr(messageID),
		TagIDs:     tagIDs,
	}
	if err := s.Record(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

// RecordAnswer сохраняет ответ answerID на вопрос questionID.
// Ответ наследует теги вопроса. Если questionID не вопрос: common.ErrTargetNotFound.
func (s *Service) RecordAnswer(ctx context.Context, userID, questionID, answerID int64) (*Interaction, error) {
	question, err := s.store.FindQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, common.ErrInteractionNotFound) {
			return nil, common.ErrTargetNotFound
		}
		return nil, err
	}

	i := &Interaction{
		UserID:     userID,
		Action:     ActionAnswer,
		QuestionID: int64Ptr(questionID),
		AnswerID:   int64Ptr(answerID),
		TagIDs:     question.TagIDs,
	}
	if err := s.Record(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

// RecordUpvote сохраняет голос за сообщение targetID: вопрос или ответ.
//
// Ошибки:
//   - common.ErrTargetNotFound: сообщение не вопрос и не ответ
//   - common.ErrSelfVote: голос за себя
//   - common.ErrAlreadyVoted: повторный голос
func (s *Service) RecordUpvote(ctx context.Context, voterID, targetID int64) (*Interaction, error) {
	target, action, err := s.resolveTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.UserID == voterID {
		return nil, common.ErrSelfVote
	}

	i := &Interaction{
		UserID:     voterID,
		Action:     action,
		QuestionID: target.QuestionID,
		AnswerID:   target.AnswerID,
		TagIDs:     target.TagIDs,
	}
	if err := s.recordOnce(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

// RetractUpvote удаляет голос пользователя за сообщение targetID.
func (s *Service) RetractUpvote(ctx context.Context, voterID, targetID int64) error {
	target, action, err := s.resolveTarget(ctx, targetID)
	if err != nil {
		return err
	}

	vote, err := s.store.FindUserAction(ctx, voterID, action, target.QuestionID, target.AnswerID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, vote.ID); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"user_id": voterID,
		"action":  action,
	}).Debug("Голос отозван")
	return nil
}

// resolveTarget определяет, вопрос или ответ лежит за сообщением,
// и возвращает его запись вместе с подходящим действием голосования.
func (s *Service) resolveTarget(ctx context.Context, targetID int64) (*Interaction, string, error) {
	question, err := s.store.FindQuestion(ctx, targetID)
	if err == nil {
		return question, ActionUpvoteQuestion, nil
	}
	if !errors.Is(err, common.ErrInteractionNotFound) {
		return nil, "", err
	}

	answer, err := s.store.FindAnswer(ctx, targetID)
	if err == nil {
		return answer, ActionUpvoteAnswer, nil
	}
	if errors.Is(err, common.ErrInteractionNotFound) {
		return nil, "", common.ErrTargetNotFound
	}
	return nil, "", err
}

// RecordView засчитывает просмотр вопроса, не больше одного от пользователя.
// Возвращает вопрос и признак того, что просмотр новый.
func (s *Service) RecordView(ctx context.Context, userID, questionID int64) (*Interaction, bool, error) {
	question, err := s.store.FindQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, common.ErrInteractionNotFound) {
			return nil, false, common.ErrTargetNotFound
		}
		return nil, false, err
	}

	view := &Interaction{
		UserID:     userID,
		Action:     ActionViewQuestion,
		QuestionID: question.QuestionID,
		TagIDs:     question.TagIDs,
	}
	if err := s.recordOnce(ctx, view); err != nil {
		if errors.Is(err, common.ErrAlreadyVoted) {
			return question, false, nil
		}
		return nil, false, err
	}
	return question, true, nil
}

// Question возвращает вопрос без записи просмотра.
func (s *Service) Question(ctx context.Context, questionID int64) (*ActivityItem, error) {
	question, err := s.store.FindQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, common.ErrInteractionNotFound) {
			return nil, common.ErrTargetNotFound
		}
		return nil, err
	}
	items, err := s.withTags(ctx, []*Interaction{question})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// RecentActivity возвращает последние limit действий пользователя с именами тегов.
func (s *Service) RecentActivity(ctx context.Context, userID int64, limit int) ([]ActivityItem, error) {
	list, err := s.store.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return s.withTags(ctx, list)
}

func (s *Service) withTags(ctx context.Context, list []*Interaction) ([]ActivityItem, error) {
	var ids []int64
	for _, i := range list {
		ids = append(ids, i.TagIDs...)
	}
	names, err := s.store.TagNames(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения тегов: %w", err)
	}

	items := make([]ActivityItem, 0, len(list))
	for _, i := range list {
		item := ActivityItem{Interaction: i}
		for _, id := range i.TagIDs {
			if name, ok := names[id]; ok {
				item.Tags = append(item.Tags, name)
			}
		}
		items = append(items, item)
	}
	return items, nil
}
