// Package common: errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Обработчики различают их через errors.Is и отвечают пользователю понятным текстом.
package common

import "errors"

// Ошибки хранилища
var (
	// ErrMissingDatabaseURL означает, что не задана строка подключения к БД
	ErrMissingDatabaseURL = errors.New("database URL is not configured")
)

// Ошибки взаимодействий (вопросы, ответы, голоса)
var (
	// ErrEmptyQuestion означает вопрос без текста
	ErrEmptyQuestion = errors.New("question text is empty")
	// ErrTargetNotFound означает, что сообщение, на которое ответили, не вопрос и не ответ
	ErrTargetNotFound = errors.New("message is not a known question or answer")
	// ErrSelfVote возникает при голосе за свой вопрос или ответ
	ErrSelfVote = errors.New("you cannot upvote your own post")
	// ErrAlreadyVoted означает, что голос или просмотр уже засчитан
	ErrAlreadyVoted = errors.New("you have already upvoted this post")
	// ErrInteractionNotFound означает, что запись взаимодействия не найдена
	ErrInteractionNotFound = errors.New("interaction not found")
)

// Ошибки участников
var (
	// ErrUserNotFound означает, что пользователя нет в базе
	ErrUserNotFound = errors.New("user not found")
)
