package app

import "serotonyl.ru/devflow-bot/internal/db/postgres"

// SQL-миграции встроены в код для упрощения деплоя.
var migrations = []postgres.Migration{
	{Version: 1, SQL: migration001Members},
	{Version: 2, SQL: migration002Interactions},
	{Version: 3, SQL: migration003Badges},
	{Version: 4, SQL: migration004UniqueVotes},
}

const migration001Members = `
CREATE TABLE IF NOT EXISTS members (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    username VARCHAR(255) NOT NULL DEFAULT '',
    first_name VARCHAR(255) NOT NULL DEFAULT '',
    last_name VARCHAR(255) NOT NULL DEFAULT '',
    joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_members_username ON members(username);
`

const migration002Interactions = `
CREATE TABLE IF NOT EXISTS tags (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(64) UNIQUE NOT NULL
);
CREATE TABLE IF NOT EXISTS interactions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES members(user_id),
    action VARCHAR(32) NOT NULL,
    question_id BIGINT,
    answer_id BIGINT,
    tag_ids BIGINT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_interactions_user_created ON interactions(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_interactions_question ON interactions(question_id, action);
CREATE INDEX IF NOT EXISTS idx_interactions_answer ON interactions(answer_id, action);
`

const migration003Badges = `
CREATE TABLE IF NOT EXISTS user_badges (
    user_id BIGINT PRIMARY KEY REFERENCES members(user_id),
    gold INTEGER NOT NULL DEFAULT 0,
    silver INTEGER NOT NULL DEFAULT 0,
    bronze INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Голос и просмотр засчитываются один раз на пользователя и цель.
// Дубли, успевшие попасть в таблицу до индексов, удаляются.
const migration004UniqueVotes = `
DELETE FROM interactions a
USING interactions b
WHERE a.action IN ('upvote_question', 'upvote_answer', 'view_question')
  AND a.action = b.action
  AND a.user_id = b.user_id
  AND a.question_id IS NOT DISTINCT FROM b.question_id
  AND a.answer_id IS NOT DISTINCT FROM b.answer_id
  AND a.id > b.id;

CREATE UNIQUE INDEX IF NOT EXISTS uniq_interactions_question_once
    ON interactions(user_id, action, question_id)
    WHERE action IN ('upvote_question', 'view_question');

CREATE UNIQUE INDEX IF NOT EXISTS uniq_interactions_answer_once
    ON interactions(user_id, action, answer_id)
    WHERE action = 'upvote_answer';
`
