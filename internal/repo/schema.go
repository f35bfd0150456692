package repo

const schema = `
CREATE TABLE IF NOT EXISTS sender_numbers (
	id                  TEXT PRIMARY KEY,
	phone_number        TEXT NOT NULL UNIQUE,
	label               TEXT NOT NULL DEFAULT '',
	status              TEXT NOT NULL DEFAULT 'active',
	messages_sent_today INTEGER NOT NULL DEFAULT 0,
	daily_limit         INTEGER NOT NULL,
	last_used_at        TIMESTAMPTZ NULL,
	counters_reset_at   TIMESTAMPTZ NULL,
	created_at          TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sender_numbers_rotation
	ON sender_numbers (status, messages_sent_today, last_used_at);

CREATE TABLE IF NOT EXISTS candidates (
	id         TEXT PRIMARY KEY,
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	specialty  TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_candidates_phone ON candidates (phone);

CREATE TABLE IF NOT EXISTS conversations (
	id                     TEXT PRIMARY KEY,
	counterparty_phone     TEXT NOT NULL UNIQUE,
	assigned_sender        TEXT NOT NULL DEFAULT '',
	candidate_id           TEXT NULL,
	contact_name           TEXT NOT NULL DEFAULT '',
	last_message_at        TIMESTAMPTZ NULL,
	last_message_preview   TEXT NOT NULL DEFAULT '',
	last_message_direction TEXT NOT NULL DEFAULT '',
	unread_count           INTEGER NOT NULL DEFAULT 0,
	total_messages         INTEGER NOT NULL DEFAULT 0,
	candidate_replied      BOOLEAN NOT NULL DEFAULT FALSE,
	interest_detected      BOOLEAN NOT NULL DEFAULT FALSE,
	opted_out              BOOLEAN NOT NULL DEFAULT FALSE,
	created_at             TIMESTAMPTZ NOT NULL,
	updated_at             TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversations_last_message_at ON conversations (last_message_at);

CREATE TABLE IF NOT EXISTS messages (
	id                 TEXT PRIMARY KEY,
	conversation_id    TEXT NOT NULL REFERENCES conversations (id),
	direction          TEXT NOT NULL,
	body               TEXT NOT NULL,
	status             TEXT NOT NULL,
	carrier_message_id TEXT NULL UNIQUE,
	from_number        TEXT NOT NULL,
	to_number          TEXT NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages (conversation_id, created_at);

CREATE TABLE IF NOT EXISTS campaigns (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	status             TEXT NOT NULL,
	sms_enabled        BOOLEAN NOT NULL DEFAULT FALSE,
	voice_enabled      BOOLEAN NOT NULL DEFAULT FALSE,
	email_enabled      BOOLEAN NOT NULL DEFAULT FALSE,
	sms_template       TEXT NOT NULL DEFAULT '',
	email_subject      TEXT NOT NULL DEFAULT '',
	email_body         TEXT NOT NULL DEFAULT '',
	remote_campaign_id TEXT NULL,
	created_at         TIMESTAMPTZ NOT NULL,
	updated_at         TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS leads (
	id           TEXT PRIMARY KEY,
	campaign_id  TEXT NOT NULL REFERENCES campaigns (id),
	candidate_id TEXT NOT NULL,
	status       TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS call_jobs (
	id           TEXT PRIMARY KEY,
	campaign_id  TEXT NOT NULL REFERENCES campaigns (id),
	candidate_id TEXT NOT NULL,
	phone        TEXT NOT NULL,
	status       TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);
`
