package db

import (
	"database/sql"
	"strconv"
)

// MigrateUp creates the full recommendation-pipeline schema if it does not
// already exist. Statements are idempotent so MigrateUp is safe to run on
// every process start, following the teacher's MigrateUp shape.
//
// dimension is the configured embedding vector width D (spec §3: "D is
// fixed at install time; changing D requires dropping and rebuilding this
// table"). It is baked into the embeddings.vector column type at creation
// time and is not itself stored as a row — attempts to insert a
// differently-sized vector fail at the database layer, which callers
// surface as entity.SchemaMismatchError.
func MigrateUp(db *sql.DB, dimension int) error {
	if dimension <= 0 {
		dimension = 1536
	}

	if _, err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id           BIGSERIAL PRIMARY KEY,
    external_id  TEXT NOT NULL,
    title        TEXT NOT NULL,
    content      TEXT NOT NULL DEFAULT '',
    authors      TEXT NOT NULL DEFAULT '',
    origin       TEXT NOT NULL DEFAULT '',
    link         TEXT NOT NULL DEFAULT '',
    published_at TIMESTAMPTZ,
    added_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    tldr         TEXT NOT NULL DEFAULT ''
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_articles_external_id ON articles(external_id)`); err != nil {
		return err
	}
	if _, err := db.Exec(`
CREATE INDEX IF NOT EXISTS idx_articles_link ON articles(link)`); err != nil {
		return err
	}
	if _, err := db.Exec(`
CREATE INDEX IF NOT EXISTS idx_articles_added_at ON articles(added_at DESC)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS feed_sources (
    id              BIGSERIAL PRIMARY KEY,
    name            TEXT NOT NULL,
    url             TEXT NOT NULL UNIQUE,
    type            VARCHAR(20) NOT NULL DEFAULT 'RSS',
    last_checked_at TIMESTAMPTZ,
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    credential_ref  TEXT NOT NULL DEFAULT ''
)`); err != nil {
		return err
	}
	if _, err := db.Exec(`
CREATE INDEX IF NOT EXISTS idx_feed_sources_active ON feed_sources(is_active) WHERE is_active = TRUE`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS models (
    id         BIGSERIAL PRIMARY KEY,
    name       TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    is_active  BOOLEAN NOT NULL DEFAULT FALSE,
    notes      TEXT NOT NULL DEFAULT '',
    score_name TEXT NOT NULL DEFAULT ''
)`); err != nil {
		return err
	}

	embeddingsDDL := `
CREATE TABLE IF NOT EXISTS embeddings (
    article_id BIGINT PRIMARY KEY REFERENCES articles(id) ON DELETE CASCADE,
    vector     vector(` + strconv.Itoa(dimension) + `) NOT NULL,
    updated_at BIGINT NOT NULL
)`
	if _, err := db.Exec(embeddingsDDL); err != nil {
		return err
	}

	// HNSW index on cosine distance, per spec §6. Ignored if the vector
	// extension predates HNSW support (pgvector < 0.5.0).
	_, _ = db.Exec(`
CREATE INDEX IF NOT EXISTS idx_embeddings_vector ON embeddings
    USING hnsw (vector vector_cosine_ops)`)

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS predicted_scores (
    article_id BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    model_id   BIGINT NOT NULL REFERENCES models(id) ON DELETE CASCADE,
    score      DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (article_id, model_id)
)`); err != nil {
		return err
	}
	if _, err := db.Exec(`
CREATE INDEX IF NOT EXISTS idx_predicted_scores_model_score
    ON predicted_scores(model_id, score DESC, article_id)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id                   BIGSERIAL PRIMARY KEY,
    username             TEXT NOT NULL UNIQUE,
    is_admin             BOOLEAN NOT NULL DEFAULT FALSE,
    timezone             TEXT NOT NULL DEFAULT '',
    theme                TEXT NOT NULL DEFAULT '',
    bookmark_article_id  BIGINT REFERENCES articles(id) ON DELETE SET NULL,
    min_score_threshold  DOUBLE PRECISION NOT NULL DEFAULT 0,
    primary_channel_id   BIGINT
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS preferences (
    id          BIGSERIAL PRIMARY KEY,
    article_id  BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    user_id     BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    score       SMALLINT NOT NULL,
    source      VARCHAR(20) NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}
	if _, err := db.Exec(`
CREATE INDEX IF NOT EXISTS idx_preferences_article_user ON preferences(article_id, user_id, created_at DESC)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS channels (
    id              BIGSERIAL PRIMARY KEY,
    name            TEXT NOT NULL,
    endpoint        TEXT NOT NULL,
    score_threshold DOUBLE PRECISION NOT NULL DEFAULT 0.5,
    model_id        BIGINT NOT NULL REFERENCES models(id),
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    broadcast_limit INT NOT NULL DEFAULT 20,
    broadcast_hours INT NOT NULL DEFAULT 16777215,
    timezone        TEXT NOT NULL DEFAULT 'UTC'
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS broadcasts (
    article_id      BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    channel_id      BIGINT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
    queued_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    broadcasted_time TIMESTAMPTZ,
    reason          VARCHAR(20) NOT NULL DEFAULT '',
    PRIMARY KEY (article_id, channel_id)
)`); err != nil {
		return err
	}
	if _, err := db.Exec(`
CREATE INDEX IF NOT EXISTS idx_broadcasts_broadcasted_time ON broadcasts(broadcasted_time)`); err != nil {
		return err
	}
	if _, err := db.Exec(`
CREATE INDEX IF NOT EXISTS idx_broadcasts_channel_queued ON broadcasts(channel_id) WHERE broadcasted_time IS NULL`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS events (
    id         BIGSERIAL PRIMARY KEY,
    severity   VARCHAR(10) NOT NULL,
    source     TEXT NOT NULL,
    message    TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}
	if _, err := db.Exec(`
CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at DESC)`); err != nil {
		return err
	}

	return nil
}

// MigrateDown drops every table this package creates, in dependency order.
// Intended for test fixtures and the `init --reset` CLI path; never run
// automatically against a production store.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS events CASCADE`,
		`DROP TABLE IF EXISTS broadcasts CASCADE`,
		`DROP TABLE IF EXISTS preferences CASCADE`,
		`DROP TABLE IF EXISTS predicted_scores CASCADE`,
		`DROP TABLE IF EXISTS embeddings CASCADE`,
		`DROP TABLE IF EXISTS users CASCADE`,
		`DROP TABLE IF EXISTS channels CASCADE`,
		`DROP TABLE IF EXISTS models CASCADE`,
		`DROP TABLE IF EXISTS feed_sources CASCADE`,
		`DROP TABLE IF EXISTS articles CASCADE`,
	}
	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
