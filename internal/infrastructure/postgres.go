package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PoolConfig tunes the connection pool.
type PoolConfig struct {
	MaxConns       int32
	MinConns       int32
	ConnectTimeout time.Duration
}

type PostgresClient struct {
	Pool *pgxpool.Pool
	log  zerolog.Logger
}

func NewPostgresClient(ctx context.Context, connString string, pc PoolConfig, log zerolog.Logger) (*PostgresClient, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	// Pool configuration
	config.MaxConns = pc.MaxConns
	config.MinConns = pc.MinConns
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	if pc.ConnectTimeout > 0 {
		config.ConnConfig.ConnectTimeout = pc.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Verify connection
	pingCtx, cancel := context.WithTimeout(ctx, pc.ConnectTimeout+time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	client := &PostgresClient{Pool: pool, log: log}

	// Auto-migrate schema
	if err := client.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return client, nil
}

type migration struct {
	name string
	sql  string
}

const visibilityColumn = `visibility VARCHAR(20) NOT NULL DEFAULT 'dm-only'
			CHECK (visibility IN ('dm-only', 'player-visible', 'hidden'))`

const auditColumns = `created_by INT NOT NULL REFERENCES users(id),
			updated_by INT REFERENCES users(id) ON DELETE SET NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()`

// Every campaign-scoped table cascades from campaigns, so deleting a campaign
// removes everything in it. Polymorphic association tables (entity_tags,
// entity_images, quest_links) have no FK to the target entity and are cleaned
// up by the repositories.
var migrations = []migration{
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`},
	{"campaigns", `
		CREATE TABLE IF NOT EXISTS campaigns (
			id SERIAL PRIMARY KEY,
			owner_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`},
	{"campaign_participants", `
		CREATE TABLE IF NOT EXISTS campaign_participants (
			campaign_id INT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
			user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role VARCHAR(10) NOT NULL CHECK (role IN ('dm', 'player')),
			invited_by INT REFERENCES users(id) ON DELETE SET NULL,
			joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (campaign_id, user_id)
		);`},
	{"characters", `
		CREATE TABLE IF NOT EXISTS characters (
			id SERIAL PRIMARY KEY,
			campaign_id INT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			character_type VARCHAR(20) NOT NULL DEFAULT 'npc'
				CHECK (character_type IN ('player', 'npc', 'antagonist')),
			description TEXT NOT NULL DEFAULT '',
			sheet JSONB,
			player_user_id INT REFERENCES users(id) ON DELETE SET NULL,
			` + visibilityColumn + `,
			` + auditColumns + `
		);`},
	{"locations", `
		CREATE TABLE IF NOT EXISTS locations (
			id SERIAL PRIMARY KEY,
			campaign_id INT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			location_type VARCHAR(100) NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			parent_id INT REFERENCES locations(id),
			` + visibilityColumn + `,
			` + auditColumns + `
		);`},
	{"factions", `
		CREATE TABLE IF NOT EXISTS factions (
			id SERIAL PRIMARY KEY,
			campaign_id INT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			faction_type VARCHAR(100) NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			goals TEXT NOT NULL DEFAULT '',
			headquarters_location_id INT REFERENCES locations(id) ON DELETE SET NULL,
			` + visibilityColumn + `,
			` + auditColumns + `
		);`},
	{"world_info", `
		CREATE TABLE IF NOT EXISTS world_info (
			id SERIAL PRIMARY KEY,
			campaign_id INT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
			title VARCHAR(255) NOT NULL,
			category VARCHAR(100) NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			` + visibilityColumn + `,
			` + auditColumns + `
		);`},
	{"creatures", `
		CREATE TABLE IF NOT EXISTS creatures (
			id SERIAL PRIMARY KEY,
			campaign_id INT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			creature_type VARCHAR(100) NOT NULL DEFAULT '',
			size VARCHAR(50) NOT NULL DEFAULT '',
			alignment VARCHAR(50) NOT NULL DEFAULT '',
			challenge_rating VARCHAR(20) NOT NULL DEFAULT '',
			armor_class INT NOT NULL DEFAULT 0,
			hit_points INT NOT NULL DEFAULT 0,
			speed VARCHAR(100) NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			ability_scores JSONB,
			stats JSONB,
			` + visibilityColumn + `,
			` + auditColumns + `
		);`},
	{"content_items", `
		CREATE TABLE IF NOT EXISTS content_items (
			id SERIAL PRIMARY KEY,
			campaign_id INT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			category VARCHAR(100) NOT NULL DEFAULT '',
			rarity VARCHAR(50) NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			` + visibilityColumn + `,
			` + auditColumns + `
		);`},
	{"sessions", `
		CREATE TABLE IF NOT EXISTS sessions (
			id SERIAL PRIMARY KEY,
			campaign_id INT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
			title VARCHAR(255) NOT NULL,
			session_number INT NOT NULL DEFAULT 0,
			session_date DATE,
			summary TEXT NOT NULL DEFAULT '',
			` + visibilityColumn + `,
			` + auditColumns + `
		);`},
	{"session_notes", `
		CREATE TABLE IF NOT EXISTS session_notes (
			id SERIAL PRIMARY KEY,
			session_id INT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			campaign_id INT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
			author_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			visibility VARCHAR(20) NOT NULL DEFAULT 'player-visible'
				CHECK (visibility IN ('dm-only', 'player-visible')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`},
	{"quests", `
		CREATE TABLE IF NOT EXISTS quests (
			id SERIAL PRIMARY KEY,
			campaign_id INT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'active'
				CHECK (status IN ('active', 'completed', 'failed', 'on-hold')),
			quest_type VARCHAR(20) NOT NULL DEFAULT 'side'
				CHECK (quest_type IN ('main', 'side', 'personal')),
			priority INT NOT NULL DEFAULT 0 CHECK (priority BETWEEN 0 AND 10),
			` + visibilityColumn + `,
			` + auditColumns + `
		);`},
	{"quest_objectives", `
		CREATE TABLE IF NOT EXISTS quest_objectives (
			id SERIAL PRIMARY KEY,
			quest_id INT NOT NULL REFERENCES quests(id) ON DELETE CASCADE,
			description TEXT NOT NULL,
			is_completed BOOLEAN NOT NULL DEFAULT FALSE,
			sort_order INT NOT NULL DEFAULT 0
		);`},
	{"quest_milestones", `
		CREATE TABLE IF NOT EXISTS quest_milestones (
			id SERIAL PRIMARY KEY,
			quest_id INT NOT NULL REFERENCES quests(id) ON DELETE CASCADE,
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			is_completed BOOLEAN NOT NULL DEFAULT FALSE,
			session_id INT REFERENCES sessions(id) ON DELETE SET NULL
		);`},
	{"quest_links", `
		CREATE TABLE IF NOT EXISTS quest_links (
			id SERIAL PRIMARY KEY,
			quest_id INT NOT NULL REFERENCES quests(id) ON DELETE CASCADE,
			entity_type VARCHAR(20) NOT NULL,
			entity_id INT NOT NULL,
			link_type VARCHAR(50) NOT NULL DEFAULT '',
			` + visibilityColumn + `
		);`},
	{"quest_sessions", `
		CREATE TABLE IF NOT EXISTS quest_sessions (
			quest_id INT NOT NULL REFERENCES quests(id) ON DELETE CASCADE,
			session_id INT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			PRIMARY KEY (quest_id, session_id)
		);`},
	{"tags", `
		CREATE TABLE IF NOT EXISTS tags (
			id SERIAL PRIMARY KEY,
			campaign_id INT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
			name VARCHAR(50) NOT NULL,
			color VARCHAR(7) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS tags_campaign_name_idx ON tags (campaign_id, lower(name));`},
	{"entity_tags", `
		CREATE TABLE IF NOT EXISTS entity_tags (
			tag_id INT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
			entity_type VARCHAR(20) NOT NULL,
			entity_id INT NOT NULL,
			PRIMARY KEY (tag_id, entity_type, entity_id)
		);
		CREATE INDEX IF NOT EXISTS entity_tags_entity_idx ON entity_tags (entity_type, entity_id);`},
	{"entity_images", `
		CREATE TABLE IF NOT EXISTS entity_images (
			id SERIAL PRIMARY KEY,
			campaign_id INT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
			entity_type VARCHAR(20) NOT NULL,
			entity_id INT NOT NULL,
			file_path VARCHAR(512) NOT NULL,
			original_name VARCHAR(255) NOT NULL DEFAULT '',
			mime_type VARCHAR(100) NOT NULL,
			size_bytes BIGINT NOT NULL,
			uploaded_by INT NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS entity_images_entity_idx ON entity_images (campaign_id, entity_type, entity_id);`},
}

// Migrate creates any missing tables. Statements are idempotent so it runs on
// every start.
func (p *PostgresClient) Migrate(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := p.Pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("create %s table: %w", m.name, err)
		}
	}
	p.log.Info().Int("tables", len(migrations)).Msg("database schema ready")
	return nil
}

// Ping reports whether the database answers, for the health endpoint.
func (p *PostgresClient) Ping(ctx context.Context) error {
	return p.Pool.Ping(ctx)
}

func (p *PostgresClient) Close() {
	p.Pool.Close()
}
