package store

// migration holds a single schema migration with its target version and
// the statements for each supported driver. Statements run one at a
// time because MySQL rejects multi-statement Exec by default.
type migration struct {
	version int
	sqlite  []string
	mysql   []string
}

const schemaVersionTable = `CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
)`

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sqlite: []string{
			`CREATE TABLE IF NOT EXISTS sprints (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id       INTEGER NOT NULL,
	project_title TEXT NOT NULL DEFAULT 'My Project',
	title         TEXT NOT NULL,
	start_date    TEXT,
	end_date      TEXT
)`,
			`CREATE TABLE IF NOT EXISTS tasks (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id            INTEGER NOT NULL,
	title              TEXT NOT NULL,
	priority           TEXT NOT NULL DEFAULT 'Medium',
	status             TEXT NOT NULL DEFAULT 'todo',
	previous_status    TEXT,
	due_date           TEXT,
	subtasks_total     INTEGER NOT NULL DEFAULT 0,
	subtasks_completed INTEGER NOT NULL DEFAULT 0,
	sprint_id          INTEGER REFERENCES sprints(id) ON DELETE SET NULL,
	created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
			`CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON tasks(user_id, status)`,
			`CREATE INDEX IF NOT EXISTS idx_tasks_sprint_id ON tasks(sprint_id)`,
			`CREATE INDEX IF NOT EXISTS idx_sprints_user_id ON sprints(user_id)`,
		},
		mysql: []string{
			`CREATE TABLE IF NOT EXISTS sprints (
	id            BIGINT AUTO_INCREMENT PRIMARY KEY,
	user_id       BIGINT NOT NULL,
	project_title VARCHAR(255) NOT NULL DEFAULT 'My Project',
	title         VARCHAR(255) NOT NULL,
	start_date    VARCHAR(10),
	end_date      VARCHAR(10),
	INDEX idx_sprints_user_id (user_id)
)`,
			`CREATE TABLE IF NOT EXISTS tasks (
	id                 BIGINT AUTO_INCREMENT PRIMARY KEY,
	user_id            BIGINT NOT NULL,
	title              VARCHAR(255) NOT NULL,
	priority           VARCHAR(16) NOT NULL DEFAULT 'Medium',
	status             VARCHAR(16) NOT NULL DEFAULT 'todo',
	previous_status    VARCHAR(16),
	due_date           VARCHAR(10),
	subtasks_total     INT NOT NULL DEFAULT 0,
	subtasks_completed INT NOT NULL DEFAULT 0,
	sprint_id          BIGINT NULL,
	created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	INDEX idx_tasks_user_status (user_id, status),
	CONSTRAINT fk_tasks_sprint FOREIGN KEY (sprint_id)
		REFERENCES sprints(id) ON DELETE SET NULL
)`,
		},
	},
	{
		version: 2,
		sqlite: []string{
			`CREATE TABLE IF NOT EXISTS pages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    INTEGER NOT NULL,
	title      TEXT NOT NULL DEFAULT 'Untitled',
	body       TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
			`CREATE INDEX IF NOT EXISTS idx_pages_user_updated ON pages(user_id, updated_at)`,
			`CREATE TABLE IF NOT EXISTS integrations (
	user_id      INTEGER NOT NULL,
	platform     TEXT NOT NULL CHECK(platform IN ('github', 'gitlab', 'bitbucket')),
	repo_url     TEXT NOT NULL DEFAULT '',
	access_token TEXT NOT NULL DEFAULT '',
	connected_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (user_id, platform)
)`,
		},
		mysql: []string{
			`CREATE TABLE IF NOT EXISTS pages (
	id         BIGINT AUTO_INCREMENT PRIMARY KEY,
	user_id    BIGINT NOT NULL,
	title      VARCHAR(255) NOT NULL DEFAULT 'Untitled',
	body       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	INDEX idx_pages_user_updated (user_id, updated_at)
)`,
			`CREATE TABLE IF NOT EXISTS integrations (
	user_id      BIGINT NOT NULL,
	platform     VARCHAR(16) NOT NULL,
	repo_url     VARCHAR(512) NOT NULL DEFAULT '',
	access_token VARCHAR(512) NOT NULL DEFAULT '',
	connected_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (user_id, platform)
)`,
		},
	},
}
