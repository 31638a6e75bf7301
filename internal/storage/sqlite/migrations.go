package sqlite

// schema contains the database schema DDL. Instants are stored as Unix
// milliseconds so range queries compare correctly across UTC offsets.
const schema = `
-- Import batches
CREATE TABLE IF NOT EXISTS imports (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    glucose_count INTEGER DEFAULT 0,
    insulin_count INTEGER DEFAULT 0,
    skipped INTEGER DEFAULT 0,
    imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Glucose readings (mmol/L)
CREATE TABLE IF NOT EXISTS glucose_readings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    import_id TEXT NOT NULL,
    timestamp_ms INTEGER NOT NULL,
    value REAL NOT NULL,
    UNIQUE(timestamp_ms)
);
CREATE INDEX IF NOT EXISTS idx_glucose_import ON glucose_readings(import_id);

-- Insulin doses
CREATE TABLE IF NOT EXISTS insulin_doses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    import_id TEXT NOT NULL,
    timestamp_ms INTEGER NOT NULL,
    units REAL NOT NULL,
    type TEXT NOT NULL,
    UNIQUE(timestamp_ms, type)
);
CREATE INDEX IF NOT EXISTS idx_insulin_time ON insulin_doses(timestamp_ms);
CREATE INDEX IF NOT EXISTS idx_insulin_import ON insulin_doses(import_id);

-- Setting overrides
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`
