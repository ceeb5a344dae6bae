package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
    key                  TEXT PRIMARY KEY,
    value                TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS drafts (
    school_code          TEXT NOT NULL,
    year                 INTEGER NOT NULL,
    snapshot             TEXT NOT NULL,
    checklist            TEXT NOT NULL DEFAULT '{}',
    updated_at           TEXT NOT NULL,
    PRIMARY KEY (school_code, year)
);

CREATE TABLE IF NOT EXISTS budget_codes (
    code                 TEXT PRIMARY KEY,
    name                 TEXT NOT NULL,
    grp                  TEXT,
    kind                 TEXT,
    parent               TEXT,
    fetched_at           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_drafts_updated ON drafts(updated_at);
CREATE INDEX IF NOT EXISTS idx_budget_codes_kind ON budget_codes(kind);
`
