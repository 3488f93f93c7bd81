package journal

const Schema = `
CREATE TABLE IF NOT EXISTS journal (
	id TEXT PRIMARY KEY,
	seq INTEGER NOT NULL,
	date TEXT NOT NULL,
	pair TEXT NOT NULL,
	direction TEXT NOT NULL,
	entry REAL NOT NULL DEFAULT 0,
	exit REAL NOT NULL DEFAULT 0,
	stop_loss REAL NOT NULL DEFAULT 0,
	take_profit REAL NOT NULL DEFAULT 0,
	lot_size REAL NOT NULL DEFAULT 0,
	pl_pips REAL NOT NULL DEFAULT 0,
	pl_usd REAL NOT NULL DEFAULT 0,
	outcome TEXT NOT NULL DEFAULT 'Pending',
	reason TEXT NOT NULL DEFAULT '',
	review TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_journal_seq ON journal(seq);
`
