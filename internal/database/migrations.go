package database

import "fmt"

func (d *Database) RunMigrations() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS user_profiles (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			phone TEXT,
			role TEXT NOT NULL DEFAULT 'corretor',
			department TEXT,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS properties (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			street TEXT,
			neighborhood TEXT,
			property_type TEXT,
			city TEXT,
			postal_code TEXT,
			price INTEGER,
			bedrooms INTEGER,
			bathrooms INTEGER,
			area INTEGER,
			status TEXT NOT NULL DEFAULT 'disponivel',
			description TEXT,
			user_id TEXT NOT NULL,
			latitude REAL,
			longitude REAL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS property_images (
			id TEXT PRIMARY KEY,
			property_id TEXT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
			url TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS leads (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT,
			phone TEXT,
			address TEXT,
			marital_status TEXT,
			source TEXT,
			stage TEXT NOT NULL DEFAULT 'Novo Lead',
			interest TEXT,
			estimated_value REAL,
			notes TEXT,
			property_id TEXT,
			user_id TEXT NOT NULL,
			contact_date TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS contract_templates (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			deleted_at TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS contracts (
			id TEXT PRIMARY KEY,
			template_id TEXT NOT NULL,
			lead_id TEXT NOT NULL,
			property_id TEXT,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'rascunho',
			user_id TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			deleted_at TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS whatsapp_instances (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			instance_key TEXT UNIQUE NOT NULL,
			phone TEXT,
			status TEXT NOT NULL DEFAULT 'disconnected',
			user_id TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS appointments (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			lead_id TEXT,
			title TEXT,
			client_name TEXT,
			event_type TEXT,
			starts_at TIMESTAMP NOT NULL,
			ends_at TIMESTAMP NOT NULL,
			source TEXT,
			needs_review BOOLEAN NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_leads_user ON leads(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_leads_stage ON leads(stage);`,
		`CREATE INDEX IF NOT EXISTS idx_properties_user ON properties(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_properties_coordinates ON properties(latitude, longitude);`,
		`CREATE INDEX IF NOT EXISTS idx_contracts_lead ON contracts(lead_id);`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_user ON appointments(user_id, starts_at);`,
	}

	for _, stmt := range statements {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %v", err)
		}
	}

	// Add cpf column for databases created before it existed
	_, err := d.db.Exec(`ALTER TABLE leads ADD COLUMN cpf TEXT;`)
	if err != nil && err.Error() != "duplicate column name: cpf" {
		return err
	}

	return nil
}
