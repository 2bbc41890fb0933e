// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
//   - base.go: shared columns, archivable columns and the JSON column type
//   - company.go: companies, contacts and referrals
//   - interaction.go: interactions
//   - investment.go: investment projects, propositions and their documents
//   - document.go: documents and the entity documents pointing at them
//   - exportwin.go: export wins and customer response tokens
//   - reference.go: advisers, metadata, audit versions and user events
package models
