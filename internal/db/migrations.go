package db

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
)

// SchemaMigration records one applied migration version.
type SchemaMigration struct {
	ID        string `gorm:"primaryKey;size:64"`
	AppliedAt time.Time
}

type Migration struct {
	ID      string
	Migrate func(tx *gorm.DB) error
}

// ======================================================
// SCHEMA SNAPSHOTS
// ======================================================
//
// Each shipped version migrates its own copy of the tables as they were at
// that version. Later changes to internal/models need a new version.

type userV1 struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:150;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:20;not null;default:'agent'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userV1) TableName() string { return "users" }

type clientV1 struct {
	ID              uint    `gorm:"primaryKey"`
	Name            string  `gorm:"size:150;not null"`
	Wallet          string  `gorm:"size:255"`
	FullName        string  `gorm:"size:150"`
	Email           string  `gorm:"size:150;index"`
	Phone           string  `gorm:"size:50"`
	Status          string  `gorm:"size:50;not null;default:'NEW'"`
	Tags            string  `gorm:"size:255"`
	Notes           string  `gorm:"type:text"`
	AssignedAgentID *uint   `gorm:"index"`
	AssignedAgent   *userV1 `gorm:"foreignKey:AssignedAgentID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	LastContactAt   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (clientV1) TableName() string { return "clients" }

type commentV1 struct {
	ID        uint     `gorm:"primaryKey"`
	Body      string   `gorm:"type:text;not null"`
	ClientID  uint     `gorm:"index;not null"`
	Client    clientV1 `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	AuthorID  uint     `gorm:"not null"`
	Author    userV1   `gorm:"foreignKey:AuthorID"`
	CreatedAt time.Time
}

func (commentV1) TableName() string { return "comments" }

type auditLogV1 struct {
	ID        uint   `gorm:"primaryKey"`
	ActorID   *uint  `gorm:"index"`
	Actor     string `gorm:"size:150"`
	Action    string `gorm:"size:50;not null;index"`
	Entity    string `gorm:"size:50"`
	EntityID  *uint
	Metadata  string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index"`
}

func (auditLogV1) TableName() string { return "audit_logs" }

// Migrations returns the ordered schema history. Append only; never edit
// a version that has shipped.
func Migrations() []Migration {
	return []Migration{
		{
			ID: "0001_create_users",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&userV1{})
			},
		},
		{
			ID: "0002_create_clients",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&clientV1{})
			},
		},
		{
			ID: "0003_create_comments",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&commentV1{})
			},
		},
		{
			ID: "0004_create_audit_logs",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&auditLogV1{})
			},
		},
		{
			ID: "0005_backfill_client_status",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec(`
					UPDATE clients
					SET status = 'NEW'
					WHERE status IS NULL OR status = ''
				`).Error
			},
		},
	}
}

// Migrate applies every migration not yet recorded, each in its own
// transaction together with its bookkeeping row.
func Migrate(db *gorm.DB, migrations []Migration) error {
	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var applied []SchemaMigration
	if err := db.Find(&applied).Error; err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, m := range applied {
		done[m.ID] = true
	}

	pending := make([]Migration, 0, len(migrations))
	for _, m := range migrations {
		if !done[m.ID] {
			pending = append(pending, m)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })

	for _, m := range pending {
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Migrate(tx); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{ID: m.ID, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %s: %w", m.ID, err)
		}
	}

	return nil
}
