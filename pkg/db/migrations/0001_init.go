package migrations

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

type Voter struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ElectionCode    string     `gorm:"type:text;uniqueIndex;not null"`
	FirstName       string     `gorm:"type:text;not null"`
	LastName        string     `gorm:"type:text;not null;default:''"`
	HasVoted        bool       `gorm:"type:boolean;not null;default:false"`
	VotedAt         *time.Time `gorm:"type:timestamptz"`
	VotingStartDate *time.Time `gorm:"type:timestamptz"`
	IsLoggedIn      bool       `gorm:"type:boolean;not null;default:false"`
	LastLogin       *time.Time `gorm:"type:timestamptz"`
	CreatedAt       time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

type Candidate struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Name        string            `gorm:"type:text;not null"`
	Description string            `gorm:"type:text;not null;default:''"`
	Meta        datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt   time.Time         `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

type VoterSession struct {
	Token        string    `gorm:"type:text;primaryKey"`
	VoterID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	ElectionCode string    `gorm:"type:text;not null"`
	ExpiresAt    time.Time `gorm:"type:timestamptz;not null"`
	LastActivity time.Time `gorm:"type:timestamptz;not null;default:now()"`
	CreatedAt    time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Voter        Voter     `gorm:"foreignKey:VoterID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type Ballot struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	VoterID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	CandidateID uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Voter       Voter     `gorm:"foreignKey:VoterID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Candidate   Candidate `gorm:"foreignKey:CandidateID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

type ElectionSetting struct {
	ID               int16      `gorm:"primaryKey"`
	Status           string     `gorm:"type:text;not null;default:'not_started'"`
	VotingPeriodDays int        `gorm:"not null;default:5"`
	StartDate        *time.Time `gorm:"type:timestamptz"`
	EndDate          *time.Time `gorm:"type:timestamptz"`
	UpdatedAt        time.Time  `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

func upInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).AutoMigrate(
		&Voter{},
		&Candidate{},
		&VoterSession{},
		&Ballot{},
		&ElectionSetting{},
	); err != nil {
		return err
	}

	m := gormDB.WithContext(ctx).Migrator()
	if err := m.CreateConstraint(&VoterSession{}, "Voter"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&Ballot{}, "Voter"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&Ballot{}, "Candidate"); err != nil {
		return err
	}

	// Singleton settings row; admin operations only ever update it.
	return gormDB.WithContext(ctx).Exec(
		`INSERT INTO election_settings (id, status, voting_period_days, updated_at)
         VALUES (1, 'not_started', 5, now())
         ON CONFLICT (id) DO NOTHING`,
	).Error
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).Migrator().DropTable(
		&ElectionSetting{},
		&Ballot{},
		&VoterSession{},
		&Candidate{},
		&Voter{},
	); err != nil {
		return err
	}

	return nil
}
