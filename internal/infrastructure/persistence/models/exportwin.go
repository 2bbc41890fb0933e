package models

import (
	"time"

	"github.com/datahub/backend/internal/domain/exportwin"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExportWinModel is the persistence model for export wins.
// Breakdowns and the customer response travel with the win as jsonb.
type ExportWinModel struct {
	BaseModel
	AdviserID                   uuid.UUID                         `gorm:"type:uuid;not null;index"`
	CompanyID                   uuid.UUID                         `gorm:"type:uuid;not null;index"`
	CompanyContactIDs           UUIDList                          `gorm:"type:jsonb"`
	CustomerName                string                            `gorm:"type:varchar(255)"`
	CustomerEmailAddress        string                            `gorm:"type:varchar(255)"`
	CountryID                   uuid.UUID                         `gorm:"type:uuid"`
	SectorID                    uuid.UUID                         `gorm:"type:uuid"`
	Date                        shared.Date                       `gorm:"type:date"`
	Description                 string                            `gorm:"type:text"`
	BusinessPotentialID         *uuid.UUID                        `gorm:"type:uuid"`
	ExportExperienceID          *uuid.UUID                        `gorm:"type:uuid"`
	Breakdowns                  JSON[[]exportwin.Breakdown]       `gorm:"type:jsonb"`
	TotalExpectedExportValue    decimal.Decimal                   `gorm:"type:decimal(19,0);not null;default:0"`
	TotalExpectedNonExportValue decimal.Decimal                   `gorm:"type:decimal(19,0);not null;default:0"`
	TotalExpectedODIValue       decimal.Decimal                   `gorm:"column:total_expected_odi_value;type:decimal(19,0);not null;default:0"`
	IsPersonallyConfirmed       bool                              `gorm:"not null;default:false"`
	IsLineManagerConfirmed      bool                              `gorm:"not null;default:false"`
	LeadOfficerID               uuid.UUID                         `gorm:"type:uuid;index"`
	TeamTypeID                  *uuid.UUID                        `gorm:"type:uuid"`
	HQTeamID                    *uuid.UUID                        `gorm:"column:hq_team_id;type:uuid"`
	TeamMemberIDs               UUIDList                          `gorm:"type:jsonb"`
	CustomerResponse            JSON[*exportwin.CustomerResponse] `gorm:"type:jsonb"`
	FirstSent                   *time.Time
	LastSent                    *time.Time
}

// TableName returns the table name for GORM
func (ExportWinModel) TableName() string {
	return "export_wins"
}

// ToDomain converts the persistence model to a domain Win entity.
func (m *ExportWinModel) ToDomain() *exportwin.Win {
	breakdowns := m.Breakdowns.Data
	if breakdowns == nil {
		breakdowns = []exportwin.Breakdown{}
	}
	return &exportwin.Win{
		BaseEntity:                  m.BaseModel.ToDomain(),
		AdviserID:                   m.AdviserID,
		CompanyID:                   m.CompanyID,
		CompanyContactIDs:           uuids(m.CompanyContactIDs),
		CustomerName:                m.CustomerName,
		CustomerEmailAddress:        m.CustomerEmailAddress,
		CountryID:                   m.CountryID,
		SectorID:                    m.SectorID,
		Date:                        m.Date,
		Description:                 m.Description,
		BusinessPotentialID:         m.BusinessPotentialID,
		ExportExperienceID:          m.ExportExperienceID,
		Breakdowns:                  breakdowns,
		TotalExpectedExportValue:    m.TotalExpectedExportValue,
		TotalExpectedNonExportValue: m.TotalExpectedNonExportValue,
		TotalExpectedODIValue:       m.TotalExpectedODIValue,
		IsPersonallyConfirmed:       m.IsPersonallyConfirmed,
		IsLineManagerConfirmed:      m.IsLineManagerConfirmed,
		LeadOfficerID:               m.LeadOfficerID,
		TeamTypeID:                  m.TeamTypeID,
		HQTeamID:                    m.HQTeamID,
		TeamMemberIDs:               uuids(m.TeamMemberIDs),
		CustomerResponse:            m.CustomerResponse.Data,
		FirstSent:                   m.FirstSent,
		LastSent:                    m.LastSent,
	}
}

// ExportWinModelFromDomain creates a new persistence model from a domain Win entity.
func ExportWinModelFromDomain(w *exportwin.Win) *ExportWinModel {
	breakdowns := w.Breakdowns
	if breakdowns == nil {
		breakdowns = []exportwin.Breakdown{}
	}
	m := &ExportWinModel{
		AdviserID:                   w.AdviserID,
		CompanyID:                   w.CompanyID,
		CompanyContactIDs:           NewUUIDList(w.CompanyContactIDs),
		CustomerName:                w.CustomerName,
		CustomerEmailAddress:        w.CustomerEmailAddress,
		CountryID:                   w.CountryID,
		SectorID:                    w.SectorID,
		Date:                        w.Date,
		Description:                 w.Description,
		BusinessPotentialID:         w.BusinessPotentialID,
		ExportExperienceID:          w.ExportExperienceID,
		Breakdowns:                  NewJSON(breakdowns),
		TotalExpectedExportValue:    w.TotalExpectedExportValue,
		TotalExpectedNonExportValue: w.TotalExpectedNonExportValue,
		TotalExpectedODIValue:       w.TotalExpectedODIValue,
		IsPersonallyConfirmed:       w.IsPersonallyConfirmed,
		IsLineManagerConfirmed:      w.IsLineManagerConfirmed,
		LeadOfficerID:               w.LeadOfficerID,
		TeamTypeID:                  w.TeamTypeID,
		HQTeamID:                    w.HQTeamID,
		TeamMemberIDs:               NewUUIDList(w.TeamMemberIDs),
		CustomerResponse:            NewJSON(w.CustomerResponse),
		FirstSent:                   w.FirstSent,
		LastSent:                    w.LastSent,
	}
	m.FromDomainBaseEntity(w.BaseEntity)
	return m
}

// CustomerResponseTokenModel is the persistence model for customer response tokens.
type CustomerResponseTokenModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerResponseID uuid.UUID `gorm:"type:uuid;not null;index"`
	CompanyContactID   uuid.UUID `gorm:"type:uuid;not null"`
	ExpiresOn          time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerResponseTokenModel) TableName() string {
	return "customer_response_tokens"
}

// ToDomain converts the persistence model to a domain CustomerResponseToken.
func (m *CustomerResponseTokenModel) ToDomain() *exportwin.CustomerResponseToken {
	return &exportwin.CustomerResponseToken{
		ID:                 m.ID,
		CustomerResponseID: m.CustomerResponseID,
		CompanyContactID:   m.CompanyContactID,
		ExpiresOn:          m.ExpiresOn,
	}
}

// CustomerResponseTokenModelFromDomain creates a new persistence model from a domain token.
func CustomerResponseTokenModelFromDomain(t *exportwin.CustomerResponseToken) *CustomerResponseTokenModel {
	return &CustomerResponseTokenModel{
		ID:                 t.ID,
		CustomerResponseID: t.CustomerResponseID,
		CompanyContactID:   t.CompanyContactID,
		ExpiresOn:          t.ExpiresOn,
	}
}
