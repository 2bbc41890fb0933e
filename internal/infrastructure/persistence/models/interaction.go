package models

import (
	"github.com/datahub/backend/internal/domain/interaction"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InteractionModel is the persistence model for the Interaction domain entity.
// List valued fields are stored as jsonb.
type InteractionModel struct {
	BaseModel
	ArchivableModel
	Kind                      interaction.Kind                   `gorm:"type:varchar(255);not null;index"`
	Status                    interaction.Status                 `gorm:"type:varchar(255);not null;default:'complete'"`
	Theme                     *interaction.Theme                 `gorm:"type:varchar(255)"`
	Date                      shared.Date                        `gorm:"type:date;not null;index"`
	CompanyID                 *uuid.UUID                         `gorm:"type:uuid;index"`
	ContactIDs                UUIDList                           `gorm:"type:jsonb"`
	DITParticipants           JSON[[]interaction.DITParticipant] `gorm:"column:dit_participants;type:jsonb"`
	EventID                   *uuid.UUID                         `gorm:"type:uuid"`
	ServiceID                 *uuid.UUID                         `gorm:"type:uuid"`
	ServiceAnswers            JSON[interaction.ServiceAnswers]   `gorm:"type:jsonb"`
	Subject                   string                             `gorm:"type:text;not null"`
	Notes                     string                             `gorm:"type:text"`
	CommunicationChannelID    *uuid.UUID                         `gorm:"type:uuid"`
	ServiceDeliveryStatusID   *uuid.UUID                         `gorm:"type:uuid"`
	InvestmentProjectID       *uuid.UUID                         `gorm:"type:uuid;index"`
	GrantAmountOffered        *decimal.Decimal                   `gorm:"type:decimal(19,2)"`
	NetCompanyReceipt         *decimal.Decimal                   `gorm:"type:decimal(19,2)"`
	WasPolicyFeedbackProvided bool                               `gorm:"not null;default:false"`
	PolicyAreaIDs             UUIDList                           `gorm:"type:jsonb"`
	PolicyIssueTypeIDs        UUIDList                           `gorm:"type:jsonb"`
	PolicyFeedbackNotes       string                             `gorm:"type:text"`
	WereCountriesDiscussed    *bool
	ExportCountries           JSON[[]interaction.ExportCountry] `gorm:"type:jsonb"`
	Source                    JSON[map[string]any]              `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (InteractionModel) TableName() string {
	return "interactions"
}

// ToDomain converts the persistence model to a domain Interaction entity.
func (m *InteractionModel) ToDomain() *interaction.Interaction {
	participants := m.DITParticipants.Data
	if participants == nil {
		participants = []interaction.DITParticipant{}
	}
	countries := m.ExportCountries.Data
	if countries == nil {
		countries = []interaction.ExportCountry{}
	}
	return &interaction.Interaction{
		BaseEntity:                m.BaseModel.ToDomain(),
		Archivable:                m.ArchivableModel.ToDomain(),
		Kind:                      m.Kind,
		Status:                    m.Status,
		Theme:                     m.Theme,
		Date:                      m.Date,
		CompanyID:                 m.CompanyID,
		ContactIDs:                uuids(m.ContactIDs),
		DITParticipants:           participants,
		EventID:                   m.EventID,
		ServiceID:                 m.ServiceID,
		ServiceAnswers:            m.ServiceAnswers.Data,
		Subject:                   m.Subject,
		Notes:                     m.Notes,
		CommunicationChannelID:    m.CommunicationChannelID,
		ServiceDeliveryStatusID:   m.ServiceDeliveryStatusID,
		InvestmentProjectID:       m.InvestmentProjectID,
		GrantAmountOffered:        m.GrantAmountOffered,
		NetCompanyReceipt:         m.NetCompanyReceipt,
		WasPolicyFeedbackProvided: m.WasPolicyFeedbackProvided,
		PolicyAreaIDs:             uuids(m.PolicyAreaIDs),
		PolicyIssueTypeIDs:        uuids(m.PolicyIssueTypeIDs),
		PolicyFeedbackNotes:       m.PolicyFeedbackNotes,
		WereCountriesDiscussed:    m.WereCountriesDiscussed,
		ExportCountries:           countries,
		Source:                    m.Source.Data,
	}
}

// InteractionModelFromDomain creates a new persistence model from a domain Interaction entity.
func InteractionModelFromDomain(i *interaction.Interaction) *InteractionModel {
	participants := i.DITParticipants
	if participants == nil {
		participants = []interaction.DITParticipant{}
	}
	countries := i.ExportCountries
	if countries == nil {
		countries = []interaction.ExportCountry{}
	}
	m := &InteractionModel{
		Kind:                      i.Kind,
		Status:                    i.Status,
		Theme:                     i.Theme,
		Date:                      i.Date,
		CompanyID:                 i.CompanyID,
		ContactIDs:                NewUUIDList(i.ContactIDs),
		DITParticipants:           NewJSON(participants),
		EventID:                   i.EventID,
		ServiceID:                 i.ServiceID,
		ServiceAnswers:            NewJSON(i.ServiceAnswers),
		Subject:                   i.Subject,
		Notes:                     i.Notes,
		CommunicationChannelID:    i.CommunicationChannelID,
		ServiceDeliveryStatusID:   i.ServiceDeliveryStatusID,
		InvestmentProjectID:       i.InvestmentProjectID,
		GrantAmountOffered:        i.GrantAmountOffered,
		NetCompanyReceipt:         i.NetCompanyReceipt,
		WasPolicyFeedbackProvided: i.WasPolicyFeedbackProvided,
		PolicyAreaIDs:             NewUUIDList(i.PolicyAreaIDs),
		PolicyIssueTypeIDs:        NewUUIDList(i.PolicyIssueTypeIDs),
		PolicyFeedbackNotes:       i.PolicyFeedbackNotes,
		WereCountriesDiscussed:    i.WereCountriesDiscussed,
		ExportCountries:           NewJSON(countries),
		Source:                    NewJSON(i.Source),
	}
	m.FromDomainBaseEntity(i.BaseEntity)
	m.FromDomainArchivable(i.Archivable)
	return m
}
