package models

import (
	"github.com/datahub/backend/internal/domain/investment"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvestmentProjectModel is the persistence model for investment projects.
type InvestmentProjectModel struct {
	BaseModel
	Name                        string                   `gorm:"type:varchar(255);not null"`
	Description                 string                   `gorm:"type:text"`
	NDASigned                   bool                     `gorm:"column:nda_signed;not null;default:false"`
	EstimatedLandDate           *shared.Date             `gorm:"type:date"`
	ActualLandDate              *shared.Date             `gorm:"type:date"`
	InvestmentTypeID            *uuid.UUID               `gorm:"type:uuid"`
	StageID                     *uuid.UUID               `gorm:"type:uuid"`
	Status                      investment.ProjectStatus `gorm:"type:varchar(255);not null;default:'ongoing'"`
	InvestorCompanyID           *uuid.UUID               `gorm:"type:uuid;index"`
	IntermediateCompanyID       *uuid.UUID               `gorm:"type:uuid;index"`
	ClientContactIDs            UUIDList                 `gorm:"type:jsonb"`
	ClientRelationshipManagerID *uuid.UUID               `gorm:"type:uuid"`
	ReferralSourceAdviserID     *uuid.UUID               `gorm:"type:uuid"`
	SectorID                    *uuid.UUID               `gorm:"type:uuid"`
	TotalInvestment             *decimal.Decimal         `gorm:"type:decimal(19,0)"`
	ForeignEquityInvestment     *decimal.Decimal         `gorm:"type:decimal(19,0)"`
	NumberNewJobs               *int
	LikelihoodToLandID          *uuid.UUID `gorm:"type:uuid"`
	ProjectManagerID            *uuid.UUID `gorm:"type:uuid"`
	ProjectAssuranceAdviserID   *uuid.UUID `gorm:"type:uuid"`
	TeamMemberIDs               UUIDList   `gorm:"type:jsonb"`
	ProjectCode                 string     `gorm:"type:varchar(255);index"`
}

// TableName returns the table name for GORM
func (InvestmentProjectModel) TableName() string {
	return "investment_projects"
}

// ToDomain converts the persistence model to a domain Project entity.
func (m *InvestmentProjectModel) ToDomain() *investment.Project {
	return &investment.Project{
		BaseEntity:                  m.BaseModel.ToDomain(),
		Name:                        m.Name,
		Description:                 m.Description,
		NDASigned:                   m.NDASigned,
		EstimatedLandDate:           m.EstimatedLandDate,
		ActualLandDate:              m.ActualLandDate,
		InvestmentTypeID:            m.InvestmentTypeID,
		StageID:                     m.StageID,
		Status:                      m.Status,
		InvestorCompanyID:           m.InvestorCompanyID,
		IntermediateCompanyID:       m.IntermediateCompanyID,
		ClientContactIDs:            uuids(m.ClientContactIDs),
		ClientRelationshipManagerID: m.ClientRelationshipManagerID,
		ReferralSourceAdviserID:     m.ReferralSourceAdviserID,
		SectorID:                    m.SectorID,
		TotalInvestment:             m.TotalInvestment,
		ForeignEquityInvestment:     m.ForeignEquityInvestment,
		NumberNewJobs:               m.NumberNewJobs,
		LikelihoodToLandID:          m.LikelihoodToLandID,
		ProjectManagerID:            m.ProjectManagerID,
		ProjectAssuranceAdviserID:   m.ProjectAssuranceAdviserID,
		TeamMemberIDs:               uuids(m.TeamMemberIDs),
		ProjectCode:                 m.ProjectCode,
	}
}

// InvestmentProjectModelFromDomain creates a new persistence model from a domain Project entity.
func InvestmentProjectModelFromDomain(p *investment.Project) *InvestmentProjectModel {
	m := &InvestmentProjectModel{
		Name:                        p.Name,
		Description:                 p.Description,
		NDASigned:                   p.NDASigned,
		EstimatedLandDate:           p.EstimatedLandDate,
		ActualLandDate:              p.ActualLandDate,
		InvestmentTypeID:            p.InvestmentTypeID,
		StageID:                     p.StageID,
		Status:                      p.Status,
		InvestorCompanyID:           p.InvestorCompanyID,
		IntermediateCompanyID:       p.IntermediateCompanyID,
		ClientContactIDs:            NewUUIDList(p.ClientContactIDs),
		ClientRelationshipManagerID: p.ClientRelationshipManagerID,
		ReferralSourceAdviserID:     p.ReferralSourceAdviserID,
		SectorID:                    p.SectorID,
		TotalInvestment:             p.TotalInvestment,
		ForeignEquityInvestment:     p.ForeignEquityInvestment,
		NumberNewJobs:               p.NumberNewJobs,
		LikelihoodToLandID:          p.LikelihoodToLandID,
		ProjectManagerID:            p.ProjectManagerID,
		ProjectAssuranceAdviserID:   p.ProjectAssuranceAdviserID,
		TeamMemberIDs:               NewUUIDList(p.TeamMemberIDs),
		ProjectCode:                 p.ProjectCode,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// PropositionModel is the persistence model for propositions.
type PropositionModel struct {
	BaseModel
	InvestmentProjectID uuid.UUID                    `gorm:"type:uuid;not null;index"`
	AdviserID           uuid.UUID                    `gorm:"type:uuid;not null;index"`
	Deadline            shared.Date                  `gorm:"type:date;not null"`
	Status              investment.PropositionStatus `gorm:"type:varchar(255);not null;default:'ongoing'"`
	Name                string                       `gorm:"type:varchar(255);not null"`
	Scope               string                       `gorm:"type:text;not null"`
	Details             string                       `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PropositionModel) TableName() string {
	return "propositions"
}

// ToDomain converts the persistence model to a domain Proposition entity.
func (m *PropositionModel) ToDomain() *investment.Proposition {
	return &investment.Proposition{
		BaseEntity:          m.BaseModel.ToDomain(),
		InvestmentProjectID: m.InvestmentProjectID,
		AdviserID:           m.AdviserID,
		Deadline:            m.Deadline,
		Status:              m.Status,
		Name:                m.Name,
		Scope:               m.Scope,
		Details:             m.Details,
	}
}

// PropositionModelFromDomain creates a new persistence model from a domain Proposition entity.
func PropositionModelFromDomain(p *investment.Proposition) *PropositionModel {
	m := &PropositionModel{
		InvestmentProjectID: p.InvestmentProjectID,
		AdviserID:           p.AdviserID,
		Deadline:            p.Deadline,
		Status:              p.Status,
		Name:                p.Name,
		Scope:               p.Scope,
		Details:             p.Details,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// PropositionDocumentModel is the persistence model for documents attached to propositions.
type PropositionDocumentModel struct {
	EntityDocumentModel
	PropositionID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (PropositionDocumentModel) TableName() string {
	return "proposition_documents"
}

// ToDomain converts the persistence model to a domain PropositionDocument.
func (m *PropositionDocumentModel) ToDomain() *investment.PropositionDocument {
	return &investment.PropositionDocument{
		EntityDocument: m.EntityDocumentModel.ToDomain(),
		PropositionID:  m.PropositionID,
	}
}

// PropositionDocumentModelFromDomain creates a new persistence model from a domain PropositionDocument.
func PropositionDocumentModelFromDomain(d *investment.PropositionDocument) *PropositionDocumentModel {
	m := &PropositionDocumentModel{PropositionID: d.PropositionID}
	m.FromDomainEntityDocument(d.EntityDocument)
	return m
}
