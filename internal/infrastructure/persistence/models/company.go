package models

import (
	"time"

	"github.com/datahub/backend/internal/domain/company"
	"github.com/google/uuid"
)

// CompanyModel is the persistence model for the Company domain entity.
type CompanyModel struct {
	BaseModel
	ArchivableModel
	Name                       string                 `gorm:"type:varchar(255);not null;index"`
	TradingNames               JSON[[]string]         `gorm:"type:jsonb"`
	CompanyNumber              string                 `gorm:"type:varchar(255);index"`
	VATNumber                  string                 `gorm:"column:vat_number;type:varchar(255)"`
	ReferenceCode              string                 `gorm:"type:varchar(255)"`
	BusinessTypeID             *uuid.UUID             `gorm:"type:uuid"`
	SectorID                   *uuid.UUID             `gorm:"type:uuid"`
	EmployeeRangeID            *uuid.UUID             `gorm:"type:uuid"`
	TurnoverRangeID            *uuid.UUID             `gorm:"type:uuid"`
	UKRegionID                 *uuid.UUID             `gorm:"column:uk_region_id;type:uuid"`
	Description                string                 `gorm:"type:text"`
	Website                    string                 `gorm:"type:varchar(255)"`
	Address1                   string                 `gorm:"column:address_1;type:varchar(255)"`
	Address2                   string                 `gorm:"column:address_2;type:varchar(255)"`
	AddressTown                string                 `gorm:"type:varchar(255)"`
	AddressCounty              string                 `gorm:"type:varchar(255)"`
	AddressPostcode            string                 `gorm:"type:varchar(255)"`
	AddressCountryID           *uuid.UUID             `gorm:"type:uuid"`
	RegisteredAddress1         string                 `gorm:"column:registered_address_1;type:varchar(255)"`
	RegisteredAddress2         string                 `gorm:"column:registered_address_2;type:varchar(255)"`
	RegisteredAddressTown      string                 `gorm:"type:varchar(255)"`
	RegisteredAddressCounty    string                 `gorm:"type:varchar(255)"`
	RegisteredAddressPostcode  string                 `gorm:"type:varchar(255)"`
	RegisteredAddressCountryID *uuid.UUID             `gorm:"type:uuid"`
	HeadquarterTypeID          *uuid.UUID             `gorm:"type:uuid"`
	GlobalHeadquartersID       *uuid.UUID             `gorm:"type:uuid;index"`
	OneListAccountOwnerID      *uuid.UUID             `gorm:"type:uuid"`
	ClassificationID           *uuid.UUID             `gorm:"type:uuid"`
	ExportExperienceCategoryID *uuid.UUID             `gorm:"type:uuid"`
	TransferredToID            *uuid.UUID             `gorm:"type:uuid"`
	TransferReason             company.TransferReason `gorm:"type:varchar(255)"`
	TransferredOn              *time.Time
	TransferredByID            *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// ToDomain converts the persistence model to a domain Company entity.
func (m *CompanyModel) ToDomain() *company.Company {
	tradingNames := m.TradingNames.Data
	if tradingNames == nil {
		tradingNames = []string{}
	}
	return &company.Company{
		BaseEntity:                 m.BaseModel.ToDomain(),
		Archivable:                 m.ArchivableModel.ToDomain(),
		Name:                       m.Name,
		TradingNames:               tradingNames,
		CompanyNumber:              m.CompanyNumber,
		VATNumber:                  m.VATNumber,
		ReferenceCode:              m.ReferenceCode,
		BusinessTypeID:             m.BusinessTypeID,
		SectorID:                   m.SectorID,
		EmployeeRangeID:            m.EmployeeRangeID,
		TurnoverRangeID:            m.TurnoverRangeID,
		UKRegionID:                 m.UKRegionID,
		Description:                m.Description,
		Website:                    m.Website,
		Address1:                   m.Address1,
		Address2:                   m.Address2,
		AddressTown:                m.AddressTown,
		AddressCounty:              m.AddressCounty,
		AddressPostcode:            m.AddressPostcode,
		AddressCountryID:           m.AddressCountryID,
		RegisteredAddress1:         m.RegisteredAddress1,
		RegisteredAddress2:         m.RegisteredAddress2,
		RegisteredAddressTown:      m.RegisteredAddressTown,
		RegisteredAddressCounty:    m.RegisteredAddressCounty,
		RegisteredAddressPostcode:  m.RegisteredAddressPostcode,
		RegisteredAddressCountryID: m.RegisteredAddressCountryID,
		HeadquarterTypeID:          m.HeadquarterTypeID,
		GlobalHeadquartersID:       m.GlobalHeadquartersID,
		OneListAccountOwnerID:      m.OneListAccountOwnerID,
		ClassificationID:           m.ClassificationID,
		ExportExperienceCategoryID: m.ExportExperienceCategoryID,
		TransferredToID:            m.TransferredToID,
		TransferReason:             m.TransferReason,
		TransferredOn:              m.TransferredOn,
		TransferredByID:            m.TransferredByID,
	}
}

// FromDomain populates the persistence model from a domain Company entity.
func (m *CompanyModel) FromDomain(c *company.Company) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.FromDomainArchivable(c.Archivable)
	tradingNames := c.TradingNames
	if tradingNames == nil {
		tradingNames = []string{}
	}
	m.Name = c.Name
	m.TradingNames = NewJSON(tradingNames)
	m.CompanyNumber = c.CompanyNumber
	m.VATNumber = c.VATNumber
	m.ReferenceCode = c.ReferenceCode
	m.BusinessTypeID = c.BusinessTypeID
	m.SectorID = c.SectorID
	m.EmployeeRangeID = c.EmployeeRangeID
	m.TurnoverRangeID = c.TurnoverRangeID
	m.UKRegionID = c.UKRegionID
	m.Description = c.Description
	m.Website = c.Website
	m.Address1 = c.Address1
	m.Address2 = c.Address2
	m.AddressTown = c.AddressTown
	m.AddressCounty = c.AddressCounty
	m.AddressPostcode = c.AddressPostcode
	m.AddressCountryID = c.AddressCountryID
	m.RegisteredAddress1 = c.RegisteredAddress1
	m.RegisteredAddress2 = c.RegisteredAddress2
	m.RegisteredAddressTown = c.RegisteredAddressTown
	m.RegisteredAddressCounty = c.RegisteredAddressCounty
	m.RegisteredAddressPostcode = c.RegisteredAddressPostcode
	m.RegisteredAddressCountryID = c.RegisteredAddressCountryID
	m.HeadquarterTypeID = c.HeadquarterTypeID
	m.GlobalHeadquartersID = c.GlobalHeadquartersID
	m.OneListAccountOwnerID = c.OneListAccountOwnerID
	m.ClassificationID = c.ClassificationID
	m.ExportExperienceCategoryID = c.ExportExperienceCategoryID
	m.TransferredToID = c.TransferredToID
	m.TransferReason = c.TransferReason
	m.TransferredOn = c.TransferredOn
	m.TransferredByID = c.TransferredByID
}

// CompanyModelFromDomain creates a new persistence model from a domain Company entity.
func CompanyModelFromDomain(c *company.Company) *CompanyModel {
	m := &CompanyModel{}
	m.FromDomain(c)
	return m
}

// ContactModel is the persistence model for the Contact domain entity.
type ContactModel struct {
	BaseModel
	ArchivableModel
	Title                string     `gorm:"type:varchar(255)"`
	FirstName            string     `gorm:"type:varchar(255);not null"`
	LastName             string     `gorm:"type:varchar(255);not null"`
	JobTitle             string     `gorm:"type:varchar(255)"`
	CompanyID            *uuid.UUID `gorm:"type:uuid;index"`
	Primary              bool       `gorm:"not null;default:false"`
	FullTelephoneNumber  string     `gorm:"type:varchar(255)"`
	Email                string     `gorm:"type:varchar(255)"`
	AddressSameAsCompany bool       `gorm:"not null;default:false"`
	Address1             string     `gorm:"column:address_1;type:varchar(255)"`
	Address2             string     `gorm:"column:address_2;type:varchar(255)"`
	AddressTown          string     `gorm:"type:varchar(255)"`
	AddressCounty        string     `gorm:"type:varchar(255)"`
	AddressPostcode      string     `gorm:"type:varchar(255)"`
	AddressCountryID     *uuid.UUID `gorm:"type:uuid"`
	AddressAreaID        *uuid.UUID `gorm:"type:uuid"`
	Notes                string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ContactModel) TableName() string {
	return "contacts"
}

// ToDomain converts the persistence model to a domain Contact entity.
func (m *ContactModel) ToDomain() *company.Contact {
	return &company.Contact{
		BaseEntity:           m.BaseModel.ToDomain(),
		Archivable:           m.ArchivableModel.ToDomain(),
		Title:                m.Title,
		FirstName:            m.FirstName,
		LastName:             m.LastName,
		JobTitle:             m.JobTitle,
		CompanyID:            m.CompanyID,
		Primary:              m.Primary,
		FullTelephoneNumber:  m.FullTelephoneNumber,
		Email:                m.Email,
		AddressSameAsCompany: m.AddressSameAsCompany,
		Address1:             m.Address1,
		Address2:             m.Address2,
		AddressTown:          m.AddressTown,
		AddressCounty:        m.AddressCounty,
		AddressPostcode:      m.AddressPostcode,
		AddressCountryID:     m.AddressCountryID,
		AddressAreaID:        m.AddressAreaID,
		Notes:                m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Contact entity.
func (m *ContactModel) FromDomain(c *company.Contact) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.FromDomainArchivable(c.Archivable)
	m.Title = c.Title
	m.FirstName = c.FirstName
	m.LastName = c.LastName
	m.JobTitle = c.JobTitle
	m.CompanyID = c.CompanyID
	m.Primary = c.Primary
	m.FullTelephoneNumber = c.FullTelephoneNumber
	m.Email = c.Email
	m.AddressSameAsCompany = c.AddressSameAsCompany
	m.Address1 = c.Address1
	m.Address2 = c.Address2
	m.AddressTown = c.AddressTown
	m.AddressCounty = c.AddressCounty
	m.AddressPostcode = c.AddressPostcode
	m.AddressCountryID = c.AddressCountryID
	m.AddressAreaID = c.AddressAreaID
	m.Notes = c.Notes
}

// ContactModelFromDomain creates a new persistence model from a domain Contact entity.
func ContactModelFromDomain(c *company.Contact) *ContactModel {
	m := &ContactModel{}
	m.FromDomain(c)
	return m
}

// ReferralModel is the persistence model for company referrals.
type ReferralModel struct {
	BaseModel
	CompanyID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	ContactID     *uuid.UUID             `gorm:"type:uuid"`
	RecipientID   uuid.UUID              `gorm:"type:uuid;not null;index"`
	Subject       string                 `gorm:"type:varchar(255);not null"`
	Notes         string                 `gorm:"type:text"`
	Status        company.ReferralStatus `gorm:"type:varchar(255);not null;default:'outstanding'"`
	CompletedOn   *time.Time
	CompletedByID *uuid.UUID `gorm:"type:uuid"`
	InteractionID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ReferralModel) TableName() string {
	return "company_referrals"
}

// ToDomain converts the persistence model to a domain Referral entity.
func (m *ReferralModel) ToDomain() *company.Referral {
	return &company.Referral{
		BaseEntity:    m.BaseModel.ToDomain(),
		CompanyID:     m.CompanyID,
		ContactID:     m.ContactID,
		RecipientID:   m.RecipientID,
		Subject:       m.Subject,
		Notes:         m.Notes,
		Status:        m.Status,
		CompletedOn:   m.CompletedOn,
		CompletedByID: m.CompletedByID,
		InteractionID: m.InteractionID,
	}
}

// ReferralModelFromDomain creates a new persistence model from a domain Referral entity.
func ReferralModelFromDomain(r *company.Referral) *ReferralModel {
	m := &ReferralModel{
		CompanyID:     r.CompanyID,
		ContactID:     r.ContactID,
		RecipientID:   r.RecipientID,
		Subject:       r.Subject,
		Notes:         r.Notes,
		Status:        r.Status,
		CompletedOn:   r.CompletedOn,
		CompletedByID: r.CompletedByID,
		InteractionID: r.InteractionID,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}
