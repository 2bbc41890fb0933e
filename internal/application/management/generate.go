package management

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/datahub/backend/internal/application/audit"
	"github.com/datahub/backend/internal/domain/company"
	"github.com/datahub/backend/internal/domain/metadata"
	"github.com/datahub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MaxContactsPerCompany bounds the contacts generated for each company
const MaxContactsPerCompany = 3

// Generator creates fake companies and contacts for development environments
type Generator struct {
	tx        shared.TransactionManager
	companies company.Repository
	contacts  company.ContactRepository
	recorder  *audit.Recorder
	faker     *gofakeit.Faker
	logger    *zap.Logger
}

// NewGenerator creates a Generator. A zero seed picks a random one.
func NewGenerator(
	tx shared.TransactionManager,
	companies company.Repository,
	contacts company.ContactRepository,
	recorder *audit.Recorder,
	seed uint64,
	logger *zap.Logger,
) *Generator {
	return &Generator{
		tx:        tx,
		companies: companies,
		contacts:  contacts,
		recorder:  recorder,
		faker:     gofakeit.New(seed),
		logger:    logger,
	}
}

// GenerateCompanies creates n UK companies, each with one primary contact
// and up to two more
func (g *Generator) GenerateCompanies(ctx context.Context, n int) (*Summary, error) {
	if n < 0 {
		return nil, shared.NewBadRequestError("The number of companies cannot be negative.")
	}
	summary := &Summary{}
	for i := 0; i < n; i++ {
		c := g.fakeCompany()
		contacts := g.fakeContacts(c)
		err := g.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := g.companies.Save(ctx, c); err != nil {
				return err
			}
			if err := g.recorder.Record(ctx, company.AggregateType, c.ID, c, nil, ""); err != nil {
				return err
			}
			for _, contact := range contacts {
				if err := g.contacts.Save(ctx, contact); err != nil {
					return err
				}
				if err := g.recorder.Record(ctx, company.ContactAggregateType, contact.ID, contact, nil, ""); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			summary.Failed++
			g.logger.Warn("Failed to generate company", zap.String("name", c.Name), zap.Error(err))
			continue
		}
		g.recorder.Saved(ctx, company.AggregateType, c.ID)
		for _, contact := range contacts {
			g.recorder.Saved(ctx, company.ContactAggregateType, contact.ID)
		}
		summary.Succeeded++
	}
	g.logger.Info("Generated companies",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (g *Generator) fakeCompany() *company.Company {
	f := g.faker
	c := company.NewCompany(fmt.Sprintf("%s %s", f.Company(), f.CompanySuffix()), nil)
	c.Website = f.URL()
	c.Description = f.Sentence(8)
	c.Address1 = f.Street()
	c.AddressTown = f.City()
	c.AddressPostcode = f.Zip()
	country := metadata.CountryUnitedKingdom
	c.AddressCountryID = &country
	return c
}

func (g *Generator) fakeContacts(c *company.Company) []*company.Contact {
	f := g.faker
	count := f.Number(1, MaxContactsPerCompany)
	contacts := make([]*company.Contact, 0, count)
	for i := 0; i < count; i++ {
		contact := company.NewContact(f.FirstName(), f.LastName(), nil)
		contact.CompanyID = &c.ID
		contact.Primary = i == 0
		contact.JobTitle = f.JobTitle()
		contact.Email = f.Email()
		contact.FullTelephoneNumber = f.Phone()
		contact.AddressSameAsCompany = true
		contacts = append(contacts, contact)
	}
	return contacts
}
