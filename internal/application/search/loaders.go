package search

import (
	"context"
	"strings"

	"github.com/datahub/backend/internal/domain/adviser"
	"github.com/datahub/backend/internal/domain/company"
	"github.com/datahub/backend/internal/domain/interaction"
	"github.com/datahub/backend/internal/domain/investment"
	"github.com/datahub/backend/internal/domain/metadata"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// names resolves the display names of records referenced by a batch
type names struct {
	metadata  metadata.Repository
	companies company.Repository
	contacts  company.ContactRepository
	advisers  adviser.Repository

	meta         map[uuid.UUID]string
	companyNames map[uuid.UUID]string
	contactNames map[uuid.UUID]string
	adviserNames map[uuid.UUID]string
}

type nameIDs struct {
	meta      []uuid.UUID
	companies []uuid.UUID
	contacts  []uuid.UUID
	advisers  []uuid.UUID
}

func add(ids []uuid.UUID, id *uuid.UUID) []uuid.UUID {
	if id == nil {
		return ids
	}
	return append(ids, *id)
}

func (n *names) resolve(ctx context.Context, ids nameIDs) error {
	n.meta = map[uuid.UUID]string{}
	n.companyNames = map[uuid.UUID]string{}
	n.contactNames = map[uuid.UUID]string{}
	n.adviserNames = map[uuid.UUID]string{}

	if len(ids.meta) > 0 {
		m, err := n.metadata.Names(ctx, ids.meta)
		if err != nil {
			return err
		}
		n.meta = m
	}
	if len(ids.companies) > 0 {
		companies, err := n.companies.FindByIDs(ctx, ids.companies)
		if err != nil {
			return err
		}
		for _, c := range companies {
			n.companyNames[c.ID] = c.Name
		}
	}
	if len(ids.contacts) > 0 {
		contacts, err := n.contacts.FindByIDs(ctx, ids.contacts)
		if err != nil {
			return err
		}
		for i := range contacts {
			n.contactNames[contacts[i].ID] = contacts[i].Name()
		}
	}
	if len(ids.advisers) > 0 {
		advisers, err := n.advisers.FindByIDs(ctx, ids.advisers)
		if err != nil {
			return err
		}
		for i := range advisers {
			n.adviserNames[advisers[i].ID] = advisers[i].Name()
		}
	}
	return nil
}

func idName(id *uuid.UUID, lookup map[uuid.UUID]string) map[string]any {
	if id == nil {
		return nil
	}
	return map[string]any{"id": id.String(), "name": lookup[*id]}
}

func idNameList(ids []uuid.UUID, lookup map[uuid.UUID]string) []map[string]any {
	out := make([]map[string]any, 0, len(ids))
	for i := range ids {
		out = append(out, idName(&ids[i], lookup))
	}
	return out
}

func address(lookup map[uuid.UUID]string, line1, line2, town, county, postcode string, country *uuid.UUID) map[string]any {
	if strings.TrimSpace(line1+line2+town+county+postcode) == "" && country == nil {
		return nil
	}
	return map[string]any{
		"line_1":   line1,
		"line_2":   line2,
		"town":     town,
		"county":   county,
		"postcode": postcode,
		"country":  idName(country, lookup),
	}
}

func archivedFields(doc Document, a shared.Archivable) {
	doc["archived"] = a.Archived
	doc["archived_on"] = a.ArchivedOn
	doc["archived_reason"] = a.ArchivedReason
}

func baseFields(doc Document, b shared.BaseEntity) {
	doc["id"] = b.ID.String()
	doc["created_on"] = b.CreatedOn
	doc["modified_on"] = b.ModifiedOn
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, shared.ErrNotFound
	}
	return parsed, nil
}

// CompanyLoader maps companies to search documents
type CompanyLoader struct {
	companies company.Repository
	names     *names
}

// NewCompanyLoader creates a CompanyLoader
func NewCompanyLoader(companies company.Repository, advisers adviser.Repository, meta metadata.Repository) *CompanyLoader {
	return &CompanyLoader{
		companies: companies,
		names:     &names{metadata: meta, companies: companies, advisers: advisers},
	}
}

// Load returns the document of one company
func (l *CompanyLoader) Load(ctx context.Context, id string) (Document, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c, err := l.companies.FindByID(ctx, parsed)
	if err != nil {
		return nil, err
	}
	docs, err := l.documents(ctx, []company.Company{*c})
	if err != nil {
		return nil, err
	}
	return docs[0], nil
}

// Iterate maps every company in batches
func (l *CompanyLoader) Iterate(ctx context.Context, batchSize int, fn func([]Document) error) error {
	return l.companies.Iterate(ctx, batchSize, func(batch []company.Company) error {
		docs, err := l.documents(ctx, batch)
		if err != nil {
			return err
		}
		return fn(docs)
	})
}

func (l *CompanyLoader) documents(ctx context.Context, batch []company.Company) ([]Document, error) {
	var ids nameIDs
	for _, c := range batch {
		for _, id := range []*uuid.UUID{
			c.SectorID, c.UKRegionID, c.BusinessTypeID, c.EmployeeRangeID, c.TurnoverRangeID,
			c.HeadquarterTypeID, c.ClassificationID, c.AddressCountryID, c.RegisteredAddressCountryID,
			c.ExportExperienceCategoryID,
		} {
			ids.meta = add(ids.meta, id)
		}
		ids.companies = add(ids.companies, c.GlobalHeadquartersID)
		ids.advisers = add(ids.advisers, c.OneListAccountOwnerID)
	}
	if err := l.names.resolve(ctx, ids); err != nil {
		return nil, err
	}

	n := l.names
	docs := make([]Document, 0, len(batch))
	for _, c := range batch {
		addr := address(n.meta, c.Address1, c.Address2, c.AddressTown, c.AddressCounty,
			c.AddressPostcode, c.AddressCountryID)
		registered := address(n.meta, c.RegisteredAddress1, c.RegisteredAddress2,
			c.RegisteredAddressTown, c.RegisteredAddressCounty, c.RegisteredAddressPostcode,
			c.RegisteredAddressCountryID)
		doc := Document{
			"name":                       c.Name,
			"name_keyword":               c.Name,
			"trading_names":              c.TradingNames,
			"company_number":             c.CompanyNumber,
			"vat_number":                 c.VATNumber,
			"reference_code":             c.ReferenceCode,
			"description":                c.Description,
			"website":                    c.Website,
			"sector":                     idName(c.SectorID, n.meta),
			"uk_region":                  idName(c.UKRegionID, n.meta),
			"business_type":              idName(c.BusinessTypeID, n.meta),
			"employee_range":             idName(c.EmployeeRangeID, n.meta),
			"turnover_range":             idName(c.TurnoverRangeID, n.meta),
			"headquarter_type":           idName(c.HeadquarterTypeID, n.meta),
			"classification":             idName(c.ClassificationID, n.meta),
			"export_experience_category": idName(c.ExportExperienceCategoryID, n.meta),
			"global_headquarters":        idName(c.GlobalHeadquartersID, n.companyNames),
			"one_list_account_owner":     idName(c.OneListAccountOwnerID, n.adviserNames),
			"address":                    addr,
			"registered_address":         registered,
		}
		if c.TransferredToID != nil {
			doc["transferred_to"] = map[string]any{"id": c.TransferredToID.String()}
		}
		baseFields(doc, c.BaseEntity)
		archivedFields(doc, c.Archivable)
		docs = append(docs, doc)
	}
	return docs, nil
}

// ContactLoader maps contacts to search documents
type ContactLoader struct {
	contacts company.ContactRepository
	names    *names
}

// NewContactLoader creates a ContactLoader
func NewContactLoader(contacts company.ContactRepository, companies company.Repository, meta metadata.Repository) *ContactLoader {
	return &ContactLoader{
		contacts: contacts,
		names:    &names{metadata: meta, companies: companies, contacts: contacts},
	}
}

// Load returns the document of one contact
func (l *ContactLoader) Load(ctx context.Context, id string) (Document, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c, err := l.contacts.FindByID(ctx, parsed)
	if err != nil {
		return nil, err
	}
	docs, err := l.documents(ctx, []company.Contact{*c})
	if err != nil {
		return nil, err
	}
	return docs[0], nil
}

// Iterate maps every contact in batches
func (l *ContactLoader) Iterate(ctx context.Context, batchSize int, fn func([]Document) error) error {
	return l.contacts.Iterate(ctx, batchSize, func(batch []company.Contact) error {
		docs, err := l.documents(ctx, batch)
		if err != nil {
			return err
		}
		return fn(docs)
	})
}

func (l *ContactLoader) documents(ctx context.Context, batch []company.Contact) ([]Document, error) {
	var ids nameIDs
	for _, c := range batch {
		ids.meta = add(ids.meta, c.AddressCountryID)
		ids.meta = add(ids.meta, c.AddressAreaID)
		ids.companies = add(ids.companies, c.CompanyID)
	}
	if err := l.names.resolve(ctx, ids); err != nil {
		return nil, err
	}

	n := l.names
	docs := make([]Document, 0, len(batch))
	for i := range batch {
		c := &batch[i]
		addr := address(n.meta, c.Address1, c.Address2, c.AddressTown, c.AddressCounty,
			c.AddressPostcode, c.AddressCountryID)
		doc := Document{
			"name":                    c.Name(),
			"name_keyword":            c.Name(),
			"title":                   c.Title,
			"first_name":              c.FirstName,
			"last_name":               c.LastName,
			"job_title":               c.JobTitle,
			"email":                   c.Email,
			"full_telephone_number":   c.FullTelephoneNumber,
			"primary":                 c.Primary,
			"company":                 idName(c.CompanyID, n.companyNames),
			"address_same_as_company": c.AddressSameAsCompany,
			"address_area":            idName(c.AddressAreaID, n.meta),
			"address":                 addr,
			"notes":                   c.Notes,
		}
		baseFields(doc, c.BaseEntity)
		archivedFields(doc, c.Archivable)
		docs = append(docs, doc)
	}
	return docs, nil
}

// InteractionLoader maps interactions to search documents
type InteractionLoader struct {
	interactions interaction.Repository
	names        *names
}

// NewInteractionLoader creates an InteractionLoader
func NewInteractionLoader(
	interactions interaction.Repository,
	companies company.Repository,
	contacts company.ContactRepository,
	advisers adviser.Repository,
	meta metadata.Repository,
) *InteractionLoader {
	return &InteractionLoader{
		interactions: interactions,
		names:        &names{metadata: meta, companies: companies, contacts: contacts, advisers: advisers},
	}
}

// Load returns the document of one interaction
func (l *InteractionLoader) Load(ctx context.Context, id string) (Document, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}
	i, err := l.interactions.FindByID(ctx, parsed)
	if err != nil {
		return nil, err
	}
	docs, err := l.documents(ctx, []interaction.Interaction{*i})
	if err != nil {
		return nil, err
	}
	return docs[0], nil
}

// Iterate maps every interaction in batches
func (l *InteractionLoader) Iterate(ctx context.Context, batchSize int, fn func([]Document) error) error {
	return l.interactions.Iterate(ctx, batchSize, func(batch []interaction.Interaction) error {
		docs, err := l.documents(ctx, batch)
		if err != nil {
			return err
		}
		return fn(docs)
	})
}

func (l *InteractionLoader) documents(ctx context.Context, batch []interaction.Interaction) ([]Document, error) {
	var ids nameIDs
	for _, i := range batch {
		ids.meta = add(ids.meta, i.ServiceID)
		ids.meta = add(ids.meta, i.CommunicationChannelID)
		ids.meta = add(ids.meta, i.ServiceDeliveryStatusID)
		ids.meta = add(ids.meta, i.EventID)
		ids.meta = append(ids.meta, i.PolicyAreaIDs...)
		ids.companies = add(ids.companies, i.CompanyID)
		ids.contacts = append(ids.contacts, i.ContactIDs...)
		for _, p := range i.DITParticipants {
			ids.advisers = append(ids.advisers, p.AdviserID)
			ids.meta = add(ids.meta, p.TeamID)
		}
	}
	if err := l.names.resolve(ctx, ids); err != nil {
		return nil, err
	}

	n := l.names
	docs := make([]Document, 0, len(batch))
	for _, i := range batch {
		participants := make([]map[string]any, 0, len(i.DITParticipants))
		for _, p := range i.DITParticipants {
			adviserID := p.AdviserID
			participants = append(participants, map[string]any{
				"adviser": idName(&adviserID, n.adviserNames),
				"team":    idName(p.TeamID, n.meta),
			})
		}
		doc := Document{
			"kind":                         string(i.Kind),
			"status":                       string(i.Status),
			"subject":                      i.Subject,
			"notes":                        i.Notes,
			"date":                         i.Date,
			"company":                      idName(i.CompanyID, n.companyNames),
			"contacts":                     idNameList(i.ContactIDs, n.contactNames),
			"dit_participants":             participants,
			"event":                        idName(i.EventID, n.meta),
			"service":                      idName(i.ServiceID, n.meta),
			"communication_channel":        idName(i.CommunicationChannelID, n.meta),
			"service_delivery_status":      idName(i.ServiceDeliveryStatusID, n.meta),
			"policy_areas":                 idNameList(i.PolicyAreaIDs, n.meta),
			"was_policy_feedback_provided": i.WasPolicyFeedbackProvided,
			"grant_amount_offered":         i.GrantAmountOffered,
			"net_company_receipt":          i.NetCompanyReceipt,
		}
		if i.InvestmentProjectID != nil {
			doc["investment_project"] = map[string]any{"id": i.InvestmentProjectID.String()}
		}
		baseFields(doc, i.BaseEntity)
		archivedFields(doc, i.Archivable)
		docs = append(docs, doc)
	}
	return docs, nil
}

// ProjectLoader maps investment projects to search documents
type ProjectLoader struct {
	projects investment.ProjectRepository
	names    *names
}

// NewProjectLoader creates a ProjectLoader
func NewProjectLoader(
	projects investment.ProjectRepository,
	companies company.Repository,
	advisers adviser.Repository,
	meta metadata.Repository,
) *ProjectLoader {
	return &ProjectLoader{
		projects: projects,
		names:    &names{metadata: meta, companies: companies, advisers: advisers},
	}
}

// Load returns the document of one project
func (l *ProjectLoader) Load(ctx context.Context, id string) (Document, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}
	p, err := l.projects.FindByID(ctx, parsed)
	if err != nil {
		return nil, err
	}
	docs, err := l.documents(ctx, []investment.Project{*p})
	if err != nil {
		return nil, err
	}
	return docs[0], nil
}

// Iterate maps every project in batches
func (l *ProjectLoader) Iterate(ctx context.Context, batchSize int, fn func([]Document) error) error {
	return l.projects.Iterate(ctx, batchSize, func(batch []investment.Project) error {
		docs, err := l.documents(ctx, batch)
		if err != nil {
			return err
		}
		return fn(docs)
	})
}

func (l *ProjectLoader) documents(ctx context.Context, batch []investment.Project) ([]Document, error) {
	var ids nameIDs
	for _, p := range batch {
		for _, id := range []*uuid.UUID{p.InvestmentTypeID, p.StageID, p.SectorID, p.LikelihoodToLandID} {
			ids.meta = add(ids.meta, id)
		}
		ids.companies = add(ids.companies, p.InvestorCompanyID)
		ids.companies = add(ids.companies, p.IntermediateCompanyID)
		for _, id := range []*uuid.UUID{
			p.ClientRelationshipManagerID, p.ReferralSourceAdviserID, p.ProjectManagerID, p.ProjectAssuranceAdviserID,
		} {
			ids.advisers = add(ids.advisers, id)
		}
		ids.advisers = append(ids.advisers, p.TeamMemberIDs...)
	}
	if err := l.names.resolve(ctx, ids); err != nil {
		return nil, err
	}

	n := l.names
	docs := make([]Document, 0, len(batch))
	for _, p := range batch {
		doc := Document{
			"name":                        p.Name,
			"name_keyword":                p.Name,
			"project_code":                p.ProjectCode,
			"description":                 p.Description,
			"status":                      string(p.Status),
			"nda_signed":                  p.NDASigned,
			"estimated_land_date":         p.EstimatedLandDate,
			"actual_land_date":            p.ActualLandDate,
			"investment_type":             idName(p.InvestmentTypeID, n.meta),
			"stage":                       idName(p.StageID, n.meta),
			"sector":                      idName(p.SectorID, n.meta),
			"likelihood_to_land":          idName(p.LikelihoodToLandID, n.meta),
			"investor_company":            idName(p.InvestorCompanyID, n.companyNames),
			"intermediate_company":        idName(p.IntermediateCompanyID, n.companyNames),
			"client_relationship_manager": idName(p.ClientRelationshipManagerID, n.adviserNames),
			"referral_source_adviser":     idName(p.ReferralSourceAdviserID, n.adviserNames),
			"project_manager":             idName(p.ProjectManagerID, n.adviserNames),
			"project_assurance_adviser":   idName(p.ProjectAssuranceAdviserID, n.adviserNames),
			"team_members":                idNameList(p.TeamMemberIDs, n.adviserNames),
			"total_investment":            p.TotalInvestment,
			"foreign_equity_investment":   p.ForeignEquityInvestment,
			"number_new_jobs":             p.NumberNewJobs,
		}
		baseFields(doc, p.BaseEntity)
		docs = append(docs, doc)
	}
	return docs, nil
}
