package bootstrap

import (
	adviserapp "github.com/datahub/backend/internal/application/adviser"
	"github.com/datahub/backend/internal/application/audit"
	appauth "github.com/datahub/backend/internal/application/auth"
	companyapp "github.com/datahub/backend/internal/application/company"
	docapp "github.com/datahub/backend/internal/application/document"
	exportwinapp "github.com/datahub/backend/internal/application/exportwin"
	interactionapp "github.com/datahub/backend/internal/application/interaction"
	investmentapp "github.com/datahub/backend/internal/application/investment"
	"github.com/datahub/backend/internal/application/management"
	metadataapp "github.com/datahub/backend/internal/application/metadata"
	searchapp "github.com/datahub/backend/internal/application/search"
	usereventapp "github.com/datahub/backend/internal/application/userevent"
	"github.com/datahub/backend/internal/domain/interaction"
	"github.com/datahub/backend/internal/infrastructure/antivirus"
	"github.com/datahub/backend/internal/infrastructure/auth"
	"github.com/datahub/backend/internal/infrastructure/config"
	"github.com/datahub/backend/internal/infrastructure/event"
	"github.com/datahub/backend/internal/infrastructure/search"
	"github.com/datahub/backend/internal/infrastructure/sso"
	"go.uber.org/zap"
)

// Services holds the application services of every module
type Services struct {
	Bus      *event.InMemoryEventBus
	Recorder *audit.Recorder

	Auth       *appauth.Service
	Advisers   *adviserapp.Service
	Metadata   *metadataapp.Service
	Changelog  *audit.ChangelogService
	UserEvents *usereventapp.Service

	Companies    *companyapp.CompanyService
	Contacts     *companyapp.ContactService
	Referrals    *companyapp.ReferralService
	Interactions *interactionapp.Service

	Projects             *investmentapp.ProjectService
	Propositions         *investmentapp.PropositionService
	PropositionDocuments *investmentapp.PropositionDocumentService

	Documents     *docapp.Service
	DocumentJobs  *docapp.Jobs
	ExportWins    *exportwinapp.Service
	Search        *searchapp.Service
	SearchHandler *searchapp.SyncHandler

	Cleaner   *management.Cleaner
	OneList   *management.OneListUpdater
}

// NewServices wires the application services onto the repositories and
// subscribes the search sync handler to record changes
func NewServices(infra *Infrastructure, repos *Repositories) (*Services, error) {
	cfg := infra.Config
	log := infra.Logger

	engineClient, err := search.NewClient(cfg.Search)
	if err != nil {
		return nil, err
	}
	engine := search.NewEngine(engineClient, cfg.Search.IndexPrefix, cfg.Search.BulkChunkSize,
		search.WithMetrics(infra.Metrics),
		search.WithLogger(log.Named("search")),
	)

	s := &Services{Bus: event.NewInMemoryEventBus(log.Named("events"))}
	s.Recorder = audit.NewRecorder(repos.Versions, s.Bus, log)

	s.Auth = newAuthService(cfg, infra, repos, s.Recorder, log)
	s.Advisers = adviserapp.NewService(repos.Tx, repos.Advisers, s.Recorder)
	s.Metadata = metadataapp.NewService(repos.Metadata, log)
	s.Changelog = audit.NewChangelogService(repos.Versions, repos.Advisers, repos.Companies, repos.Contacts, repos.Metadata)
	s.UserEvents = usereventapp.NewService(repos.UserEvents)

	s.Companies = companyapp.NewCompanyService(repos.Tx, companyapp.Repositories{
		Companies:    repos.Companies,
		Contacts:     repos.Contacts,
		Referrals:    repos.Referrals,
		Interactions: repos.Interactions,
		Projects:     repos.Projects,
		Wins:         repos.ExportWins,
	}, s.Recorder, log)
	s.Contacts = companyapp.NewContactService(repos.Tx, repos.Contacts, s.Recorder)
	s.Interactions = interactionapp.NewService(repos.Tx, repos.Interactions, repos.Advisers, repos.Lookup, s.Recorder,
		interaction.Options{ExportCountriesEnabled: cfg.Features.InteractionExportCountries},
	)
	s.Referrals = companyapp.NewReferralService(repos.Tx, repos.Referrals, s.Interactions, s.Recorder)

	lifecycle := docapp.NewLifecycle(repos.Documents, infra.Storage, infra.Queue)
	s.Documents = docapp.NewService(repos.Tx, docapp.Repositories{
		Uploadables: repos.Uploadables,
		SharePoints: repos.SharePoints,
		Generics:    repos.Generics,
	}, lifecycle, config.DefaultBucketID)
	s.DocumentJobs = docapp.NewJobs(repos.Documents, infra.Storage,
		antivirus.NewClient(cfg.Antivirus, log.Named("antivirus")),
		repos.Locker, infra.Metrics, log,
	)

	s.Projects = investmentapp.NewProjectService(repos.Tx, repos.Projects, s.Recorder)
	s.Propositions = investmentapp.NewPropositionService(repos.Tx, repos.Projects, repos.Propositions, s.Recorder)
	s.PropositionDocuments = investmentapp.NewPropositionDocumentService(
		repos.Propositions, repos.PropositionDocuments, repos.UserEvents, lifecycle, log,
	)

	s.ExportWins = exportwinapp.NewService(repos.Tx, repos.ExportWins, infra.Queue, s.Recorder, log)

	s.Search = searchapp.NewService(engine, map[string]searchapp.Loader{
		searchapp.AppCompany:           searchapp.NewCompanyLoader(repos.Companies, repos.Advisers, repos.Metadata),
		searchapp.AppContact:           searchapp.NewContactLoader(repos.Contacts, repos.Companies, repos.Metadata),
		searchapp.AppInteraction:       searchapp.NewInteractionLoader(repos.Interactions, repos.Companies, repos.Contacts, repos.Advisers, repos.Metadata),
		searchapp.AppInvestmentProject: searchapp.NewProjectLoader(repos.Projects, repos.Companies, repos.Advisers, repos.Metadata),
	}, infra.Queue, log.Named("search"))
	s.SearchHandler = searchapp.NewSyncHandler(s.Search)
	s.Bus.Subscribe(s.SearchHandler, s.SearchHandler.EventTypes()...)

	s.Cleaner = management.NewCleaner(repos.Tx, repos.Interactions, repos.Companies, s.Recorder, log)
	s.OneList = management.NewOneListUpdater(repos.Tx, repos.Companies, infra.Storage, s.Recorder, log)
	return s, nil
}

// newAuthService introspects tokens with the SSO provider when it is enabled
// and otherwise accepts locally issued JWTs
func newAuthService(cfg *config.Config, infra *Infrastructure, repos *Repositories, recorder *audit.Recorder, log *zap.Logger) *appauth.Service {
	if cfg.SSO.Enabled {
		introspector := sso.NewCachedIntrospector(sso.NewClient(cfg.SSO), infra.Redis,
			cfg.SSO.IntrospectionCacheTime, log.Named("sso"),
		)
		return appauth.NewService(repos.Advisers, log,
			appauth.WithIntrospector(introspector),
			appauth.WithAudit(repos.Tx, recorder),
		)
	}
	return appauth.NewService(repos.Advisers, log,
		appauth.WithJWT(auth.NewJWTService(cfg.JWT), auth.NewRedisRevocationList(infra.Redis)),
	)
}
