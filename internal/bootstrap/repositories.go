package bootstrap

import (
	"github.com/datahub/backend/internal/infrastructure/cache"
	"github.com/datahub/backend/internal/infrastructure/persistence"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories holds the GORM repositories of every aggregate
type Repositories struct {
	Tx     *persistence.GormTransactionManager
	Locker *persistence.GormAdvisoryLocker

	Companies    *persistence.GormCompanyRepository
	Contacts     *persistence.GormContactRepository
	Referrals    *persistence.GormReferralRepository
	Interactions *persistence.GormInteractionRepository
	Lookup       *persistence.GormInteractionLookup

	Projects             *persistence.GormInvestmentProjectRepository
	Propositions         *persistence.GormPropositionRepository
	PropositionDocuments *persistence.GormPropositionDocumentRepository

	Documents   *persistence.GormDocumentRepository
	Uploadables *persistence.GormUploadableDocumentRepository
	SharePoints *persistence.GormSharePointDocumentRepository
	Generics    *persistence.GormGenericDocumentRepository

	ExportWins *persistence.GormExportWinRepository
	Advisers   *persistence.GormAdviserRepository
	Versions   *persistence.GormVersionRepository
	UserEvents *persistence.GormUserEventRepository

	// Metadata listings are cached in Redis
	Metadata *cache.MetadataRepository
}

// NewRepositories creates the repositories on db
func NewRepositories(db *gorm.DB, client redis.UniversalClient, logger *zap.Logger) *Repositories {
	return &Repositories{
		Tx:     persistence.NewGormTransactionManager(db),
		Locker: persistence.NewGormAdvisoryLocker(db),

		Companies:    persistence.NewGormCompanyRepository(db),
		Contacts:     persistence.NewGormContactRepository(db),
		Referrals:    persistence.NewGormReferralRepository(db),
		Interactions: persistence.NewGormInteractionRepository(db),
		Lookup:       persistence.NewGormInteractionLookup(db),

		Projects:             persistence.NewGormInvestmentProjectRepository(db),
		Propositions:         persistence.NewGormPropositionRepository(db),
		PropositionDocuments: persistence.NewGormPropositionDocumentRepository(db),

		Documents:   persistence.NewGormDocumentRepository(db),
		Uploadables: persistence.NewGormUploadableDocumentRepository(db),
		SharePoints: persistence.NewGormSharePointDocumentRepository(db),
		Generics:    persistence.NewGormGenericDocumentRepository(db),

		ExportWins: persistence.NewGormExportWinRepository(db),
		Advisers:   persistence.NewGormAdviserRepository(db),
		Versions:   persistence.NewGormVersionRepository(db),
		UserEvents: persistence.NewGormUserEventRepository(db),

		Metadata: cache.NewMetadataRepository(persistence.NewGormMetadataRepository(db), client,
			cache.WithMetadataLogger(logger.Named("metadata_cache")),
		),
	}
}
