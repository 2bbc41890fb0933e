package router

import (
	"github.com/datahub/backend/internal/domain/company"
	"github.com/datahub/backend/internal/domain/interaction"
	"github.com/datahub/backend/internal/domain/investment"
	"github.com/datahub/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers holds the handlers served by the API. Token is nil when
// password login is disabled.
type Handlers struct {
	Company     *handler.CompanyHandler
	Contact     *handler.ContactHandler
	Referral    *handler.ReferralHandler
	Interaction *handler.InteractionHandler
	Project     *handler.ProjectHandler
	Proposition *handler.PropositionHandler
	Document    *handler.DocumentHandler
	ExportWin   *handler.ExportWinHandler
	Metadata    *handler.MetadataHandler
	Adviser     *handler.AdviserHandler
	UserEvent   *handler.UserEventHandler
	Search      *handler.SearchHandler
	Audit       *handler.AuditHandler
	Token       *handler.TokenHandler
}

// Guards are the middleware protecting the API routes
type Guards struct {
	// Authenticated rejects anonymous requests
	Authenticated gin.HandlerFunc
	// Staff rejects advisers that are not staff
	Staff gin.HandlerFunc
	// Throttle rate limits requests. It runs after Authenticated so
	// authenticated requests are limited per adviser. Optional.
	Throttle gin.HandlerFunc
}

func (g Guards) public() []gin.HandlerFunc {
	if g.Throttle == nil {
		return nil
	}
	return []gin.HandlerFunc{g.Throttle}
}

func (g Guards) authenticated(extra ...gin.HandlerFunc) []gin.HandlerFunc {
	chain := append([]gin.HandlerFunc{g.Authenticated}, g.public()...)
	return append(chain, extra...)
}

// APIRoutes builds the route groups of the API
func APIRoutes(h Handlers, guards Guards) []*DomainGroup {
	groups := []*DomainGroup{
		NewDomainGroup("metadata", "/v4/metadata").Use(guards.public()...).
			GET("/:kind", h.Metadata.List),
	}

	if h.Token != nil {
		token := NewDomainGroup("token", "/token").Use(guards.public()...).
			POST("/", h.Token.Login)
		token.Group("revoke", "/revoke").
			Use(guards.Authenticated).
			POST("/", h.Token.Revoke)
		groups = append(groups, token)
	}

	advisers := NewDomainGroup("advisers", "/adviser").Use(guards.authenticated()...).
		GET("/", h.Adviser.List).
		GET("/:id/", h.Adviser.Get)
	whoami := NewDomainGroup("whoami", "/whoami").Use(guards.authenticated()...).
		GET("/", h.Adviser.Me)

	companies := NewDomainGroup("companies", "/v4/company").Use(guards.authenticated()...).
		GET("", h.Company.List).
		POST("", h.Company.Create).
		GET("/:id", h.Company.Get).
		PATCH("/:id", h.Company.Update).
		POST("/:id/archive", h.Company.Archive).
		POST("/:id/unarchive", h.Company.Unarchive).
		GET("/:id/audit", h.Audit.For(company.AggregateType))

	contacts := NewDomainGroup("contacts", "/v4/contact").Use(guards.authenticated()...).
		GET("", h.Contact.List).
		POST("", h.Contact.Create).
		GET("/:id", h.Contact.Get).
		PATCH("/:id", h.Contact.Update).
		POST("/:id/archive", h.Contact.Archive).
		POST("/:id/unarchive", h.Contact.Unarchive).
		GET("/:id/audit", h.Audit.For(company.ContactAggregateType))

	referrals := NewDomainGroup("company-referrals", "/v4/company-referral").Use(guards.authenticated()...).
		GET("", h.Referral.List).
		POST("", h.Referral.Create).
		GET("/:id", h.Referral.Get).
		POST("/:id/complete", h.Referral.Complete)

	interactions := NewDomainGroup("interactions", "/v4/interaction").Use(guards.authenticated()...).
		GET("", h.Interaction.List).
		POST("", h.Interaction.Create).
		GET("/:id", h.Interaction.Get).
		PATCH("/:id", h.Interaction.Update).
		POST("/:id/archive", h.Interaction.Archive).
		POST("/:id/unarchive", h.Interaction.Unarchive).
		GET("/:id/audit", h.Audit.For(interaction.AggregateType))

	projects := NewDomainGroup("investment", "/v3/investment").Use(guards.authenticated()...).
		GET("", h.Project.List).
		POST("", h.Project.Create).
		GET("/:id", h.Project.Get).
		PATCH("/:id", h.Project.Update).
		GET("/:id/audit", h.Audit.For(investment.AggregateType))
	propositions := projects.Group("propositions", "/:id/proposition").
		GET("", h.Proposition.List).
		POST("", h.Proposition.Create).
		GET("/:proposition_pk", h.Proposition.Get).
		POST("/:proposition_pk/complete", h.Proposition.Complete).
		POST("/:proposition_pk/abandon", h.Proposition.Abandon)
	propositions.Group("proposition-documents", "/:proposition_pk/document").
		GET("", h.Proposition.ListDocuments).
		POST("", h.Proposition.CreateDocument).
		GET("/:entity_pk", h.Proposition.GetDocument).
		DELETE("/:entity_pk", h.Proposition.DeleteDocument).
		POST("/:entity_pk/upload-callback", h.Proposition.DocumentUploadCallback).
		GET("/:entity_pk/download", h.Proposition.DownloadDocument)

	documents := NewDomainGroup("documents", "/v4/document").Use(guards.authenticated()...).
		GET("", h.Document.List).
		POST("", h.Document.Create).
		GET("/:id", h.Document.Get).
		PATCH("/:id", h.Document.UpdateTitle).
		DELETE("/:id", h.Document.Delete).
		POST("/:id/upload-callback", h.Document.UploadCallback).
		GET("/:id/download", h.Document.Download)

	exportWins := NewDomainGroup("export-wins", "/v4/export-win").Use(guards.authenticated()...).
		GET("", h.ExportWin.List).
		POST("", h.ExportWin.Create).
		GET("/:id", h.ExportWin.Get).
		PATCH("/:id", h.ExportWin.Update).
		POST("/:id/resend-customer-email", h.ExportWin.ResendCustomerEmail)

	search := NewDomainGroup("search", "/v4/search").Use(guards.authenticated()...).
		POST("/:app", h.Search.Search)
	basicSearch := NewDomainGroup("basic-search", "/v3/search").Use(guards.authenticated()...).
		GET("", h.Search.BasicSearch)

	userEvents := NewDomainGroup("user-events", "/v4/user-event").Use(guards.authenticated(guards.Staff)...).
		GET("", h.UserEvent.List)

	return append(groups,
		advisers,
		whoami,
		companies,
		contacts,
		referrals,
		interactions,
		projects,
		documents,
		exportWins,
		search,
		basicSearch,
		userEvents,
	)
}

// Registrars converts groups into registrars for Router.Register
func Registrars(groups []*DomainGroup) []RouteRegistrar {
	out := make([]RouteRegistrar, len(groups))
	for i, g := range groups {
		out[i] = g
	}
	return out
}
