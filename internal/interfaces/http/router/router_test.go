package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/datahub/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ok(body string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, body)
	}
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithPrefix("/api"))
	r.Register(NewDomainGroup("test", "/test").GET("/ping", ok("pong")))
	r.Setup()

	w := serve(engine, http.MethodGet, "/api/test/ping")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouterMiddleware(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithMiddleware(func(c *gin.Context) {
		c.Header("X-Router", "applied")
	}))
	r.Register(
		NewDomainGroup("a", "/a").GET("", ok("a")),
		NewDomainGroup("b", "/b").GET("", ok("b")),
	).Setup()

	for _, path := range []string{"/a", "/b"} {
		w := serve(engine, http.MethodGet, path)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "applied", w.Header().Get("X-Router"), path)
	}
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("companies", "/v4/company")
		assert.Equal(t, "companies", g.Name())
		assert.Equal(t, "/v4/company", g.Prefix())
	})

	t.Run("verbs", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("test", "/test").
			GET("/items", ok("get")).
			POST("/items", ok("post")).
			PUT("/items/:id", ok("put")).
			PATCH("/items/:id", ok("patch")).
			DELETE("/items/:id", ok("delete"))
		g.RegisterRoutes(&engine.RouterGroup)

		tests := []struct {
			method string
			path   string
			body   string
		}{
			{http.MethodGet, "/test/items", "get"},
			{http.MethodPost, "/test/items", "post"},
			{http.MethodPut, "/test/items/1", "put"},
			{http.MethodPatch, "/test/items/1", "patch"},
			{http.MethodDelete, "/test/items/1", "delete"},
		}
		for _, tt := range tests {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, http.StatusOK, w.Code, "%s %s", tt.method, tt.path)
			assert.Equal(t, tt.body, w.Body.String())
		}
	})

	t.Run("middleware applies to subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("parent", "/parent").Use(func(c *gin.Context) {
			c.Header("X-Parent", "applied")
		})
		g.Group("child", "/child").GET("", ok("child"))
		g.RegisterRoutes(&engine.RouterGroup)

		w := serve(engine, http.MethodGet, "/parent/child")

		assert.Equal(t, "child", w.Body.String())
		assert.Equal(t, "applied", w.Header().Get("X-Parent"))
	})

	t.Run("lists routes", func(t *testing.T) {
		g := NewDomainGroup("investment", "/v3/investment").GET("", ok(""))
		g.Group("propositions", "/:id/proposition").POST("/:proposition_pk/complete", ok(""))

		assert.Equal(t, []string{
			"GET /v3/investment",
			"POST /v3/investment/:id/proposition/:proposition_pk/complete",
		}, g.Routes())
	})
}

func testHandlers() Handlers {
	return Handlers{
		Company:     handler.NewCompanyHandler(nil),
		Contact:     handler.NewContactHandler(nil),
		Referral:    handler.NewReferralHandler(nil),
		Interaction: handler.NewInteractionHandler(nil),
		Project:     handler.NewProjectHandler(nil),
		Proposition: handler.NewPropositionHandler(nil, nil),
		Document:    handler.NewDocumentHandler(nil),
		ExportWin:   handler.NewExportWinHandler(nil),
		Metadata:    handler.NewMetadataHandler(nil),
		Adviser:     handler.NewAdviserHandler(nil),
		UserEvent:   handler.NewUserEventHandler(nil),
		Search:      handler.NewSearchHandler(nil),
		Audit:       handler.NewAuditHandler(nil),
		Token:       handler.NewTokenHandler(nil),
	}
}

func deny(c *gin.Context) {
	c.AbortWithStatus(http.StatusUnauthorized)
}

func TestAPIRoutes(t *testing.T) {
	groups := APIRoutes(testHandlers(), Guards{Authenticated: deny, Staff: deny})

	engine := gin.New()
	require.NotPanics(t, func() {
		NewRouter(engine).Register(Registrars(groups)...).Setup()
	})

	var routes []string
	for _, g := range groups {
		routes = append(routes, g.Routes()...)
	}
	assert.Contains(t, routes, "POST /v4/company/:id/archive")
	assert.Contains(t, routes, "GET /v4/interaction/:id/audit")
	assert.Contains(t, routes, "POST /v3/investment/:id/proposition/:proposition_pk/abandon")
	assert.Contains(t, routes, "GET /v3/investment/:id/proposition/:proposition_pk/document/:entity_pk/download")
	assert.Contains(t, routes, "POST /v4/export-win/:id/resend-customer-email")
	assert.Contains(t, routes, "DELETE /v4/document/:id")
	assert.Contains(t, routes, "POST /token/")

	t.Run("protected routes run the guard", func(t *testing.T) {
		for _, path := range []string{"/v4/company", "/adviser/", "/v4/user-event", "/v3/search"} {
			w := serve(engine, http.MethodGet, path)
			assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		}
	})
}

func TestAPIRoutes_WithoutPasswordLogin(t *testing.T) {
	h := testHandlers()
	h.Token = nil

	groups := APIRoutes(h, Guards{Authenticated: deny, Staff: deny})

	for _, g := range groups {
		assert.NotEqual(t, "token", g.Name())
	}
}

func TestAPIRoutes_Throttle(t *testing.T) {
	var order []string
	guards := Guards{
		Authenticated: func(c *gin.Context) { order = append(order, "auth") },
		Staff:         func(c *gin.Context) { order = append(order, "staff") },
		Throttle: func(c *gin.Context) {
			order = append(order, "throttle")
			c.AbortWithStatus(http.StatusTooManyRequests)
		},
	}
	engine := gin.New()
	NewRouter(engine).Register(Registrars(APIRoutes(testHandlers(), guards))...).Setup()

	t.Run("public routes", func(t *testing.T) {
		order = nil
		w := serve(engine, http.MethodGet, "/v4/metadata/sector")

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, []string{"throttle"}, order)
	})

	t.Run("authenticated routes limit after auth", func(t *testing.T) {
		order = nil
		w := serve(engine, http.MethodGet, "/v4/user-event")

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, []string{"auth", "throttle"}, order)
	})
}
