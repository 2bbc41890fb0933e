package handler

import (
	"net/http"
	"testing"

	investmentapp "github.com/datahub/backend/internal/application/investment"
	"github.com/datahub/backend/internal/domain/adviser"
	"github.com/datahub/backend/internal/domain/investment"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func propositionRouter(a *adviser.Adviser, propositions PropositionService, documents PropositionDocumentService) *gin.Engine {
	h := NewPropositionHandler(propositions, documents)
	r := newTestRouter(a)
	g := r.Group("/v3/investment/:id/proposition")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:proposition_pk", h.Get)
	g.POST("/:proposition_pk/complete", h.Complete)
	g.POST("/:proposition_pk/abandon", h.Abandon)
	g.GET("/:proposition_pk/document", h.ListDocuments)
	g.POST("/:proposition_pk/document", h.CreateDocument)
	g.GET("/:proposition_pk/document/:entity_pk", h.GetDocument)
	g.DELETE("/:proposition_pk/document/:entity_pk", h.DeleteDocument)
	g.POST("/:proposition_pk/document/:entity_pk/upload-callback", h.DocumentUploadCallback)
	g.GET("/:proposition_pk/document/:entity_pk/download", h.DownloadDocument)
	return r
}

func TestPropositionHandler_List(t *testing.T) {
	projectID := uuid.New()
	adviserID := uuid.New()
	propositions := new(MockPropositionService)
	propositions.On("List", mock.Anything, projectID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["adviser_id"] == adviserID && f.Filters["status"] == "ongoing" &&
			f.OrderBy == "deadline" && f.OrderDir == "desc"
	})).Return(&shared.Paginated[investment.Proposition]{Results: []investment.Proposition{}}, nil)

	w := doRequest(propositionRouter(nil, propositions, nil), http.MethodGet,
		"/v3/investment/"+projectID.String()+"/proposition?status=ongoing&sortby=-deadline&adviser_id="+adviserID.String(), "")

	assert.Equal(t, http.StatusOK, w.Code)
	propositions.AssertExpectations(t)
}

func TestPropositionHandler_List_UnknownProject(t *testing.T) {
	propositions := new(MockPropositionService)
	propositions.On("List", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, investment.ErrProjectNotFound)

	w := doRequest(propositionRouter(nil, propositions, nil), http.MethodGet,
		"/v3/investment/"+uuid.NewString()+"/proposition", "")

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Specified investment project does not exist", decode(t, w)["detail"])
}

func TestPropositionHandler_Create(t *testing.T) {
	a := testAdviser(t)
	projectID := uuid.New()
	adviserID := uuid.New()
	propositions := new(MockPropositionService)
	propositions.On("Create", mock.Anything, projectID, mock.MatchedBy(func(req investmentapp.CreatePropositionRequest) bool {
		return req.AdviserID == adviserID && req.Name == "Pitch" && req.Deadline.String() == "2026-11-01"
	}), &a.ID).Return(&investment.Proposition{Name: "Pitch"}, nil)

	w := doRequest(propositionRouter(a, propositions, nil), http.MethodPost,
		"/v3/investment/"+projectID.String()+"/proposition",
		`{"adviser":"`+adviserID.String()+`","deadline":"2026-11-01","name":"Pitch","scope":"Everything"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	propositions.AssertExpectations(t)
}

func TestPropositionHandler_Complete(t *testing.T) {
	a := testAdviser(t)
	projectID, id := uuid.New(), uuid.New()
	path := "/v3/investment/" + projectID.String() + "/proposition/" + id.String()

	t.Run("completes", func(t *testing.T) {
		propositions := new(MockPropositionService)
		propositions.On("Complete", mock.Anything, projectID, id, "Delivered", &a.ID).
			Return(&investment.Proposition{Status: investment.PropositionStatusCompleted}, nil)

		w := doRequest(propositionRouter(a, propositions, nil), http.MethodPost, path+"/complete", `{"details":"Delivered"}`)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no scanned documents", func(t *testing.T) {
		propositions := new(MockPropositionService)
		propositions.On("Complete", mock.Anything, projectID, id, "Delivered", &a.ID).
			Return(nil, investment.ErrNoDocuments)

		w := doRequest(propositionRouter(a, propositions, nil), http.MethodPost, path+"/complete", `{"details":"Delivered"}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []any{"Proposition has no documents uploaded."}, decode(t, w)[shared.NonFieldErrorsKey])
	})

	t.Run("missing details reach the service", func(t *testing.T) {
		propositions := new(MockPropositionService)
		propositions.On("Abandon", mock.Anything, projectID, id, "", &a.ID).
			Return(nil, shared.NewFieldError("details", "This field is required."))

		w := doRequest(propositionRouter(a, propositions, nil), http.MethodPost, path+"/abandon", "")

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode(t, w), "details")
	})
}

func TestPropositionHandler_Documents(t *testing.T) {
	a := testAdviser(t)
	projectID, propositionID, id := uuid.New(), uuid.New(), uuid.New()
	base := "/v3/investment/" + projectID.String() + "/proposition/" + propositionID.String() + "/document"

	t.Run("create returns the upload url", func(t *testing.T) {
		documents := new(MockPropositionDocumentService)
		documents.On("Create", mock.Anything, projectID, propositionID, "pitch.pdf", &a.ID).
			Return(&investmentapp.PropositionDocumentView{SignedUploadURL: "https://s3.example/upload"}, nil)

		w := doRequest(propositionRouter(a, nil, documents), http.MethodPost, base, `{"original_filename":"pitch.pdf"}`)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "https://s3.example/upload", decode(t, w)["signed_upload_url"])
	})

	t.Run("unknown proposition", func(t *testing.T) {
		documents := new(MockPropositionDocumentService)
		documents.On("Get", mock.Anything, projectID, propositionID, id).Return(nil, investment.ErrPropositionNotFound)

		w := doRequest(propositionRouter(a, nil, documents), http.MethodGet, base+"/"+id.String(), "")

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Specified proposition does not exist", decode(t, w)["detail"])
	})

	t.Run("malformed document id", func(t *testing.T) {
		w := doRequest(propositionRouter(a, nil, new(MockPropositionDocumentService)), http.MethodGet, base+"/nope/download", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete records the request path", func(t *testing.T) {
		documents := new(MockPropositionDocumentService)
		documents.On("Delete", mock.Anything, projectID, propositionID, id, a.ID, base+"/"+id.String()).Return(nil)

		w := doRequest(propositionRouter(a, nil, documents), http.MethodDelete, base+"/"+id.String(), "")

		assert.Equal(t, http.StatusNoContent, w.Code)
		documents.AssertExpectations(t)
	})

	t.Run("delete requires an adviser", func(t *testing.T) {
		documents := new(MockPropositionDocumentService)

		w := doRequest(propositionRouter(nil, nil, documents), http.MethodDelete, base+"/"+id.String(), "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		documents.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
