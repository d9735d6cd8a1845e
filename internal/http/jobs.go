package http

import (
	"net/http"
	"strconv"

	"github.com/athenkosimagada/careerhive.server/internal/domain"
	"github.com/athenkosimagada/careerhive.server/internal/service"
	"github.com/athenkosimagada/careerhive.server/pkg/httpx"
)

// JobsHandler serves the job board endpoints. Reads are public; mutation and
// bookmarks require authentication.
type JobsHandler struct {
	Jobs *service.JobService
}

type jobRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ExternalLink string `json:"externalLink,omitempty"`
}

type jobResponse struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	ExternalLink string        `json:"externalLink,omitempty"`
	PostedBy     *userResponse `json:"postedBy,omitempty"`
	CreatedAt    string        `json:"createdAt"`
}

type jobPageResponse struct {
	Jobs       []jobResponse `json:"jobs"`
	TotalCount int           `json:"totalCount"`
	PageNumber int           `json:"pageNumber"`
	PageSize   int           `json:"pageSize"`
}

func toJobResponse(j domain.Job) jobResponse {
	out := jobResponse{
		ID:           j.ID,
		Title:        j.Title,
		Description:  j.Description,
		ExternalLink: j.ExternalLink,
		CreatedAt:    j.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if j.PostedBy != nil {
		u := toUserResponse(*j.PostedBy)
		out.PostedBy = &u
	}
	return out
}

func toJobPageResponse(p service.JobPage) jobPageResponse {
	out := jobPageResponse{
		Jobs:       make([]jobResponse, 0, len(p.Jobs)),
		TotalCount: p.TotalCount,
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
	}
	for _, j := range p.Jobs {
		out.Jobs = append(out.Jobs, toJobResponse(j))
	}
	return out
}

func (h *JobsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req jobRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	j, err := h.Jobs.AddJob(ctx, httpx.UserIDFromContext(ctx), service.JobParams{
		Title:        req.Title,
		Description:  req.Description,
		ExternalLink: req.ExternalLink,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toJobResponse(j))
}

func (h *JobsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	j, err := h.Jobs.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toJobResponse(j))
}

func (h *JobsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req jobRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	j, err := h.Jobs.UpdateJob(ctx, httpx.UserIDFromContext(ctx), r.PathValue("id"), service.JobParams{
		Title:        req.Title,
		Description:  req.Description,
		ExternalLink: req.ExternalLink,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toJobResponse(j))
}

func (h *JobsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Jobs.DeleteJob(ctx, httpx.UserIDFromContext(ctx), r.PathValue("id")); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *JobsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("pageNumber"))
	size, _ := strconv.Atoi(q.Get("pageSize"))
	includeUser := q.Get("includeUser") == "true"

	result, err := h.Jobs.ListJobs(r.Context(), page, size, includeUser, q.Get("postedBy"))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toJobPageResponse(result))
}

func (h *JobsHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Jobs.SearchJobs(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	out := make([]jobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toJobResponse(j))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *JobsHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Jobs.SaveJob(ctx, httpx.UserIDFromContext(ctx), r.PathValue("id")); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"message": "job saved"})
}

func (h *JobsHandler) HandleUnsave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Jobs.UnsaveJob(ctx, httpx.UserIDFromContext(ctx), r.PathValue("id")); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *JobsHandler) HandleListSaved(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("pageNumber"))
	size, _ := strconv.Atoi(q.Get("pageSize"))

	result, err := h.Jobs.ListSavedJobs(ctx, httpx.UserIDFromContext(ctx), page, size)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toJobPageResponse(result))
}
