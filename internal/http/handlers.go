package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	contractcmd "github.com/goliatone/go-sitekit/internal/commands/contract"
	sitecmd "github.com/goliatone/go-sitekit/internal/commands/site"
	"github.com/goliatone/go-sitekit/internal/logging"
	"github.com/goliatone/go-sitekit/internal/site"
	"github.com/goliatone/go-sitekit/internal/tree"
)

type deferredRequest struct {
	Nodes    []*tree.Resolved `json:"nodes"`
	Content  map[string]any   `json:"content,omitempty"`
	Bindings map[string]any   `json:"bindings,omitempty"`
	ParentID string           `json:"parent_id,omitempty"`
}

func (api *PreviewAPI) handlePresetList(w http.ResponseWriter, r *http.Request) {
	if api.presets == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	ids := api.presets.IDs()
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"presets": ids})
}

func (api *PreviewAPI) handleSite(w http.ResponseWriter, r *http.Request) {
	presetID := chi.URLParam(r, "preset")
	content, err := api.requestContent(r, presetID)
	if err != nil {
		writeError(w, err)
		return
	}

	var result *site.SiteResult
	err = api.resolveSite.Execute(logging.WithRequest(r.Context(), presetID, ""), sitecmd.ResolveSiteCommand{
		PresetID:          presetID,
		Content:           content,
		IncludeTransition: parseBoolQuery(r.URL.Query().Get("transition"), false),
		ExcludeIntro:      !parseBoolQuery(r.URL.Query().Get("intro"), true),
		ResultCallback:    func(res *site.SiteResult) { result = res },
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (api *PreviewAPI) handlePage(w http.ResponseWriter, r *http.Request) {
	presetID := chi.URLParam(r, "preset")
	pageID := chi.URLParam(r, "page")
	content, err := api.requestContent(r, presetID)
	if err != nil {
		writeError(w, err)
		return
	}

	var result *site.PageResult
	err = api.resolvePage.Execute(logging.WithRequest(r.Context(), presetID, pageID), sitecmd.ResolvePageCommand{
		PresetID:       presetID,
		PageID:         pageID,
		Content:        content,
		ResultCallback: func(res *site.PageResult) { result = res },
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (api *PreviewAPI) handleDeferred(w http.ResponseWriter, r *http.Request) {
	presetID := chi.URLParam(r, "preset")
	pageID := chi.URLParam(r, "page")

	var body deferredRequest
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid request body"})
		return
	}
	if body.Content == nil {
		fallback, err := api.fallbackContent(r, presetID)
		if err != nil {
			writeError(w, err)
			return
		}
		body.Content = fallback
	}
	parentID := body.ParentID
	if parentID == "" {
		parentID = pageID
	}

	var result *site.DeferredResult
	err := api.deferred.Execute(logging.WithRequest(r.Context(), presetID, pageID), sitecmd.ExpandDeferredCommand{
		Request: site.DeferredRequest{
			Nodes:    body.Nodes,
			Content:  body.Content,
			Bindings: body.Bindings,
			ParentID: parentID,
		},
		ResultCallback: func(res *site.DeferredResult) { result = res },
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (api *PreviewAPI) handleContract(w http.ResponseWriter, r *http.Request) {
	presetID := chi.URLParam(r, "preset")

	var result *site.ContractResult
	err := api.contract.Execute(logging.WithRequest(r.Context(), presetID, ""), contractcmd.BuildContractCommand{
		PresetID:       presetID,
		ResultCallback: func(res *site.ContractResult) { result = res },
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCheck answers 422 when strict=true and the report is not clean.
func (api *PreviewAPI) handleCheck(w http.ResponseWriter, r *http.Request) {
	presetID := chi.URLParam(r, "preset")
	var content map[string]any
	if r.Method == http.MethodPost {
		if err := decodeJSON(r, &content); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid request body"})
			return
		}
	}

	var report *site.CheckReport
	err := api.check.Execute(logging.WithRequest(r.Context(), presetID, ""), contractcmd.CheckPresetCommand{
		PresetID:       presetID,
		Content:        content,
		Strict:         parseBoolQuery(r.URL.Query().Get("strict"), false),
		ResultCallback: func(res *site.CheckReport) { report = res },
	})
	if err != nil && report != nil {
		writeJSON(w, http.StatusUnprocessableEntity, report)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (api *PreviewAPI) requestContent(r *http.Request, presetID string) (map[string]any, error) {
	if r.Method == http.MethodPost {
		var content map[string]any
		if err := decodeJSON(r, &content); err != nil {
			return nil, errBadBody
		}
		return content, nil
	}
	return api.fallbackContent(r, presetID)
}

func (api *PreviewAPI) fallbackContent(r *http.Request, presetID string) (map[string]any, error) {
	if api.content == nil {
		return nil, nil
	}
	return api.content(r.Context(), presetID)
}
