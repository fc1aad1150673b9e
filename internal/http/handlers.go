package http

import (
	"errors"
	"net/http"
	"strconv"

	"costs/internal/core"
	applog "costs/internal/log"
)

func (s *Server) handleAddCost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := parseAddCostRequest(NewRequestBodyParser(w, r), s.loc)
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}

	saved, err := s.costs.AddCost(ctx, req)
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}

	NewJSONResponse().Body(newCostResponse(saved)).Send(w)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	params, err := ParseReportParams(r.URL.Query())
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}

	report, err := s.reports.MonthlyReport(r.Context(), params.UserID, params.Year, params.Month)
	if err != nil {
		s.writeError(w, r, applog.OpReport, err)
		return
	}

	NewJSONResponse().Body(newReportResponse(report)).Send(w)
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		NotFoundError("User not found").Send(w)
		return
	}

	user, err := s.users.GetUser(r.Context(), id)
	if errors.Is(err, core.ErrNotFound) {
		NotFoundError("User not found").Send(w)
		return
	}
	if err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}

	NewJSONResponse().Body(newUserResponse(user)).Send(w)
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(newTeamResponse(s.team.Members())).Send(w)
}
