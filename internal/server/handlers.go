package server

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/iwvelando/loan-calculator/internal/ledger"
	"github.com/iwvelando/loan-calculator/pkg/export"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"go.uber.org/zap"
)

type calculateResponse struct {
	Input   loans.Input   `json:"input"`
	Summary loans.Summary `json:"summary"`
}

type scenariosResponse struct {
	Scenarios []ledger.Scenario `json:"scenarios"`
	Count     int               `json:"count"`
}

type importResponse struct {
	Schedule       []loans.Payment `json:"schedule"`
	Payments       int             `json:"payments"`
	TotalPayment   float64         `json:"totalPayment"`
	TotalPrincipal float64         `json:"totalPrincipal"`
	TotalInterest  float64         `json:"totalInterest"`
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"

	var req loanRequest
	if err := h.decodeJSON(w, r, &req, false); err != nil {
		h.respondErr(w, err, op)
		return
	}
	input, err := req.input()
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	summary, err := h.service.Calculate(r.Context(), input)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, calculateResponse{Input: input, Summary: summary})
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"

	var req loanRequest
	if err := h.decodeJSON(w, r, &req, false); err != nil {
		h.respondErr(w, err, op)
		return
	}
	input, err := req.input()
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	result, err := h.service.Schedule(r.Context(), input)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleExtraPayment(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExtraPayment"

	var req extraPaymentRequest
	if err := h.decodeJSON(w, r, &req, false); err != nil {
		h.respondErr(w, err, op)
		return
	}
	input, err := req.input()
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	extra, err := req.extra()
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	result, err := h.service.ExtraPayment(r.Context(), input, extra)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handlePayoffTarget(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePayoffTarget"

	var req payoffTargetRequest
	if err := h.decodeJSON(w, r, &req, false); err != nil {
		h.respondErr(w, err, op)
		return
	}
	input, err := req.input()
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	target, err := req.target()
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	summary, err := h.service.PayoffTarget(r.Context(), input, target, loans.ExtraMode(req.ExtraMode))
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *handler) handleScheduleExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScheduleExport"

	var req loanRequest
	if err := h.decodeJSON(w, r, &req, false); err != nil {
		h.respondErr(w, err, op)
		return
	}
	input, err := req.input()
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	result, err := h.service.Schedule(r.Context(), input)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteSchedule(&buf, result.Payments); err != nil {
		h.respondErr(w, err, op)
		return
	}
	h.writeCSV(w, export.ScheduleFilename, buf.Bytes())
}

func (h *handler) handleScheduleImport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScheduleImport"

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	schedule, err := export.ReadSchedule(r.Body)
	if err != nil {
		if statusFor(err) == http.StatusRequestEntityTooLarge {
			h.respondErr(w, err, op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	payment, principal, interest := loans.Totals(schedule)
	h.writeJSON(w, http.StatusOK, importResponse{
		Schedule:       schedule,
		Payments:       len(schedule),
		TotalPayment:   mathutil.Round(payment),
		TotalPrincipal: mathutil.Round(principal),
		TotalInterest:  mathutil.Round(interest),
	})
}

func (h *handler) handleListScenarios(w http.ResponseWriter, _ *http.Request) {
	scenarios := h.service.Scenarios()
	h.writeJSON(w, http.StatusOK, scenariosResponse{Scenarios: scenarios, Count: len(scenarios)})
}

// handleSaveScenario saves the current calculation, or the loan in the body
// when one is given.
func (h *handler) handleSaveScenario(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSaveScenario"

	var req scenarioRequest
	if err := h.decodeJSON(w, r, &req, true); err != nil {
		h.respondErr(w, err, op)
		return
	}

	var (
		scenario ledger.Scenario
		err      error
	)
	if req.empty() {
		scenario, err = h.service.SaveScenario(req.Name)
	} else {
		var input loans.Input
		input, err = req.input()
		if err == nil {
			scenario, err = h.service.SaveCalculation(req.Name, input)
		}
	}
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusCreated, scenario)
}

func (h *handler) handleClearScenarios(w http.ResponseWriter, _ *http.Request) {
	h.service.ClearScenarios()
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDeleteScenario"

	if err := h.service.RemoveScenario(chi.URLParam(r, "id")); err != nil {
		h.respondErr(w, err, op)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleScenariosExport(w http.ResponseWriter, _ *http.Request) {
	const op = "server.handleScenariosExport"

	var buf bytes.Buffer
	if err := export.WriteScenarios(&buf, h.service.Scenarios()); err != nil {
		h.respondErr(w, err, op)
		return
	}
	h.writeCSV(w, export.ScenariosFilename, buf.Bytes())
}

func (h *handler) writeCSV(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write CSV response",
			zap.String("op", "server.writeCSV"),
			zap.String("filename", filename),
			zap.Error(err),
		)
	}
}
