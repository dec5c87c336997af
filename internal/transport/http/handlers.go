package http

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/strogmv/claimcomms/internal/domain"
	"github.com/strogmv/claimcomms/internal/pkg/errors"
	"github.com/strogmv/claimcomms/internal/pkg/logger"
	"github.com/strogmv/claimcomms/internal/port"
)

var validate = domain.NewValidator()

type Handler struct {
	ledger port.Ledger
	health map[string]HealthChecker
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	status := http.StatusOK
	if len(h.health) > 0 {
		resp.Checks = make(map[string]string, len(h.health))
		for name, check := range h.health {
			if err := check(); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
	}
	writeJSON(w, status, resp)
}

type lookupResponse struct {
	Data []domain.DispatchRecord `json:"data"`
}

// Lookup returns every ledger record for exactly one of agreementReference or claimReference.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	agreementRef := strings.TrimSpace(q.Get("agreementReference"))
	claimRef := strings.TrimSpace(q.Get("claimReference"))

	if (agreementRef == "") == (claimRef == "") {
		errors.WriteError(w, r, errors.New(http.StatusBadRequest, "Validation Error",
			"exactly one of agreementReference or claimReference is required"))
		return
	}

	var (
		records []domain.DispatchRecord
		err     error
	)
	if agreementRef != "" {
		records, err = h.ledger.ListByAgreement(r.Context(), agreementRef)
	} else {
		records, err = h.ledger.ListByClaim(r.Context(), claimRef)
	}
	if err != nil {
		logger.From(r.Context()).Error("lookup ledger records", "error", err.Error())
		errors.WriteError(w, r, err)
		return
	}
	if records == nil {
		records = []domain.DispatchRecord{}
	}
	writeJSON(w, http.StatusOK, lookupResponse{Data: records})
}

type redactRequest struct {
	AgreementsToRedact []redactTarget `json:"agreementsToRedact" validate:"required,min=1,dive"`
}

type redactTarget struct {
	Reference string `json:"reference" validate:"required"`
}

type redactResponse struct {
	Updated int `json:"updated"`
}

// RedactPII overwrites PII held in the ledger for the listed agreements.
func (h *Handler) RedactPII(w http.ResponseWriter, r *http.Request) {
	var req redactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, r, errors.New(http.StatusBadRequest, "Invalid Request", "body must be a JSON object"))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, r, err)
		return
	}

	refs := make([]string, 0, len(req.AgreementsToRedact))
	for _, t := range req.AgreementsToRedact {
		refs = append(refs, t.Reference)
	}

	log := logger.From(r.Context())
	log.Info("redacting PII", "agreements", len(refs))
	n, err := h.ledger.RedactPII(r.Context(), refs)
	if err != nil {
		log.Error("redact PII", "error", err.Error())
		errors.WriteError(w, r, err)
		return
	}
	log.Info("redacted PII", "updated", n)
	writeJSON(w, http.StatusOK, redactResponse{Updated: n})
}

func writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	fields := map[string]string{}
	var verr *domain.ValidationError
	if stderrors.As(domain.ViolationsFrom(err), &verr) {
		for _, v := range verr.Violations {
			fields[v.Field] = v.Message
		}
	}
	errors.WriteError(w, r, errors.New(http.StatusBadRequest, "Validation Error", "request failed validation").WithFieldErrors(fields))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
