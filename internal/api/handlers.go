package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"credential-bridge/internal/cmerror"
	"credential-bridge/internal/types"
)

// Orchestrator is the credential manager surface the API exposes
type Orchestrator interface {
	Init(ctx context.Context, preferImmediate bool, federatedClientID string) (string, error)
	SavePasswordCredential(ctx context.Context, username, password string) (string, error)
	CreatePasskey(ctx context.Context, requestJSON string) (string, error)
	GetCredentials(ctx context.Context, passkeyOptions string, opts types.FetchOptions) (*types.CredentialEnvelope, error)
	SignInWithFederatedProvider(ctx context.Context, useButtonFlow bool) (*types.FederatedCredential, error)
	Logout(ctx context.Context) (string, error)
	IsSupported() bool
	Statuses() []types.ProviderStatus
}

// Handlers holds the HTTP handlers for the credential API
type Handlers struct {
	orchestrator Orchestrator
	logger       *logrus.Logger
}

// NewHandlers creates the API handlers
func NewHandlers(orchestrator Orchestrator, logger *logrus.Logger) *Handlers {
	return &Handlers{orchestrator: orchestrator, logger: logger}
}

// HandleInit handles POST /api/v1/init
func (h *Handlers) HandleInit(w http.ResponseWriter, r *http.Request) {
	var req InitRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	message, err := h.orchestrator.Init(r.Context(), req.PreferImmediateCredentials, req.FederatedClientID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, MessageResponse{Message: message})
}

// HandleSavePassword handles POST /api/v1/credentials/password
func (h *Handlers) HandleSavePassword(w http.ResponseWriter, r *http.Request) {
	var req SavePasswordRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	message, err := h.orchestrator.SavePasswordCredential(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, MessageResponse{Message: message})
}

// HandleCreatePasskey handles POST /api/v1/passkeys
func (h *Handlers) HandleCreatePasskey(w http.ResponseWriter, r *http.Request) {
	var req CreatePasskeyRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	response, err := h.orchestrator.CreatePasskey(r.Context(), req.RequestJSON)
	if err != nil {
		h.writeError(w, err)
		return
	}

	// The creation response is already serialized; pass it through verbatim.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write([]byte(response))
}

// HandleGetCredentials handles POST /api/v1/credentials/query
func (h *Handlers) HandleGetCredentials(w http.ResponseWriter, r *http.Request) {
	var req GetCredentialsRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	envelope, err := h.orchestrator.GetCredentials(r.Context(), req.PasskeyOptions, req.FetchOptions.ToFetchOptions())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope)
}

// HandleSignIn handles POST /api/v1/federated/signin
func (h *Handlers) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	credential, err := h.orchestrator.SignInWithFederatedProvider(r.Context(), req.UseButtonFlow)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, credential)
}

// HandleLogout handles POST /api/v1/logout
func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	message, err := h.orchestrator.Logout(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, MessageResponse{Message: message})
}

// HandleSupported handles GET /api/v1/supported
func (h *Handlers) HandleSupported(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, SupportedResponse{Supported: h.orchestrator.IsSupported()})
}

// HandleStatus handles GET /api/v1/status
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, StatusResponse{
		Supported: h.orchestrator.IsSupported(),
		Providers: h.orchestrator.Statuses(),
	})
}

// decodeRequest parses the JSON request body, writing a taxonomy-shaped
// error on failure
func (h *Handlers) decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Code:    string(cmerror.CodeConfiguration),
			Message: "invalid request body",
			Details: err.Error(),
		})
		return false
	}
	return true
}

// writeError serializes any failure as the error taxonomy shape with an
// appropriate HTTP status
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	response := ErrorResponse{
		Code:    string(cmerror.CodeGetCredentials),
		Message: err.Error(),
	}

	if cmErr, ok := cmerror.As(err); ok {
		response = ErrorResponse{
			Code:    string(cmErr.Code),
			Message: cmErr.Message,
			Details: cmErr.Details,
		}
		switch cmErr.Code {
		case cmerror.CodeConfiguration:
			status = http.StatusBadRequest
		case cmerror.CodeUnsupported:
			status = http.StatusServiceUnavailable
		default:
			status = http.StatusUnprocessableEntity
		}
	}

	h.writeJSON(w, status, response)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}
