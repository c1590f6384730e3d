package http

import (
	"log"
	"net/http"
	"net/url"

	"plata/internal/domain/connection"
	"plata/internal/domain/movement"
	"plata/internal/domain/transaction"
	"plata/internal/shared/middleware"
)

// ConnectHandler exposes the Mercado Pago connection flow. All provider
// failures arrive pre-classified from the lifecycle service.
type ConnectHandler struct {
	svc        *connection.Service
	importer   *transaction.ImporterService
	appBaseURL string
}

func NewConnectHandler(svc *connection.Service, importer *transaction.ImporterService, appBaseURL string) *ConnectHandler {
	return &ConnectHandler{svc: svc, importer: importer, appBaseURL: appBaseURL}
}

type PaymentsResponse struct {
	Payments []connection.Payment `json:"payments"`
	Total    int                  `json:"total"`
	Paging   connection.Paging    `json:"paging"`
}

// HandleStart redirects the browser to the provider consent page.
func (h *ConnectHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserID(r.Context()); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	authURL, err := h.svc.AuthorizationURL("")
	if err != nil {
		respondConnectionError(w, err)
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

// HandleCallback receives the provider redirect, exchanges the code and
// persists the token record, then sends the browser back to the integrations
// page.
func (h *ConnectHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.redirectWithError(w, r, "Usuario no autenticado")
		return
	}

	query := r.URL.Query()
	if authError := query.Get("error"); authError != "" {
		message := query.Get("error_description")
		if message == "" {
			message = authError
		}
		log.Printf("Authorization denied for user %d: %s", userID, message)
		h.redirectWithError(w, r, message)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.redirectWithError(w, r, "Código de autorización no recibido")
		return
	}

	if _, err := h.svc.ExchangeCode(r.Context(), userID, code); err != nil {
		log.Printf("Code exchange failed for user %d: %v", userID, err)
		h.redirectWithError(w, r, "Error al obtener token de acceso")
		return
	}

	http.Redirect(w, r, h.appBaseURL+"/integrations?success=true", http.StatusFound)
}

func (h *ConnectHandler) redirectWithError(w http.ResponseWriter, r *http.Request, message string) {
	http.Redirect(w, r, h.appBaseURL+"/integrations?error="+url.QueryEscape(message), http.StatusFound)
}

// HandleDisconnect deletes the stored token record. Always succeeds, even
// when no record exists.
func (h *ConnectHandler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.svc.Disconnect(r.Context(), userID); err != nil {
		log.Printf("Error disconnecting user %d: %v", userID, err)
		http.Error(w, "Failed to disconnect", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"disconnected": true})
}

// HandleStatus reports whether the user has a provider connection.
func (h *ConnectHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	status, err := h.svc.Status(r.Context(), userID)
	if err != nil {
		log.Printf("Error reading connection status for user %d: %v", userID, err)
		http.Error(w, "Failed to read connection status", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// HandleProfile returns the connected provider account's profile.
func (h *ConnectHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	info, err := h.svc.Profile(r.Context(), userID)
	if err != nil {
		respondConnectionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// HandlePayments returns a page of the provider payment history.
func (h *ConnectHandler) HandlePayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	page, err := h.svc.Payments(r.Context(), userID, limit, offset)
	if err != nil {
		respondConnectionError(w, err)
		return
	}
	if page.Results == nil {
		page.Results = []connection.Payment{}
	}

	writeJSON(w, http.StatusOK, PaymentsResponse{
		Payments: page.Results,
		Total:    page.Paging.Total,
		Paging:   page.Paging,
	})
}

// HandleMovements returns a page of normalized account movements.
func (h *ConnectHandler) HandleMovements(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	page, err := h.svc.Movements(r.Context(), userID, limit, offset)
	if err != nil {
		respondConnectionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, movement.NormalizePage(*page, movement.SourceMercadoPago))
}

// HandleImport pulls provider movements into the transactions table.
func (h *ConnectHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := queryInt(r, "limit", 0)

	result, err := h.importer.ImportMovements(r.Context(), userID, limit)
	if err != nil {
		respondConnectionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
