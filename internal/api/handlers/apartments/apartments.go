package apartments

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"roomledger/internal/models"
	"roomledger/internal/repositories/sqlconnect"
	"roomledger/internal/services"
	"roomledger/pkg/utils"
)

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.WriteError(w, "not found", http.StatusNotFound)
	case errors.Is(err, services.ErrAlreadyMember):
		utils.WriteError(w, "you are already a member of this apartment", http.StatusConflict)
	case errors.Is(err, services.ErrInvalidInput):
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrBackendUnavailable):
		utils.Logger.Errorf("store unavailable: %v", err)
		utils.WriteError(w, "service temporarily unavailable", http.StatusServiceUnavailable)
	default:
		utils.Logger.Errorf("unexpected service error: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
	}
}

// FUNC TO CREATE AN APARTMENT
func CreateApartmentHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	type request struct {
		Name string `json:"name"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	svc := services.NewApartmentService(services.NewSQLStore(db))
	apartment, err := svc.Create(ctx, req.Name, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "Apartment created successfully",
		"data": map[string]interface{}{
			"apartment_id": apartment.ID,
			"name":         apartment.Name,
			"join_code":    apartment.JoinCode,
			"role":         "admin",
		},
	}

	utils.WriteJSONStatus(w, response, http.StatusCreated)
}

// FUNC TO JOIN AN APARTMENT BY CODE
func JoinApartmentHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	type request struct {
		JoinCode string `json:"join_code"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	svc := services.NewApartmentService(services.NewSQLStore(db))
	membership, apartment, err := svc.Join(ctx, req.JoinCode, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "Joined apartment successfully",
		"data": map[string]interface{}{
			"apartment_id":   apartment.ID,
			"apartment_name": apartment.Name,
			"membership_id":  membership.ID,
			"role":           membership.Role,
		},
	}

	utils.WriteJSON(w, response)
}

// FUNC TO LIST THE CALLER'S APARTMENTS
func GetMyApartmentsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	svc := services.NewApartmentService(services.NewSQLStore(db))
	apartments, err := svc.ListForUser(ctx, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := map[string]interface{}{
		"status":     "success",
		"count":      len(apartments),
		"apartments": apartments,
	}

	utils.WriteJSON(w, response)
}

// FUNC TO GET ONE APARTMENT WITH ITS MEMBERS
func GetApartmentByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idStr := r.PathValue("id")
	apartmentID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid apartment ID", http.StatusBadRequest)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var apartment models.Apartment
	err = db.QueryRowContext(ctx, "SELECT id, name, join_code, created_by, created_at FROM apartments WHERE id = ?", apartmentID).
		Scan(&apartment.ID, &apartment.Name, &apartment.JoinCode, &apartment.CreatedBy, &apartment.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "apartment not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "failed to retrieve apartment", http.StatusInternalServerError)
		return
	}

	var exists bool
	err = db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM apartment_members WHERE apartment_id = ? AND user_id = ?)", apartmentID, userID).Scan(&exists)
	if err != nil {
		utils.WriteError(w, "failed to verify apartment membership", http.StatusInternalServerError)
		return
	}
	if !exists {
		utils.WriteError(w, "you are not a member of this apartment", http.StatusForbidden)
		return
	}

	type Member struct {
		UserID   int            `json:"user_id"`
		Username string         `json:"username"`
		Role     string         `json:"role"`
		JoinedAt sql.NullString `json:"joined_at"`
	}

	query := `
		SELECT m.user_id, u.username, m.role, m.joined_at
		FROM apartment_members m
		JOIN users u ON m.user_id = u.id
		WHERE m.apartment_id = ?
		ORDER BY m.joined_at ASC
	`
	rows, err := db.QueryContext(ctx, query, apartmentID)
	if err != nil {
		utils.WriteError(w, "failed to retrieve members", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.UserID, &m.Username, &m.Role, &m.JoinedAt); err != nil {
			utils.Logger.Errorf("error scanning member: %v", err)
			continue
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		utils.WriteError(w, "error finalizing members read", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"apartment": apartment,
			"members":   members,
		},
	}

	utils.WriteJSON(w, response)
}

// FUNC TO UPDATE APARTMENT NAME
func UpdateApartmentHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idStr := r.PathValue("id")
	apartmentID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid apartment ID", http.StatusBadRequest)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	type request struct {
		Name string `json:"name"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		utils.WriteError(w, "name cannot be empty or whitespace", http.StatusBadRequest)
		return
	}
	if len(req.Name) > 100 {
		utils.WriteError(w, "name too long", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var createdBy int
	err = db.QueryRowContext(ctx, "SELECT created_by FROM apartments WHERE id = ?", apartmentID).Scan(&createdBy)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "apartment not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if createdBy != userID {
		utils.WriteError(w, "forbidden: not apartment admin", http.StatusForbidden)
		return
	}

	if _, err := db.ExecContext(ctx, "UPDATE apartments SET name = ? WHERE id = ?", req.Name, apartmentID); err != nil {
		utils.Logger.Errorf("failed to update apartment %d: %v", apartmentID, err)
		utils.WriteError(w, "failed to update apartment", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "Apartment updated successfully",
		"data": map[string]interface{}{
			"apartment_id": apartmentID,
			"name":         req.Name,
		},
	}

	utils.WriteJSON(w, response)
}

// FUNC TO DELETE AN APARTMENT (CASCADES TO ALL DEPENDENT ROWS)
func DeleteApartmentHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idStr := r.PathValue("id")
	apartmentID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid apartment ID", http.StatusBadRequest)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var createdBy int
	err = db.QueryRowContext(ctx, "SELECT created_by FROM apartments WHERE id = ?", apartmentID).Scan(&createdBy)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "apartment not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if createdBy != userID {
		utils.WriteError(w, "forbidden: not apartment admin", http.StatusForbidden)
		return
	}

	// Memberships, expenses, splits and settlements go with it via FK cascade.
	if _, err := db.ExecContext(ctx, "DELETE FROM apartments WHERE id = ?", apartmentID); err != nil {
		utils.Logger.Errorf("failed to delete apartment %d: %v", apartmentID, err)
		utils.WriteError(w, "failed to delete apartment", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "Apartment and all related records deleted",
	}

	utils.WriteJSON(w, response)
}

// FUNC TO LEAVE AN APARTMENT
func LeaveApartmentHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idStr := r.PathValue("id")
	apartmentID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid apartment ID", http.StatusBadRequest)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// The service refuses to remove a member who still appears in expenses,
	// splits, or settlements: those rows would reference a non-member and the
	// apartment's balances could no longer be computed.
	svc := services.NewApartmentService(services.NewSQLStore(db))
	if err := svc.Leave(ctx, apartmentID, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "Left apartment",
	}

	utils.WriteJSON(w, response)
}
