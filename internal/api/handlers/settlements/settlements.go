package settlements

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"roomledger/internal/models"
	"roomledger/internal/repositories/sqlconnect"
	"roomledger/pkg/utils"

	"github.com/shopspring/decimal"
)

// FUNC TO RECORD A SETTLEMENT PAYMENT
// Settlements are immutable: there is no update or delete endpoint, a wrong
// entry is corrected by recording an offsetting payment.
func CreateSettlementHandler(w http.ResponseWriter, r *http.Request) {
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
		ApartmentID int             `json:"apartment_id"`
		FromUser    int             `json:"from_user"`
		ToUser      int             `json:"to_user"`
		Amount      decimal.Decimal `json:"amount"`
		Note        string          `json:"note"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.FromUser == 0 {
		req.FromUser = userID
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		utils.WriteError(w, "amount must be greater than 0", http.StatusBadRequest)
		return
	}
	if req.FromUser == req.ToUser {
		utils.WriteError(w, "payer and receiver must be different members", http.StatusBadRequest)
		return
	}
	if len(req.Note) > 255 {
		utils.WriteError(w, "note too long", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var exists bool
	err := db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM apartments WHERE id = ?)", req.ApartmentID).Scan(&exists)
	if err != nil {
		utils.WriteError(w, "failed to retrieve apartment", http.StatusInternalServerError)
		return
	}
	if !exists {
		utils.WriteError(w, "apartment not found", http.StatusNotFound)
		return
	}

	err = db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM apartment_members WHERE apartment_id = ? AND user_id = ?)", req.ApartmentID, userID).Scan(&exists)
	if err != nil {
		utils.WriteError(w, "failed to verify apartment membership", http.StatusInternalServerError)
		return
	}
	if !exists {
		utils.WriteError(w, "you are not a member of this apartment", http.StatusForbidden)
		return
	}

	// Both parties must be members of the apartment.
	for _, party := range []int{req.FromUser, req.ToUser} {
		err = db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM apartment_members WHERE apartment_id = ? AND user_id = ?)", req.ApartmentID, party).Scan(&exists)
		if err != nil {
			utils.WriteError(w, "failed to verify apartment membership", http.StatusInternalServerError)
			return
		}
		if !exists {
			utils.WriteError(w, "settlement parties must be apartment members", http.StatusBadRequest)
			return
		}
	}

	res, err := db.ExecContext(ctx,
		"INSERT INTO settlements (apartment_id, from_user, to_user, amount, note, created_by) VALUES (?, ?, ?, ?, ?, ?)",
		req.ApartmentID, req.FromUser, req.ToUser, req.Amount, req.Note, userID)
	if err != nil {
		utils.Logger.Errorf("failed to record settlement: %v", err)
		utils.WriteError(w, "failed to record settlement", http.StatusInternalServerError)
		return
	}

	settlementID, _ := res.LastInsertId()

	response := map[string]interface{}{
		"status":  "success",
		"message": "Settlement recorded",
		"data": map[string]interface{}{
			"settlement_id": settlementID,
			"from_user":     req.FromUser,
			"to_user":       req.ToUser,
			"amount":        req.Amount,
		},
	}

	utils.WriteJSONStatus(w, response, http.StatusCreated)
}

// FUNC TO LIST AN APARTMENT'S SETTLEMENTS
func GetApartmentSettlementsHandler(w http.ResponseWriter, r *http.Request) {
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

	query := `
		SELECT s.id, s.from_user, fu.username, s.to_user, tu.username, s.amount, s.note, s.created_at
		FROM settlements s
		JOIN users fu ON s.from_user = fu.id
		JOIN users tu ON s.to_user = tu.id
		WHERE s.apartment_id = ?
		ORDER BY s.created_at DESC, s.id DESC
	`
	rows, err := db.QueryContext(ctx, query, apartmentID)
	if err != nil {
		utils.WriteError(w, "failed to retrieve settlements", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	type settlementRow struct {
		models.Settlement
		FromUsername string `json:"from_username"`
		ToUsername   string `json:"to_username"`
	}

	var settlements []settlementRow
	for rows.Next() {
		var s settlementRow
		if err := rows.Scan(&s.ID, &s.FromUser, &s.FromUsername, &s.ToUser, &s.ToUsername, &s.Amount, &s.Note, &s.CreatedAt); err != nil {
			utils.Logger.Errorf("error scanning settlement: %v", err)
			continue
		}
		settlements = append(settlements, s)
	}
	if err := rows.Err(); err != nil {
		utils.WriteError(w, "error finalizing settlements read", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"status":       "success",
		"apartment_id": apartmentID,
		"count":        len(settlements),
		"settlements":  settlements,
	}

	utils.WriteJSON(w, response)
}
