package expenses

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"roomledger/internal/ledger"
	"roomledger/internal/repositories/sqlconnect"
	"roomledger/pkg/utils"

	"github.com/shopspring/decimal"
)

// fetchLedgerRows loads everything the balance engine needs for one
// apartment: member ids, expenses with splits, and settlements.
func fetchLedgerRows(ctx context.Context, db *sql.DB, apartmentID int) ([]int, []ledger.Expense, []ledger.Settlement, error) {
	memberIDs, err := fetchMemberIDs(ctx, db, apartmentID)
	if err != nil {
		return nil, nil, nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT id, paid_by, amount FROM expenses WHERE apartment_id = ? ORDER BY id", apartmentID)
	if err != nil {
		return nil, nil, nil, err
	}
	defer rows.Close()

	var expenses []ledger.Expense
	byID := make(map[int]int) // expense id -> index
	for rows.Next() {
		var e ledger.Expense
		if err := rows.Scan(&e.ID, &e.PaidBy, &e.Amount); err != nil {
			return nil, nil, nil, err
		}
		byID[e.ID] = len(expenses)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, nil, err
	}

	splitRows, err := db.QueryContext(ctx, `
		SELECT s.expense_id, s.user_id, s.amount
		FROM expense_splits s
		JOIN expenses e ON s.expense_id = e.id
		WHERE e.apartment_id = ?
	`, apartmentID)
	if err != nil {
		return nil, nil, nil, err
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var expenseID int
		var s ledger.Split
		if err := splitRows.Scan(&expenseID, &s.UserID, &s.Amount); err != nil {
			return nil, nil, nil, err
		}
		if idx, ok := byID[expenseID]; ok {
			expenses[idx].Splits = append(expenses[idx].Splits, s)
		}
	}
	if err := splitRows.Err(); err != nil {
		return nil, nil, nil, err
	}

	settlementRows, err := db.QueryContext(ctx, "SELECT from_user, to_user, amount FROM settlements WHERE apartment_id = ? ORDER BY id", apartmentID)
	if err != nil {
		return nil, nil, nil, err
	}
	defer settlementRows.Close()

	var settlements []ledger.Settlement
	for settlementRows.Next() {
		var s ledger.Settlement
		if err := settlementRows.Scan(&s.FromUser, &s.ToUser, &s.Amount); err != nil {
			return nil, nil, nil, err
		}
		settlements = append(settlements, s)
	}
	if err := settlementRows.Err(); err != nil {
		return nil, nil, nil, err
	}

	return memberIDs, expenses, settlements, nil
}

// FUNC TO GET NET BALANCES FOR AN APARTMENT
func GetApartmentBalancesHandler(w http.ResponseWriter, r *http.Request) {
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
	err = db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM apartments WHERE id = ?)", apartmentID).Scan(&exists)
	if err != nil {
		utils.WriteError(w, "failed to retrieve apartment", http.StatusInternalServerError)
		return
	}
	if !exists {
		utils.WriteError(w, "apartment not found", http.StatusNotFound)
		return
	}

	err = db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM apartment_members WHERE apartment_id = ? AND user_id = ?)", apartmentID, userID).Scan(&exists)
	if err != nil {
		utils.WriteError(w, "failed to verify apartment membership", http.StatusInternalServerError)
		return
	}
	if !exists {
		utils.WriteError(w, "you are not a member of this apartment", http.StatusForbidden)
		return
	}

	memberIDs, expenses, settlements, err := fetchLedgerRows(ctx, db, apartmentID)
	if err != nil {
		utils.Logger.Errorf("failed to fetch ledger rows for apartment %d: %v", apartmentID, err)
		utils.WriteError(w, "failed to fetch apartment ledger", http.StatusInternalServerError)
		return
	}

	balances, err := ledger.ComputeBalances(memberIDs, expenses, settlements)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidInput) {
			utils.Logger.Errorf("inconsistent ledger rows for apartment %d: %v", apartmentID, err)
			utils.WriteError(w, "apartment ledger contains inconsistent rows", http.StatusInternalServerError)
			return
		}
		utils.WriteError(w, "failed to compute balances", http.StatusInternalServerError)
		return
	}

	usernames := make(map[int]string, len(memberIDs))
	nameRows, err := db.QueryContext(ctx, `
		SELECT u.id, u.username
		FROM users u
		JOIN apartment_members m ON m.user_id = u.id
		WHERE m.apartment_id = ?
	`, apartmentID)
	if err == nil {
		defer nameRows.Close()
		for nameRows.Next() {
			var id int
			var name string
			if err := nameRows.Scan(&id, &name); err == nil {
				usernames[id] = name
			}
		}
	}

	type MemberBalance struct {
		UserID     int             `json:"user_id"`
		Username   string          `json:"username"`
		NetBalance decimal.Decimal `json:"net_balance"`
	}
	type SuggestedTransfer struct {
		FromUser int             `json:"from_user"`
		ToUser   int             `json:"to_user"`
		Amount   decimal.Decimal `json:"amount"`
	}

	memberBalances := make([]MemberBalance, 0, len(memberIDs))
	for _, id := range memberIDs {
		memberBalances = append(memberBalances, MemberBalance{
			UserID:     id,
			Username:   usernames[id],
			NetBalance: balances[id],
		})
	}

	var suggested []SuggestedTransfer
	for _, tr := range ledger.SuggestSettlements(balances) {
		suggested = append(suggested, SuggestedTransfer{
			FromUser: tr.FromUser,
			ToUser:   tr.ToUser,
			Amount:   tr.Amount,
		})
	}

	response := map[string]interface{}{
		"status":       "success",
		"apartment_id": apartmentID,
		"data": map[string]interface{}{
			"balances":              memberBalances,
			"suggested_settlements": suggested,
		},
	}

	utils.WriteJSON(w, response)
}
