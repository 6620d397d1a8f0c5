package expenses

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"roomledger/internal/api/handlers"
	"roomledger/internal/models"
	"roomledger/internal/repositories/sqlconnect"
	"roomledger/pkg/utils"

	"github.com/shopspring/decimal"
)

type splitInput struct {
	UserID int             `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

// fetchMemberIDs returns every member of the apartment.
func fetchMemberIDs(ctx context.Context, db *sql.DB, apartmentID int) ([]int, error) {
	rows, err := db.QueryContext(ctx, "SELECT user_id FROM apartment_members WHERE apartment_id = ?", apartmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		memberIDs = append(memberIDs, id)
	}
	return memberIDs, rows.Err()
}

// evenSplits divides amount across members to the cent. Leftover cents from
// rounding go to the payer so the splits always sum to the amount exactly.
func evenSplits(amount decimal.Decimal, memberIDs []int, payerID int) []splitInput {
	n := decimal.NewFromInt(int64(len(memberIDs)))
	share := amount.Div(n).RoundDown(2)
	remainder := amount.Sub(share.Mul(n))

	splits := make([]splitInput, 0, len(memberIDs))
	for _, id := range memberIDs {
		s := splitInput{UserID: id, Amount: share}
		if id == payerID {
			s.Amount = s.Amount.Add(remainder)
		}
		splits = append(splits, s)
	}
	return splits
}

// validateSplits enforces the write-time invariant: every split user is a
// member, no user appears twice, no negative shares, and the shares sum to
// the expense amount to the cent.
func validateSplits(splits []splitInput, amount decimal.Decimal, memberIDs []int) error {
	members := make(map[int]bool, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = true
	}

	seen := make(map[int]bool, len(splits))
	sum := decimal.Zero
	for _, s := range splits {
		if !members[s.UserID] {
			return fmt.Errorf("split references user %d who is not a member", s.UserID)
		}
		if seen[s.UserID] {
			return fmt.Errorf("user %d appears in more than one split", s.UserID)
		}
		seen[s.UserID] = true
		if s.Amount.IsNegative() {
			return fmt.Errorf("split for user %d has a negative amount", s.UserID)
		}
		sum = sum.Add(s.Amount)
	}

	if !sum.Equal(amount) {
		return fmt.Errorf("splits sum to %s but expense amount is %s", sum, amount)
	}
	return nil
}

func insertSplits(ctx context.Context, tx *sql.Tx, expenseID int64, splits []splitInput) error {
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO expense_splits (expense_id, user_id, amount) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range splits {
		if _, err := stmt.ExecContext(ctx, expenseID, s.UserID, s.Amount); err != nil {
			return err
		}
	}
	return nil
}

// FUNC TO CREATE AN EXPENSE WITH ITS SPLITS
func CreateExpenseHandler(w http.ResponseWriter, r *http.Request) {
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
		Title       string          `json:"title"`
		Amount      decimal.Decimal `json:"amount"`
		PaidBy      int             `json:"paid_by"`
		ExpenseDate string          `json:"expense_date"`
		Splits      []splitInput    `json:"splits"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Title == "" {
		utils.WriteError(w, "title is required", http.StatusBadRequest)
		return
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		utils.WriteError(w, "amount must be greater than 0", http.StatusBadRequest)
		return
	}
	if req.ExpenseDate == "" {
		req.ExpenseDate = time.Now().Format("2006-01-02")
	}
	if err := handlers.ValidateDate(req.ExpenseDate); err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.PaidBy == 0 {
		req.PaidBy = userID
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

	memberIDs, err := fetchMemberIDs(ctx, db, req.ApartmentID)
	if err != nil {
		utils.WriteError(w, "failed to fetch apartment members", http.StatusInternalServerError)
		return
	}

	payerIsMember := false
	for _, id := range memberIDs {
		if id == req.PaidBy {
			payerIsMember = true
			break
		}
	}
	if !payerIsMember {
		utils.WriteError(w, "payer is not a member of this apartment", http.StatusBadRequest)
		return
	}

	splits := req.Splits
	if len(splits) == 0 {
		splits = evenSplits(req.Amount, memberIDs, req.PaidBy)
	}
	if err := validateSplits(splits, req.Amount, memberIDs); err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		utils.Logger.Errorf("failed to start transaction: %v", err)
		utils.WriteError(w, "failed to start transaction", http.StatusInternalServerError)
		return
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO expenses (apartment_id, paid_by, created_by, title, amount, expense_date) VALUES (?, ?, ?, ?, ?, ?)",
		req.ApartmentID, req.PaidBy, userID, req.Title, req.Amount, req.ExpenseDate)
	if err != nil {
		tx.Rollback()
		utils.WriteError(w, "failed to create expense", http.StatusInternalServerError)
		return
	}

	expenseID, _ := res.LastInsertId()

	if err := insertSplits(ctx, tx, expenseID, splits); err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to split expense: %v", err)
		utils.WriteError(w, "failed to split expense", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(); err != nil {
		utils.WriteError(w, "failed to commit transaction", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": fmt.Sprintf("Expense created and split among %d members", len(splits)),
		"data": map[string]interface{}{
			"expense_id": expenseID,
			"amount":     req.Amount,
			"splits":     splits,
		},
	}

	utils.WriteJSONStatus(w, response, http.StatusCreated)
}

// FUNC TO LIST AN APARTMENT'S EXPENSES
func GetApartmentExpensesHandler(w http.ResponseWriter, r *http.Request) {
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
		SELECT e.id, e.title, e.amount, e.paid_by, u.username, e.expense_date, e.created_at
		FROM expenses e
		JOIN users u ON e.paid_by = u.id
		WHERE e.apartment_id = ?
		ORDER BY e.expense_date DESC, e.id DESC
	`
	rows, err := db.QueryContext(ctx, query, apartmentID)
	if err != nil {
		utils.WriteError(w, "failed to retrieve expenses", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	type Expense struct {
		ID          int             `json:"id"`
		Title       string          `json:"title"`
		Amount      decimal.Decimal `json:"amount"`
		PaidByID    int             `json:"paid_by"`
		PaidBy      string          `json:"paid_by_username"`
		ExpenseDate string          `json:"expense_date"`
		CreatedAt   sql.NullString  `json:"created_at"`
	}

	var expenses []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.Title, &e.Amount, &e.PaidByID, &e.PaidBy, &e.ExpenseDate, &e.CreatedAt); err != nil {
			utils.Logger.Errorf("error reading expenses: %v", err)
			utils.WriteError(w, "error reading expenses", http.StatusInternalServerError)
			return
		}
		expenses = append(expenses, e)
	}
	if err = rows.Err(); err != nil {
		utils.WriteError(w, "error finalizing expenses read", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"status":       "success",
		"apartment_id": apartmentID,
		"count":        len(expenses),
		"expenses":     expenses,
	}

	utils.WriteJSON(w, response)
}

// FUNC TO GET ONE EXPENSE WITH ITS SPLITS
func GetExpenseByIdHandler(w http.ResponseWriter, r *http.Request) {
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
	expenseID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid expense ID", http.StatusBadRequest)
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

	var expense models.Expense
	err = db.QueryRowContext(ctx, "SELECT id, apartment_id, paid_by, created_by, title, amount, expense_date FROM expenses WHERE id = ?", expenseID).
		Scan(&expense.ID, &expense.ApartmentID, &expense.PaidBy, &expense.CreatedBy, &expense.Title, &expense.Amount, &expense.ExpenseDate)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "expense not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "failed to retrieve expense", http.StatusInternalServerError)
		return
	}

	var exists bool
	err = db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM apartment_members WHERE apartment_id = ? AND user_id = ?)", expense.ApartmentID, userID).Scan(&exists)
	if err != nil {
		utils.WriteError(w, "failed to verify apartment membership", http.StatusInternalServerError)
		return
	}
	if !exists {
		utils.WriteError(w, "you are not a member of this apartment", http.StatusForbidden)
		return
	}

	type splitRow struct {
		models.ExpenseSplit
		Username string `json:"username"`
	}

	query := `
		SELECT s.id, s.user_id, u.username, s.amount, s.created_at
		FROM expense_splits s
		JOIN users u ON s.user_id = u.id
		WHERE s.expense_id = ?
	`
	rows, err := db.QueryContext(ctx, query, expenseID)
	if err != nil {
		utils.Logger.Errorf("failed to retrieve expense splits: %v", err)
		utils.WriteError(w, "failed to retrieve expense splits", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	var splits []splitRow
	for rows.Next() {
		var s splitRow
		if err := rows.Scan(&s.ID, &s.UserID, &s.Username, &s.Amount, &s.CreatedAt); err != nil {
			utils.Logger.Errorf("error scanning split: %v", err)
			continue
		}
		splits = append(splits, s)
	}

	response := map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"expense": expense,
			"splits":  splits,
		},
	}

	utils.WriteJSON(w, response)
}

// FUNC TO UPDATE AN EXPENSE (CREATOR ONLY)
func UpdateExpenseHandler(w http.ResponseWriter, r *http.Request) {
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
	expenseID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid expense ID", http.StatusBadRequest)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	type request struct {
		Title       *string          `json:"title"`
		Amount      *decimal.Decimal `json:"amount"`
		PaidBy      *int             `json:"paid_by"`
		ExpenseDate *string          `json:"expense_date"`
		Splits      []splitInput     `json:"splits"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var expense models.Expense
	err = db.QueryRowContext(ctx, "SELECT id, apartment_id, paid_by, created_by, title, amount, expense_date FROM expenses WHERE id = ?", expenseID).
		Scan(&expense.ID, &expense.ApartmentID, &expense.PaidBy, &expense.CreatedBy, &expense.Title, &expense.Amount, &expense.ExpenseDate)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "expense not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "failed to retrieve expense", http.StatusInternalServerError)
		return
	}

	if expense.CreatedBy != userID {
		utils.WriteError(w, "only the expense creator can edit it", http.StatusForbidden)
		return
	}

	memberIDs, err := fetchMemberIDs(ctx, db, expense.ApartmentID)
	if err != nil {
		utils.WriteError(w, "failed to fetch apartment members", http.StatusInternalServerError)
		return
	}

	if req.Title != nil {
		if *req.Title == "" {
			utils.WriteError(w, "title cannot be empty", http.StatusBadRequest)
			return
		}
		expense.Title = *req.Title
	}
	if req.Amount != nil {
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			utils.WriteError(w, "amount must be greater than 0", http.StatusBadRequest)
			return
		}
		expense.Amount = *req.Amount
	}
	if req.PaidBy != nil {
		isMember := false
		for _, id := range memberIDs {
			if id == *req.PaidBy {
				isMember = true
				break
			}
		}
		if !isMember {
			utils.WriteError(w, "payer is not a member of this apartment", http.StatusBadRequest)
			return
		}
		expense.PaidBy = *req.PaidBy
	}
	if req.ExpenseDate != nil {
		if err := handlers.ValidateDate(*req.ExpenseDate); err != nil {
			utils.WriteError(w, err.Error(), http.StatusBadRequest)
			return
		}
		expense.ExpenseDate = *req.ExpenseDate
	}

	// Splits are replaced whenever provided, and recomputed evenly whenever
	// the amount changed without new splits.
	splits := req.Splits
	if len(splits) == 0 && req.Amount != nil {
		splits = evenSplits(expense.Amount, memberIDs, expense.PaidBy)
	}
	if len(splits) > 0 {
		if err := validateSplits(splits, expense.Amount, memberIDs); err != nil {
			utils.WriteError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		utils.Logger.Errorf("failed to start transaction: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE expenses SET title = ?, amount = ?, paid_by = ?, expense_date = ? WHERE id = ?",
		expense.Title, expense.Amount, expense.PaidBy, expense.ExpenseDate, expense.ID)
	if err != nil {
		tx.Rollback()
		utils.WriteError(w, "error updating expense", http.StatusInternalServerError)
		return
	}

	if len(splits) > 0 {
		if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", expense.ID); err != nil {
			tx.Rollback()
			utils.WriteError(w, "failed to reset splits", http.StatusInternalServerError)
			return
		}
		if err := insertSplits(ctx, tx, int64(expense.ID), splits); err != nil {
			tx.Rollback()
			utils.WriteError(w, "failed to recreate splits", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		utils.WriteError(w, "failed to commit transaction", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "Expense updated successfully",
		"data": map[string]interface{}{
			"expense_id": expense.ID,
			"amount":     expense.Amount,
		},
	}

	utils.WriteJSON(w, response)
}

// FUNC TO DELETE AN EXPENSE (CREATOR ONLY)
func DeleteExpenseHandler(w http.ResponseWriter, r *http.Request) {
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

	idStr := r.PathValue("expense_id")
	expenseID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid expense ID", http.StatusBadRequest)
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
	err = db.QueryRowContext(ctx, "SELECT created_by FROM expenses WHERE id = ?", expenseID).Scan(&createdBy)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "expense not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "failed to retrieve expense", http.StatusInternalServerError)
		return
	}

	if createdBy != userID {
		utils.WriteError(w, "only the expense creator can delete it", http.StatusForbidden)
		return
	}

	// Splits cascade with the expense row.
	if _, err := db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID); err != nil {
		utils.Logger.Errorf("failed to delete expense %d: %v", expenseID, err)
		utils.WriteError(w, "failed to delete expense", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "Expense deleted",
	}

	utils.WriteJSON(w, response)
}
