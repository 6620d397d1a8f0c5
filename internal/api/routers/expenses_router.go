package routers

import (
	"net/http"
	"roomledger/internal/api/handlers/expenses"
)

func expensesRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/expenses/create", expenses.CreateExpenseHandler)

	mux.HandleFunc("/expenses/{id}/list", expenses.GetApartmentExpensesHandler)

	mux.HandleFunc("/expenses/details/{id}", expenses.GetExpenseByIdHandler)

	mux.HandleFunc("/expenses/update/{id}", expenses.UpdateExpenseHandler)

	mux.HandleFunc("/expenses/delete/{expense_id}", expenses.DeleteExpenseHandler)

	mux.HandleFunc("/expenses/{id}/balances", expenses.GetApartmentBalancesHandler)

	return mux
}
