package routers

import (
	"net/http"
	"roomledger/internal/api/handlers/settlements"
)

func settlementsRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/settlements/create", settlements.CreateSettlementHandler)

	mux.HandleFunc("/settlements/{id}/list", settlements.GetApartmentSettlementsHandler)

	return mux
}
