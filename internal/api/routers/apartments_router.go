package routers

import (
	"net/http"
	"roomledger/internal/api/handlers/apartments"
)

func apartmentsRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/apartments/create", apartments.CreateApartmentHandler)

	mux.HandleFunc("/apartments/join", apartments.JoinApartmentHandler)

	mux.HandleFunc("/apartments/", apartments.GetMyApartmentsHandler)

	mux.HandleFunc("/apartments/{id}", apartments.GetApartmentByIDHandler)

	mux.HandleFunc("/apartments/update/{id}", apartments.UpdateApartmentHandler)

	mux.HandleFunc("/apartments/delete/{id}", apartments.DeleteApartmentHandler)

	mux.HandleFunc("/apartments/{id}/leave", apartments.LeaveApartmentHandler)

	return mux
}
