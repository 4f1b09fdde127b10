package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods("GET")
	r.HandleFunc("/api/users/login", s.LoginHandler).Methods("POST")
	return r
}
