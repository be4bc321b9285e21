package server

import (
	"github.com/gorilla/mux"
	"net/http"
)

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.loggingMw, s.maxBytesMw)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/user/register", s.userRegister()).Methods(http.MethodPost)
	api.HandleFunc("/user/login", s.userLogin()).Methods(http.MethodPost)

	userAPI := api.PathPrefix("/user").Subrouter()
	userAPI.Use(s.authMw)
	userAPI.HandleFunc("/logout", s.userLogout()).Methods(http.MethodPost)
	userAPI.HandleFunc("/info", s.userInfo()).Methods(http.MethodPost)
	userAPI.HandleFunc("/profile", s.userProfileUpdate()).Methods(http.MethodPost)
	userAPI.HandleFunc("/icons", s.userIconsUpdate()).Methods(http.MethodPost)
	userAPI.PathPrefix("").Handler(s.notFoundHandler())

	plantAPI := api.PathPrefix("/plant").Subrouter()
	plantAPI.Use(s.authMw)
	plantAPI.HandleFunc("/add", s.plantAdd()).Methods(http.MethodPost)
	plantAPI.HandleFunc("/remove", s.plantRemove()).Methods(http.MethodPost)
	plantAPI.HandleFunc("/revive", s.plantRevive()).Methods(http.MethodPost)
	plantAPI.HandleFunc("/event/add", s.plantEventAdd()).Methods(http.MethodPost)
	plantAPI.HandleFunc("/event/remove", s.plantEventRemove()).Methods(http.MethodPost)
	plantAPI.HandleFunc("/get/{plantID}", s.plantGetOne()).Methods(http.MethodGet)
	plantAPI.HandleFunc("/get", s.plantGetAll()).Methods(http.MethodGet)
	plantAPI.HandleFunc("/subscribe", s.plantSubscribe()).Methods(http.MethodGet)
	plantAPI.PathPrefix("").Handler(s.notFoundHandler())

	wishlistAPI := api.PathPrefix("/wishlist").Subrouter()
	wishlistAPI.Use(s.authMw)
	wishlistAPI.HandleFunc("/add", s.wishlistAdd()).Methods(http.MethodPost)
	wishlistAPI.HandleFunc("/update", s.wishlistUpdate()).Methods(http.MethodPost)
	wishlistAPI.HandleFunc("/remove", s.wishlistRemove()).Methods(http.MethodPost)
	wishlistAPI.HandleFunc("/get", s.wishlistGetAll()).Methods(http.MethodGet)
	wishlistAPI.HandleFunc("/convert/{itemID}", s.wishlistConvert()).Methods(http.MethodPost)
	wishlistAPI.PathPrefix("").Handler(s.notFoundHandler())

	aiAPI := api.PathPrefix("/ai").Subrouter()
	aiAPI.Use(s.authMw)
	aiAPI.HandleFunc("/identify", s.aiIdentify()).Methods(http.MethodPost)
	aiAPI.HandleFunc("/diagnose", s.aiDiagnose()).Methods(http.MethodPost)
	aiAPI.HandleFunc("/crops", s.aiCrops()).Methods(http.MethodPost)
	aiAPI.PathPrefix("").Handler(s.notFoundHandler())

	return r
}
