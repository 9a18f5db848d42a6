package http

import (
	"net/http"

	"masters-marketplace/internal/delivery/http/handler"
	"masters-marketplace/internal/delivery/http/middleware"
	"masters-marketplace/internal/domain/entity"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Router struct {
	router           *mux.Router
	log              *logrus.Logger
	authHandler      *handler.AuthHandler
	masterHandler    *handler.MasterHandler
	reviewHandler    *handler.ReviewHandler
	referenceHandler *handler.ReferenceHandler
	searchHandler    *handler.SearchHandler
	auditLogHandler  *handler.AuditLogHandler
	authMiddleware   *middleware.AuthMiddleware
	corsMiddleware   *middleware.CORSMiddleware
}

func NewRouter(
	log *logrus.Logger,
	authHandler *handler.AuthHandler,
	masterHandler *handler.MasterHandler,
	reviewHandler *handler.ReviewHandler,
	referenceHandler *handler.ReferenceHandler,
	searchHandler *handler.SearchHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:           mux.NewRouter(),
		log:              log,
		authHandler:      authHandler,
		masterHandler:    masterHandler,
		reviewHandler:    reviewHandler,
		referenceHandler: referenceHandler,
		searchHandler:    searchHandler,
		auditLogHandler:  auditLogHandler,
		authMiddleware:   authMiddleware,
		corsMiddleware:   corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes
	api.HandleFunc("/register/personal/", r.authHandler.RegisterPersonal).Methods(http.MethodPost)
	api.Handle("/register/profession/", r.master(r.authHandler.RegisterProfession)).Methods(http.MethodPost)
	api.Handle("/register/additional/", r.master(r.authHandler.RegisterAdditional)).Methods(http.MethodPost)
	api.HandleFunc("/login/", r.authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/token/refresh/", r.authHandler.RefreshToken).Methods(http.MethodPost)
	api.Handle("/logout/", r.protected(r.authHandler.Logout)).Methods(http.MethodPost)
	api.Handle("/me/", r.protected(r.authHandler.GetCurrentUser)).Methods(http.MethodGet)
	api.HandleFunc("/password/reset/request/", r.authHandler.RequestPasswordReset).Methods(http.MethodPost)
	api.HandleFunc("/password/reset/confirm/", r.authHandler.ConfirmPasswordReset).Methods(http.MethodPost)

	// Master routes; fixed segments go before {id}
	api.HandleFunc("/masters/", r.masterHandler.GetAllMasters).Methods(http.MethodGet)
	api.HandleFunc("/masters/search/", r.searchHandler.SearchMasters).Methods(http.MethodGet)
	api.HandleFunc("/masters/top/", r.masterHandler.GetTopRatedMasters).Methods(http.MethodGet)
	api.HandleFunc("/masters/category/{id:[0-9]+}/", r.masterHandler.GetMastersByCategory).Methods(http.MethodGet)
	api.HandleFunc("/masters/service/{id:[0-9]+}/", r.masterHandler.GetMastersByService).Methods(http.MethodGet)
	api.HandleFunc("/masters/{id:[0-9]+}/", r.masterHandler.GetMaster).Methods(http.MethodGet)
	api.Handle("/masters/{id:[0-9]+}/", r.protected(r.masterHandler.UpdateMaster)).Methods(http.MethodPatch)
	api.Handle("/masters/{id:[0-9]+}/", r.protected(r.masterHandler.DeleteMaster)).Methods(http.MethodDelete)

	// Review routes
	api.HandleFunc("/masters/{id:[0-9]+}/reviews/", r.reviewHandler.GetReviews).Methods(http.MethodGet)
	api.Handle("/masters/{id:[0-9]+}/reviews/", r.protected(r.reviewHandler.CreateReview)).Methods(http.MethodPost)
	api.Handle("/masters/{id:[0-9]+}/reviews/{reviewId:[0-9]+}/", r.protected(r.reviewHandler.UpdateReview)).Methods(http.MethodPatch)
	api.Handle("/masters/{id:[0-9]+}/reviews/{reviewId:[0-9]+}/", r.protected(r.reviewHandler.DeleteReview)).Methods(http.MethodDelete)

	// Reference routes (public)
	api.HandleFunc("/cities/", r.referenceHandler.List(entity.KindCity)).Methods(http.MethodGet)
	api.HandleFunc("/districts/", r.referenceHandler.List(entity.KindDistrict)).Methods(http.MethodGet)
	api.HandleFunc("/educations/", r.referenceHandler.List(entity.KindEducation)).Methods(http.MethodGet)
	api.HandleFunc("/languages/", r.referenceHandler.List(entity.KindLanguage)).Methods(http.MethodGet)
	api.HandleFunc("/categories/", r.referenceHandler.List(entity.KindCategory)).Methods(http.MethodGet)
	api.HandleFunc("/services/", r.referenceHandler.List(entity.KindService)).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id:[0-9]+}/services/", r.referenceHandler.GetServicesByCategory).Methods(http.MethodGet)

	// Admin routes (protected - staff only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireStaff)

	// Audit logs (admin)
	admin.HandleFunc("/audit-logs/", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id:[0-9]+}/", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Reference management (admin)
	admin.HandleFunc("/{kind}/", r.referenceHandler.Create).Methods(http.MethodPost)
	admin.HandleFunc("/{kind}/{id:[0-9]+}/", r.referenceHandler.Update).Methods(http.MethodPut)
	admin.HandleFunc("/{kind}/{id:[0-9]+}/", r.referenceHandler.Delete).Methods(http.MethodDelete)

	// Add CORS and request logging middleware
	r.router.Use(r.corsMiddleware.Handle)
	r.router.Use(middleware.RequestLogger(r.log))

	return r.router
}

func (r *Router) protected(h http.HandlerFunc) http.Handler {
	return r.authMiddleware.Authenticate(h)
}

func (r *Router) master(h http.HandlerFunc) http.Handler {
	return r.authMiddleware.Authenticate(middleware.RequireMaster(h))
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
