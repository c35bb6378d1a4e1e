// Command mockbackend is a development stand-in for the storefront
// backend. It deliberately reproduces the response-shape drift the real
// backend has shipped over time (bare arrays, wrapped objects under
// different field names, flat scalar maps) so client changes can be
// exercised against every shape locally.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tgmarket/miniapp-client/internal/config"
	"github.com/tgmarket/miniapp-client/pkg/logging"
)

const contextHeader = "X-Telegram-Init-Data"

var signingKey = []byte("mock-backend-dev-key")

func main() {
	var configPath = flag.String("config", "storefront.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New("mockbackend")
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           newRouter(logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithFields(map[string]interface{}{"addr": cfg.Listen}).Info("mock backend listening")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

func newRouter(logger *logging.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogging(logger))

	r.HandleFunc("/api/login", handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/login", handleAdminLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/products", handleProducts).Methods(http.MethodGet)
	r.HandleFunc("/api/promos", handlePromos).Methods(http.MethodGet)
	r.HandleFunc("/api/manager/assistants", handleAssistants).Methods(http.MethodGet)

	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(requireBearer)
	admin.HandleFunc("/settings", handleSettings).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler())
	return r
}

func requestLogging(logger *logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.WithFields(map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"request_id": r.Header.Get("X-Request-ID"),
				"has_ctx":    r.Header.Get(contextHeader) != "",
			}).Debug("request")
			next.ServeHTTP(w, r)
		})
	}
}

func requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "admin token required"})
			return
		}
		token, err := jwt.Parse(strings.TrimPrefix(auth, "Bearer "), func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return signingKey, nil
		})
		if err != nil || !token.Valid {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(contextHeader) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "init data required"})
		return
	}
	token, err := issueToken("user", "customer")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

func handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password required"})
		return
	}
	token, err := issueToken("admin", "admin")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	// Older deployments of the real backend named this field "token";
	// keep the drift so clients stay honest.
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func issueToken(subject, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
}

// Bare array shape.
func handleProducts(w http.ResponseWriter, _ *http.Request) {
	writeRaw(w, `[
		{"id":1,"title":"Green Tea","price":3.5,"currency":"EUR","available":true},
		{"id":2,"title":"Dark Roast","price":5.0,"currency":"EUR","available":true},
		{"id":3,"title":"Honey Cake","price":7.25,"currency":"EUR","available":false}
	]`)
}

// Domain-named wrapper shape.
func handlePromos(w http.ResponseWriter, _ *http.Request) {
	writeRaw(w, `{"promos":[
		{"id":7,"code":"SPRING","title":"Spring sale","discount":15,"active":true},
		{"id":8,"code":"VIP","title":"Returning customers","discount":25,"active":false}
	]}`)
}

// General "items" wrapper shape.
func handleAssistants(w http.ResponseWriter, _ *http.Request) {
	writeRaw(w, `{"items":[
		{"id":3,"name":"Nika","username":"nika_helps","active":true},
		{"id":4,"name":"Teo","username":"teo_support","active":true}
	]}`)
}

// Flat scalar map shape.
func handleSettings(w http.ResponseWriter, _ *http.Request) {
	writeRaw(w, `{"shop_name":"tgmarket","max_items":50,"mode":"live","support":"@tgmarket_help"}`)
}

func writeRaw(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
