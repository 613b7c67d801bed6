package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"shakehouse/internal/model"
	"shakehouse/internal/mw"
	"shakehouse/internal/service"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func LoginHandler(authSvc *service.AuthService, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "JSON inválido"})
			return
		}

		role, err := authSvc.Authenticate(req.Username, req.Password)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"success": false,
				"message": "Usuário ou senha inválidos.",
			})
			return
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"username": req.Username,
			"role":     role,
			"exp":      jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		})
		signed, err := token.SignedString([]byte(secret))
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Erro interno ao iniciar sessão."})
			return
		}

		w.Header().Set("Authorization", "Bearer "+signed)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Login bem-sucedido!",
			"token":   signed,
			"user":    model.Principal{Username: req.Username, Role: role},
		})
	}
}

// SessionHandler reports the principal behind the presented token.
func SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := mw.PrincipalFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusOK, map[string]any{"loggedIn": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"loggedIn": true, "user": principal})
	}
}
