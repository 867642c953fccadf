package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/docblog/internal/common"
)

const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", common.ErrValidation)
		}
		return fmt.Errorf("%w: malformed JSON body", common.ErrValidation)
	}
	return nil
}

func (s *Server) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.cookieValidity),
		MaxAge:   int(s.cookieValidity.Seconds()),
		HttpOnly: true,
		Secure:   s.production,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.TokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.production,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	token, err := s.users.IssueToken(user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.setTokenCookie(w, token)
	writeJSON(w, http.StatusCreated, AuthResponse{Success: true, Token: token, User: newUserResponse(user, false)})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	token, err := s.users.IssueToken(user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.setTokenCookie(w, token)
	writeJSON(w, http.StatusOK, AuthResponse{Success: true, Token: token, User: newUserResponse(user, false)})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	user, err := s.users.GetByID(r.Context(), userID)
	if err != nil {
		// A valid token for an account the store does not know.
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrInvalidID) {
			err = common.ErrInvalidToken
		}
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user, true))
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.clearTokenCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
