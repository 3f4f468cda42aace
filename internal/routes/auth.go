package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"reelist-server/internal/deps"
	"reelist-server/internal/model"
	"reelist-server/internal/session"
	pkghttpx "reelist-server/pkg/httpx"
	pkgrequestctx "reelist-server/pkg/requestctx"
)

type signupReq struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResp struct {
	Token string        `json:"token"`
	User  model.Session `json:"user"`
}

// Signup handles POST /auth/signup — account creation plus sign-in.
func Signup(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid json", err))
			return
		}
		if err := d.Validate.Struct(req); err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid signup data", err))
			return
		}
		res, err := d.Sessions.Signup(r.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, model.ErrEmailTaken) {
				writeError(w, r, pkghttpx.Conflict("email already registered", err))
				return
			}
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, authResp{Token: res.Token, User: res.Session})
	}
}

// Login handles POST /auth/login.
func Login(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid json", err))
			return
		}
		if err := d.Validate.Struct(req); err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid login data", err))
			return
		}
		res, err := d.Sessions.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, authResp{Token: res.Token, User: res.Session})
	}
}

// Logout handles POST /auth/logout. Requires a valid session; the transition
// to Anonymous notifies every dependent of this session.
func Logout(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jti := pkgrequestctx.SessionID(r.Context())
		if jti == "" {
			writeError(w, r, pkghttpx.Unauthorized("authentication required", nil))
			return
		}
		d.Sessions.Logout(jti)
		writeJSON(w, http.StatusOK, map[string]any{"status": "signed_out"})
	}
}

// Me handles GET /auth/me — the current session value.
func Me(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jti := pkgrequestctx.SessionID(r.Context())
		p, ok := d.Sessions.ProviderByJTI(jti)
		if !ok {
			writeError(w, r, pkghttpx.Unauthorized("authentication required", nil))
			return
		}
		state, sess := p.Current()
		if state != session.Authenticated {
			writeError(w, r, pkghttpx.Unauthorized("authentication required", nil))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": sess})
	}
}
