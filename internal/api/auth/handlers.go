package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/buzzleague/buzz/internal/api/apiutil"
	"github.com/buzzleague/buzz/internal/api/authz"
	dbgen "github.com/buzzleague/buzz/internal/db/generated"
	"github.com/buzzleague/buzz/internal/eligibility"
)

var (
	queries *dbgen.Queries
	tokens  *TokenIssuer
)

var errAuthNotInitialized = errors.New("auth handlers not initialized")

func InitHandlers(q *dbgen.Queries, issuer *TokenIssuer) {
	queries = q
	tokens = issuer
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	AccountID int64     `json:"accountId"`
	PlayerID  *int64    `json:"playerId,omitempty"`
	IsService bool      `json:"isService"`
}

// HandleLogin exchanges a username and password for a bearer token.
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil || tokens == nil {
		logger.Error().Msg("Auth handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	account, err := queries.GetAccountByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Info().Str("username", username).Msg("Login failed: unknown account")
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		logger.Error().Err(err).Msg("Failed to load account")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !VerifyPassword(account.PasswordHash, req.Password) {
		logger.Info().Int64("account_id", account.ID).Msg("Login failed: bad password")
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	playerID, err := playerForAccount(r.Context(), queries, account.ID)
	if err != nil {
		logger.Error().Err(err).Int64("account_id", account.ID).Msg("Failed to load player")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	token, expiresAt, err := tokens.Issue(account.ID, playerID, account.IsService)
	if err != nil {
		logger.Error().Err(err).Int64("account_id", account.ID).Msg("Failed to issue token")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	logger.Info().Int64("account_id", account.ID).Bool("service", account.IsService).Msg("Login succeeded")
	if err := apiutil.WriteJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC(),
		AccountID: account.ID,
		PlayerID:  playerID,
		IsService: account.IsService,
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write login response")
	}
}

type meResponse struct {
	AccountID int64  `json:"accountId"`
	PlayerID  *int64 `json:"playerId"`
	IsService bool   `json:"isService"`
}

// GET /api/v1/auth/me
func HandleMe(w http.ResponseWriter, r *http.Request) {
	if err := authz.RequireAuthenticated(r.Context()); err != nil {
		apiutil.WriteError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := authz.IdentityFromContext(r.Context())
	if err := apiutil.WriteJSON(w, http.StatusOK, meResponse{
		AccountID: id.AccountID,
		PlayerID:  id.PlayerID,
		IsService: id.IsService,
	}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write identity response")
	}
}

// IdentityFromRequest resolves the bearer token on r. Requests without a
// token are anonymous; a token that fails verification is an error.
func IdentityFromRequest(r *http.Request) (eligibility.Identity, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return eligibility.Anonymous(), nil
	}
	if queries == nil || tokens == nil {
		return eligibility.Anonymous(), errAuthNotInitialized
	}
	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
		return eligibility.Anonymous(), fmt.Errorf("%w: malformed authorization header", ErrInvalidToken)
	}
	claims, err := tokens.Parse(strings.TrimSpace(raw))
	if err != nil {
		return eligibility.Anonymous(), err
	}
	return ResolveIdentity(r.Context(), queries, claims)
}

// ResolveIdentity loads the account named by claims and the player linked
// to it.
func ResolveIdentity(ctx context.Context, q *dbgen.Queries, claims *Claims) (eligibility.Identity, error) {
	accountID, err := claims.AccountID()
	if err != nil {
		return eligibility.Anonymous(), err
	}
	account, err := q.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return eligibility.Anonymous(), fmt.Errorf("%w: account %d no longer exists", ErrInvalidToken, accountID)
		}
		return eligibility.Anonymous(), fmt.Errorf("load account: %w", err)
	}
	playerID, err := playerForAccount(ctx, q, account.ID)
	if err != nil {
		return eligibility.Anonymous(), err
	}
	return eligibility.Identity{
		AccountID:     account.ID,
		Authenticated: true,
		IsService:     account.IsService,
		PlayerID:      playerID,
	}, nil
}

func playerForAccount(ctx context.Context, q *dbgen.Queries, accountID int64) (*int64, error) {
	player, err := q.GetPlayerByAccountID(ctx, sql.NullInt64{Int64: accountID, Valid: true})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load player: %w", err)
	}
	id := player.ID
	return &id, nil
}
