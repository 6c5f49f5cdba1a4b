package oauthserver

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the OAuth authorization server's persistence layer. Every
// component takes its Postgres client at construction, per the teacher's
// dependency-injection convention for anything that isn't a package-level
// global (contrast core.DBPool, which this in turn wraps at wiring time).
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// RegisterClient persists a dynamically registered public client.
func (s *Store) RegisterClient(ctx context.Context, clientID string, redirectURIs []string, clientName string) (*Client, error) {
	var registeredAt time.Time
	err := s.db.QueryRow(ctx,
		`INSERT INTO oauth_clients (client_id, redirect_uris, client_name, created_at)
		 VALUES ($1, $2, $3, now())
		 RETURNING created_at`,
		clientID, redirectURIs, clientName,
	).Scan(&registeredAt)
	if err != nil {
		return nil, err
	}
	return &Client{
		ClientID:     clientID,
		RedirectURIs: redirectURIs,
		ClientName:   clientName,
		RegisteredAt: registeredAt,
	}, nil
}

// CreateOAuthState persists the inbound CSRF record created by /authorize.
func (s *Store) CreateOAuthState(ctx context.Context, st *OAuthState) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO oauth_states
		   (state, client_id, redirect_uri, scope, resource, code_challenge, code_challenge_method, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		st.State, st.ClientID, st.RedirectURI, st.Scope, st.Resource,
		st.CodeChallenge, st.CodeChallengeMethod, st.ExpiresAt,
	)
	return err
}

// ConsumeOAuthState looks up and always deletes the state row — single-use
// regardless of whether the lookup later turns out to be expired, matching
// spec §5's "always deletes the row, whether expired or not".
func (s *Store) ConsumeOAuthState(ctx context.Context, state string) (*OAuthState, error) {
	var st OAuthState
	err := s.db.QueryRow(ctx,
		`DELETE FROM oauth_states WHERE state = $1
		 RETURNING state, client_id, redirect_uri, scope, resource,
		           code_challenge, code_challenge_method, expires_at`,
		state,
	).Scan(
		&st.State, &st.ClientID, &st.RedirectURI, &st.Scope, &st.Resource,
		&st.CodeChallenge, &st.CodeChallengeMethod, &st.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if time.Now().After(st.ExpiresAt) {
		return nil, nil
	}
	return &st, nil
}

// CreateAuthCode persists a freshly minted authorization code.
func (s *Store) CreateAuthCode(ctx context.Context, ac *AuthCode) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO oauth_codes
		   (code, user_id, redirect_uri, scope, resource, code_challenge, code_challenge_method, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ac.Code, ac.UserID, ac.RedirectURI, ac.Scope, ac.Resource,
		ac.CodeChallenge, ac.CodeChallengeMethod, ac.ExpiresAt,
	)
	return err
}

// ConsumeAuthCode atomically marks a code used and returns its row, or nil
// if the code does not exist, is already used, or is expired. The
// conditional UPDATE ... WHERE used_at IS NULL makes replay detection
// linearizable without an application-level lock.
func (s *Store) ConsumeAuthCode(ctx context.Context, code string) (*AuthCode, error) {
	var ac AuthCode
	err := s.db.QueryRow(ctx,
		`UPDATE oauth_codes SET used_at = now()
		 WHERE code = $1 AND used_at IS NULL
		 RETURNING code, user_id, redirect_uri, scope, resource,
		           code_challenge, code_challenge_method, expires_at`,
		code,
	).Scan(
		&ac.Code, &ac.UserID, &ac.RedirectURI, &ac.Scope, &ac.Resource,
		&ac.CodeChallenge, &ac.CodeChallengeMethod, &ac.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if time.Now().After(ac.ExpiresAt) {
		return nil, nil
	}
	return &ac, nil
}

// MintTokenPair persists a fresh access/refresh token pair.
func (s *Store) MintTokenPair(ctx context.Context, t *AccessToken) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO oauth_tokens
		   (access_token, user_id, scope, resource, client_name, expires_at,
		    refresh_token, refresh_token_expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.AccessToken, t.UserID, t.Scope, t.Resource, t.ClientName, t.ExpiresAt,
		t.RefreshToken, t.RefreshTokenExpiry,
	)
	return err
}

// LookupAccessToken fetches a non-revoked, non-expired access token row.
func (s *Store) LookupAccessToken(ctx context.Context, accessToken string) (*AccessToken, error) {
	var t AccessToken
	err := s.db.QueryRow(ctx,
		`SELECT access_token, user_id, scope, resource, client_name, expires_at, revoked_at
		 FROM oauth_tokens WHERE access_token = $1`,
		accessToken,
	).Scan(&t.AccessToken, &t.UserID, &t.Scope, &t.Resource, &t.ClientName, &t.ExpiresAt, &t.RevokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if t.RevokedAt != nil || time.Now().After(t.ExpiresAt) {
		return nil, nil
	}
	return &t, nil
}

// LookupByRefreshToken fetches a token row by its refresh token, regardless
// of the access token's own expiry (the refresh token has its own TTL).
func (s *Store) LookupByRefreshToken(ctx context.Context, refreshToken string) (*AccessToken, error) {
	var t AccessToken
	err := s.db.QueryRow(ctx,
		`SELECT access_token, user_id, scope, resource, client_name,
		        expires_at, revoked_at, refresh_token, refresh_token_expires_at
		 FROM oauth_tokens WHERE refresh_token = $1`,
		refreshToken,
	).Scan(&t.AccessToken, &t.UserID, &t.Scope, &t.Resource, &t.ClientName,
		&t.ExpiresAt, &t.RevokedAt, &t.RefreshToken, &t.RefreshTokenExpiry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if t.RevokedAt != nil || time.Now().After(t.RefreshTokenExpiry) {
		return nil, nil
	}
	return &t, nil
}

// RevokeAccessToken marks a single token (found by either access or refresh
// token value) revoked.
func (s *Store) RevokeAccessToken(ctx context.Context, token string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE oauth_tokens SET revoked_at = now()
		 WHERE (access_token = $1 OR refresh_token = $1) AND revoked_at IS NULL`,
		token,
	)
	return err
}

// RevokeAllForUser revokes every live token belonging to userID.
func (s *Store) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE oauth_tokens SET revoked_at = now()
		 WHERE user_id = $1 AND revoked_at IS NULL`,
		userID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ActiveTokenCountForUser reports how many live (non-revoked, non-expired)
// tokens userID currently holds, for GET /oauth/status.
func (s *Store) ActiveTokenCountForUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT count(*) FROM oauth_tokens
		 WHERE user_id = $1 AND revoked_at IS NULL AND expires_at > now()`,
		userID,
	).Scan(&count)
	return count, err
}

// IncrementRawCredentialsRateLimit atomically upserts and increments
// today's (UTC) counter for userID, returning the post-increment count. The
// increment itself is a single statement — correct under concurrent callers
// without an application-level lock, per §4.2.8/§5.
func (s *Store) IncrementRawCredentialsRateLimit(ctx context.Context, userID string) (int, error) {
	var count int
	today := time.Now().UTC().Format("2006-01-02")
	err := s.db.QueryRow(ctx,
		`INSERT INTO rate_limits (user_id, window_date, request_count)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (user_id, window_date)
		 DO UPDATE SET request_count = rate_limits.request_count + 1
		 RETURNING request_count`,
		userID, today,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
