package echoportal

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tusthegr8/campus-companion/core"
	"github.com/tusthegr8/campus-companion/core/portal"
	inmemdb "github.com/tusthegr8/campus-companion/storage/inmem"
)

var (
	contextAppKey     = "portal"
	contextSessionKey = "sessionID"

	errInvalidToken   = errors.New("invalid session token")
	errNoSessionInCtx = errors.New("portal session not found in echo.Context")
)

// Claims are carried by the session cookie. The subject is the session id.
type Claims struct {
	jwt.StandardClaims
}

func signingKey(conf *core.Config) []byte { return []byte(conf.SecretKey) }

// GenerateToken signs a session token for session `id`.
func GenerateToken(conf *core.Config, id string, now time.Time) (string, error) {
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   id,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(conf.Session.TokenTTL).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	ss, err := token.SignedString(signingKey(conf))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// parseToken returns the session id carried by a valid token.
func parseToken(conf *core.Config, raw string) (string, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errInvalidToken
		}
		return signingKey(conf), nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", errInvalidToken
	}
	return claims.Subject, nil
}

// sessionMiddleware attaches the portal.App of the request's session to the echo.Context.
// Visitors without a valid session cookie get a new session.
func sessionMiddleware(conf *core.Config, sessions *inmemdb.SessionRegistry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			var id string
			if cookie, err := ctx.Cookie(conf.Session.CookieName); err == nil {
				id, _ = parseToken(conf, cookie.Value)
			}

			sid, app := sessions.GetOrCreate(id)
			if sid != id {
				now := time.Now()
				token, err := GenerateToken(conf, sid, now)
				if err != nil {
					return errors.Wrap(err, "generating session token")
				}
				ctx.SetCookie(&http.Cookie{
					Name:     conf.Session.CookieName,
					Value:    token,
					Path:     "/",
					Expires:  now.Add(conf.Session.TokenTTL),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx.Set(contextSessionKey, sid)
			ctx.Set(contextAppKey, app)
			return next(ctx)
		}
	}
}

func getContextApp(ctx echo.Context) (*portal.App, error) {
	if app, ok := ctx.Get(contextAppKey).(*portal.App); ok {
		return app, nil
	}
	return nil, errNoSessionInCtx
}
