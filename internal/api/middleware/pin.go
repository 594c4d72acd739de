package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/trackmyhand/internal/api/apierr"
	"github.com/mcoot/trackmyhand/internal/model"
	"github.com/mcoot/trackmyhand/internal/services/profile"
)

// PINHeader carries the PIN for profile-changing requests
const PINHeader = "X-TMH-PIN"

type contextKey string

const userContextKey contextKey = "user"

// RequirePIN authenticates the profile named by the {id} route variable
// against the PIN header. Open profiles pass with any PIN.
func RequirePIN(profiles *profile.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := mux.Vars(r)["id"]
			if id == "" {
				apierr.WriteError(w, apierr.NewInvalidRequestError("user id is required"))
				return
			}

			user, err := profiles.Authenticate(r.Context(), id, PIN(r))
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PIN returns the PIN sent with the request, if any
func PIN(r *http.Request) string {
	return r.Header.Get(PINHeader)
}

// GetUser returns the authenticated profile from the request context
func GetUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

// MustGetUser returns the authenticated profile or panics
func MustGetUser(ctx context.Context) *model.User {
	user := GetUser(ctx)
	if user == nil {
		panic("no user in context - pin middleware not applied?")
	}
	return user
}
