package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskboard/taskboard/internal/core/policy"
)

// ctxActor reconstructs the actor injected by the Auth middleware and
// performs a fast-fail check before any service call: id and role must both
// be present; a structurally valid JWT without them is operationally
// unusable — reject with 401.
func ctxActor(c echo.Context) (policy.Actor, error) {
	id, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if id == "" || role == "" {
		return policy.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	email, _ := c.Get("email").(string)

	return policy.Actor{ID: id, Email: email, Role: role}, nil
}
