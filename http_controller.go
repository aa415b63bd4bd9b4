package userpool

import (
	"errors"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// ClaimsContextKey is where RequireAuth stores verified claims on the
// request context.
const ClaimsContextKey = "userpool:claims"

// Controller is the thin HTTP surface over the coordinators. Routing and
// schema validation live here; every invariant is enforced below it.
type Controller struct {
	repo   RepositoryManager
	sync   *IdentitySync
	edits  *RoleChange
	tokens TokenValidator
	guard  ClaimsGuard
	logger Logger
}

func NewController(repo RepositoryManager, sync *IdentitySync, edits *RoleChange, tokens TokenValidator) *Controller {
	return &Controller{
		repo:   repo,
		sync:   sync,
		edits:  edits,
		tokens: tokens,
		logger: defLogger{},
	}
}

func (ct *Controller) WithLogger(logger Logger) *Controller {
	if logger != nil {
		ct.logger = logger
	}
	return ct
}

// RegisterRoutes mounts the public boundary and the protected user routes.
func (ct *Controller) RegisterRoutes(app *fiber.App) {
	app.Get("/health", ct.Health)
	app.Post("/auth", ct.Authenticate)

	app.Get("/me", ct.RequireAuth(), ct.Me)
	app.Get("/users", ct.RequireAuth(), ct.RequireRole(RoleAdmin), ct.ListUsers)
	app.Patch("/edit-account", ct.RequireAuth(), ct.EditAccount)
}

func (ct *Controller) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "OK"})
}

// Authenticate is the unauthenticated registration/login boundary.
func (ct *Controller) Authenticate(c *fiber.Ctx) error {
	payload := CredentialsPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "malformed request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ct.renderError(c, err)
	}

	outcome, err := ct.sync.AuthenticateOrRegister(c.Context(), payload.Candidate())
	if err != nil {
		return ct.renderError(c, err)
	}

	return c.JSON(outcome.Bundle)
}

// Me returns the local record for the authenticated identity.
func (ct *Controller) Me(c *fiber.Ctx) error {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		return ct.renderError(c, ErrTokenInvalid)
	}

	record, err := ct.repo.Records().FindByEmail(c.Context(), claims.Subject())
	if err != nil {
		return ct.renderError(c, err)
	}

	return c.JSON(record)
}

// ListUsers returns a page of records plus a flag telling the caller
// whether another page exists.
func (ct *Controller) ListUsers(c *fiber.Ctx) error {
	query := PageQuery{}
	if err := c.QueryParser(&query); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "malformed query",
		})
	}

	if err := query.Validate(); err != nil {
		return ct.renderError(c, err)
	}

	records, err := ct.repo.Records().ListPage(c.Context(), query.Page*query.Limit, query.Limit+1)
	if err != nil {
		return ct.renderError(c, err)
	}

	morePages := false
	if len(records) > query.Limit {
		morePages = true
		records = records[:query.Limit]
	}

	return c.JSON(fiber.Map{
		"items":      records,
		"more_pages": morePages,
	})
}

// EditAccount applies profile/role edits to the target named by the email
// query parameter.
func (ct *Controller) EditAccount(c *fiber.Ctx) error {
	query := EditQuery{}
	if err := c.QueryParser(&query); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "malformed query",
		})
	}
	if err := query.Validate(); err != nil {
		return ct.renderError(c, err)
	}

	payload := EditPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "malformed request body",
		})
	}
	if err := payload.Validate(); err != nil {
		return ct.renderError(c, err)
	}

	claims, ok := ClaimsFromContext(c)
	if !ok {
		return ct.renderError(c, ErrTokenInvalid)
	}

	if _, err := ct.edits.EditUser(c.Context(), query.Target(), payload.Changes(), claims); err != nil {
		return ct.renderError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// RequireAuth validates the bearer token and stores the claims on the
// request context.
func (ct *Controller) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := extractBearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return ct.renderError(c, err)
		}

		claims, err := ct.tokens.Validate(raw)
		if err != nil {
			ct.logger.Debug("token validation failed: %v", err)
			return ct.renderError(c, cloneWithCause(ErrTokenInvalid, err, nil))
		}

		c.Locals(ClaimsContextKey, claims)
		c.SetUserContext(WithClaimsContext(c.UserContext(), claims))
		return c.Next()
	}
}

// RequireRole gates a route on the effective role carried in the verified
// claims. It must run after RequireAuth.
func (ct *Controller) RequireRole(allowed ...UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return ct.renderError(c, ErrTokenInvalid)
		}

		if err := ct.guard.Authorize(claims, allowed...); err != nil {
			return ct.renderError(c, err)
		}

		return c.Next()
	}
}

// ClaimsFromContext returns the verified claims stored by RequireAuth.
func ClaimsFromContext(c *fiber.Ctx) (AuthClaims, bool) {
	claims, ok := c.Locals(ClaimsContextKey).(AuthClaims)
	return claims, ok
}

func extractBearerToken(header string) (string, error) {
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "", cloneWithCause(ErrTokenInvalid, nil, map[string]any{
			"reason": "authorization header missing or invalid",
		})
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")), nil
}

func (ct *Controller) renderError(c *fiber.Ctx, err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": verrs})
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		status := statusFromCategory(rich.Category)
		if status >= http.StatusInternalServerError {
			ct.logger.Error("request failed with category %s: %v", rich.Category, err)
		}
		return c.Status(status).JSON(fiber.Map{"error": rich.Message})
	}

	ct.logger.Error("unexpected error: %v", err)
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}

func statusFromCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryOperation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
