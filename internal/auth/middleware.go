package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tryst-events/registration-service/internal/domain"
	"github.com/tryst-events/registration-service/internal/repository"
	apperrors "github.com/tryst-events/registration-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	User   *domain.User
	Claims *Claims
}

// SessionMiddleware validates session tokens and loads the caller.
type SessionMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(tokens *TokenManager, users repository.UserRepository) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens, users: users}
}

type tokenBody struct {
	Token string `json:"token"`
}

// Handle enforces a valid session. The token is read from the JSON body
// field "token", or from a Bearer Authorization header when the body has none.
// A body that cannot be parsed is rejected before any token check.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	token, err := extractToken(c)
	if err != nil {
		return err
	}
	claims, err := m.tokens.Verify(token)
	if err != nil {
		return apperrors.NewUnauthorized(err)
	}

	user, err := m.users.FindByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewUnauthorized(err)
		}
		return apperrors.NewInternalError(err)
	}

	c.Locals(principalKey, &Principal{User: user, Claims: claims})
	return c.Next()
}

func extractToken(c *fiber.Ctx) (string, error) {
	var body tokenBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return "", fiber.NewError(http.StatusBadRequest, "invalid payload")
		}
		if body.Token != "" {
			return body.Token, nil
		}
	}

	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1]), nil
	}
	return "", nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
