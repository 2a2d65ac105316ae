package http

import (
	"errors"
	"net/http"

	"civicdesk/internal/helper"
	"civicdesk/internal/models"
	"civicdesk/internal/service"
	"civicdesk/pkg/jwt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Claim keys read from the token payload.
const (
	claimUserID = "user_id"
	claimName   = "name"
	claimRole   = "role"
)

var errInvalidOperator = errors.New("token payload does not identify an operator")

// AuthMiddleware defines the function signature for our authentication middleware.
type AuthMiddleware func(http.Handler) http.Handler

// NewAuthMiddleware creates a middleware that authenticates the bearer token and
// stores the operator it names on the request context.
func NewAuthMiddleware(jwtManager *jwt.Manager, logger *zap.Logger) AuthMiddleware {
	log := logger.Named("AuthMiddleware")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload, err := jwtManager.ParseBearer(r.Header.Get("Authorization"))
			if err != nil {
				log.Debug("AuthMiddleware: token rejected", zap.String("path", r.URL.Path), zap.Error(err))
				service.WriteHttpError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
				return
			}

			operator, err := operatorFromPayload(payload)
			if err != nil {
				service.WriteHttpError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(helper.WithOperator(r.Context(), operator)))
		})
	}
}

func operatorFromPayload(payload map[string]interface{}) (*models.User, error) {
	rawID, _ := payload[claimUserID].(string)
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil || id.IsZero() {
		return nil, errInvalidOperator
	}
	name, _ := payload[claimName].(string)
	role, _ := payload[claimRole].(string)
	return &models.User{UserId: id, Name: name, Role: role}, nil
}
