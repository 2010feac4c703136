// Package api exposes the JSON HTTP interface of the service.
package api

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/nyinsen/internal/content"
	"github.com/terraincognita07/nyinsen/internal/db"
	"github.com/terraincognita07/nyinsen/internal/ratelimit"
	"github.com/terraincognita07/nyinsen/internal/services"
	"gorm.io/gorm"
)

const defaultSessionTTL = 7 * 24 * time.Hour

// Dependencies are the collaborators built by the process entrypoint. Chat
// and Alerts are optional; their routes answer 503 when they are missing.
type Dependencies struct {
	Database     *gorm.DB
	Catalog      *content.Catalog
	Chat         *services.ChatService
	Alerts       *services.RiskAlertService
	APILimiter   *ratelimit.TokenBucket
	SecretKey    []byte
	Location     *time.Location
	CookieSecure bool
	SessionTTL   time.Duration
	Log          logrus.FieldLogger
}

type Handler struct {
	db           *gorm.DB
	repositories *db.Repositories
	catalog      *content.Catalog
	secretKey    []byte
	location     *time.Location
	cookieSecure bool
	sessionTTL   time.Duration
	log          logrus.FieldLogger
	now          func() time.Time

	authService         *services.AuthService
	cycleService        *services.CycleService
	profileService      *services.ProfileService
	contactService      *services.EmergencyContactService
	professionalService *services.HealthcareProfessionalService
	alertService        *services.RiskAlertService
	chatService         *services.ChatService
	apiLimiter          *ratelimit.TokenBucket
	loginLimiter        *attemptLimiter
}

func NewHandler(deps Dependencies) (*Handler, error) {
	if deps.Database == nil {
		return nil, errors.New("database is required")
	}
	if len(deps.SecretKey) == 0 {
		return nil, errors.New("secret key is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("content catalog is required")
	}

	location := deps.Location
	if location == nil {
		location = time.UTC
	}
	sessionTTL := deps.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	repositories := db.NewRepositories(deps.Database)
	return &Handler{
		db:                  deps.Database,
		repositories:        repositories,
		catalog:             deps.Catalog,
		secretKey:           deps.SecretKey,
		location:            location,
		cookieSecure:        deps.CookieSecure,
		sessionTTL:          sessionTTL,
		log:                 log,
		now:                 time.Now,
		authService:         services.NewAuthService(repositories.Users),
		cycleService:        services.NewCycleService(repositories.Users, repositories.CycleLogs, deps.Catalog, location),
		profileService:      services.NewProfileService(repositories.Profiles, location),
		contactService:      services.NewEmergencyContactService(repositories.EmergencyContacts),
		professionalService: services.NewHealthcareProfessionalService(repositories.HealthcareProfessionals, deps.Catalog),
		alertService:        deps.Alerts,
		chatService:         deps.Chat,
		apiLimiter:          deps.APILimiter,
		loginLimiter:        newAttemptLimiter(loginAttemptLimit, loginAttemptWindow),
	}, nil
}
