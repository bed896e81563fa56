package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/interaction-dashboard-api/internal/models"
)

// SessionService issues opaque dashboard session identifiers.
type SessionService struct {
	newID func() string
	now   func() time.Time
}

// NewSessionService constructs a session service backed by random UUIDs.
func NewSessionService() *SessionService {
	return &SessionService{newID: uuid.NewString, now: time.Now}
}

// NewSession returns a fresh session. Nothing is stored server side.
func (s *SessionService) NewSession() models.Session {
	return models.Session{ID: s.newID(), IssuedAt: s.now().UTC()}
}
