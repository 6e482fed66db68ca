// Package hostuser is a minimal UserService adapter: a single caller
// supplies a user/workspace id, a database handle, and the host
// application's root directory, all fixed at construction. There
// is no multi-tenant session machinery in scope (cross-device sync is a
// named Non-goal), so this stays deliberately thin — grounded on the
// StorageUserService shape in the original Rust manager, translated into
// a Go interface implementation rather than a trait object.
package hostuser

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/CloneWith/storageengine/pkg/engine"
)

// Service is the single-tenant reference UserService.
type Service struct {
	userID      string
	workspaceID string
	appRoot     string
	db          *gorm.DB
}

// New builds a Service for one caller-supplied identity.
func New(userID, workspaceID, appRoot string, db *gorm.DB) *Service {
	return &Service{userID: userID, workspaceID: workspaceID, appRoot: appRoot, db: db}
}

var _ engine.UserService = (*Service)(nil)

func (s *Service) UserID() string      { return s.userID }
func (s *Service) WorkspaceID() string { return s.workspaceID }

func (s *Service) SQLiteConnection(userID string) (*gorm.DB, error) {
	if userID != s.userID {
		return nil, fmt.Errorf("hostuser: no connection for user %q", userID)
	}
	return s.db, nil
}

func (s *Service) ApplicationRootDir() (string, error) {
	if s.appRoot == "" {
		return "", fmt.Errorf("hostuser: application root directory not configured")
	}
	return s.appRoot, nil
}
