package service

import (
	"Itemizer/internal/pkg"
	"Itemizer/internal/repository/redis"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Deps struct {
	DB        *gorm.DB
	Sessions  *redis.SessionRepository
	Signer    *pkg.Signer
	Mailer    pkg.Mailer
	Email     EmailConfig
	Publisher LogPublisher
	Log       *zap.Logger
}

// Services wires every service over one database.
type Services struct {
	Logs          *LogService
	Email         *EmailService
	Users         *UserService
	Organizations *OrganizationService
	Memberships   *MembershipService
	Items         *ItemService
	Assignments   *AssignmentService
	Requests      *RequestService
}

func New(d Deps) *Services {
	logs := NewLogService(d.DB, d.Publisher, d.Log)
	email := NewEmailService(d.Mailer, d.Email, d.Log)
	memberships := NewMembershipService(d.DB, logs)
	assignments := NewAssignmentService(d.DB, logs)
	items := NewItemService(d.DB, assignments, logs, email)
	return &Services{
		Logs:          logs,
		Email:         email,
		Users:         NewUserService(d.DB, d.Sessions, d.Signer, email, items, logs),
		Organizations: NewOrganizationService(d.DB, memberships, logs, email, d.Signer),
		Memberships:   memberships,
		Items:         items,
		Assignments:   assignments,
		Requests:      NewRequestService(d.DB, logs),
	}
}
