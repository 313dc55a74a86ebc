package service

import (
	"context"
	"fmt"
	"strings"

	"Itemizer/internal/model"
	"Itemizer/internal/pkg"
	"Itemizer/internal/repository/rdb"
	"Itemizer/internal/repository/redis"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type SignupInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

type UserService struct {
	db       *gorm.DB
	repo     *rdb.UserRepository
	sessions *redis.SessionRepository
	signer   *pkg.Signer
	email    *EmailService
	items    *ItemService
	logs     *LogService
	Crud     *CrudService[model.User, *model.User]
}

func NewUserService(db *gorm.DB, sessions *redis.SessionRepository, signer *pkg.Signer, email *EmailService, items *ItemService, logs *LogService) *UserService {
	s := &UserService{
		db:       db,
		repo:     &rdb.UserRepository{DB: db},
		sessions: sessions,
		signer:   signer,
		email:    email,
		items:    items,
		logs:     logs,
	}
	s.Crud = NewCrudService[model.User](db, logs).OnPatch(s.checkTaken)
	return s
}

func unauthorized(msg string) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
}

func (s *UserService) taken(ctx context.Context, repo *rdb.UserRepository, u *model.User, columns ...string) error {
	for _, col := range columns {
		value := u.Username
		if col == "email" {
			value = u.Email
		}
		ok, err := repo.Taken(ctx, col, value, u.ID)
		if err != nil {
			return err
		}
		if ok {
			return conflict("%s %q is already taken", col, value)
		}
	}
	return nil
}

func (s *UserService) checkTaken(ctx context.Context, tx *gorm.DB, u *model.User, changed []string) error {
	var cols []string
	for _, c := range changed {
		if c == "username" || c == "email" {
			cols = append(cols, c)
		}
	}
	return s.taken(ctx, &rdb.UserRepository{DB: tx}, u, cols...)
}

// Signup registers an unverified user and mails a confirmation link.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	user := &model.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Username:  strings.TrimSpace(in.Username),
		Email:     strings.TrimSpace(in.Email),
		Password:  in.Password,
	}
	if err := user.Validate(model.OpCreate); err != nil {
		return nil, err
	}
	if err := model.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := s.taken(ctx, s.repo, user, "username", "email"); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.Password = string(hash)
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, translate(err)
	}

	token, err := s.signer.Issue(pkg.PurposeConfirm, user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.email.SendConfirmation(user, token); err != nil {
		return nil, err
	}
	return user, nil
}

// Confirm marks the user named by a confirmation token as verified.
func (s *UserService) Confirm(ctx context.Context, token string) (*model.User, error) {
	email, err := s.signer.Redeem(token, pkg.PurposeConfirm, pkg.ConfirmTTL)
	if err != nil {
		return nil, forbidden("the confirmation link is invalid or has expired")
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, translate(err)
	}
	if !user.IsVerified {
		if err := s.repo.SetVerified(ctx, user); err != nil {
			return nil, err
		}
		user.IsVerified = true
	}
	return user, nil
}

// Login checks the credentials and opens a session, replacing any session
// the user had elsewhere.
func (s *UserService) Login(ctx context.Context, login, password string) (*model.User, string, error) {
	user, err := s.Authenticate(ctx, login, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.signer.IssueSession(user.ID)
	if err != nil {
		return nil, "", err
	}
	if err := s.sessions.AddUserToken(ctx, user.ID, token); err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate resolves a verified, unbanned user from its credentials.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*model.User, error) {
	user, err := s.repo.FindByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if rdb.IsNotFound(err) {
			return nil, unauthorized("Invalid username/email or password.")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, unauthorized("Invalid username/email or password.")
	}
	if !user.IsVerified {
		return nil, unauthorized("Please confirm your email before logging in.")
	}
	if user.IsBanned {
		return nil, unauthorized("This account has been suspended.")
	}
	return user, nil
}

func (s *UserService) Logout(ctx context.Context, userID uint64) error {
	return s.sessions.DeleteUserToken(ctx, userID)
}

// Profile loads a user with its memberships.
func (s *UserService) Profile(ctx context.Context, id uint64) (*model.User, error) {
	user, err := s.repo.FindProfile(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

// ForgotPassword mails a reset link to the owner of email.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return translate(err)
	}
	nonce, err := pkg.RandSequence(16)
	if err != nil {
		return err
	}
	token, err := s.signer.Issue(pkg.PurposeReset, user.Email+"|"+nonce)
	if err != nil {
		return err
	}
	return s.email.SendResetLink(user, token)
}

// CheckResetToken returns the email a reset token was issued for.
func (s *UserService) CheckResetToken(token string) (string, error) {
	payload, err := s.signer.Redeem(token, pkg.PurposeReset, pkg.ResetTTL)
	if err != nil {
		return "", forbidden("the reset link is invalid or has expired")
	}
	email, _, ok := strings.Cut(payload, "|")
	if !ok || email == "" {
		return "", forbidden("the reset link is invalid or has expired")
	}
	return email, nil
}

// ResetPassword sets a new password for email and ends its session.
func (s *UserService) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	owner, err := s.CheckResetToken(token)
	if err != nil {
		return err
	}
	if owner != email {
		return forbidden("the reset link was issued for another account")
	}
	if err := model.ValidatePassword(newPassword); err != nil {
		return err
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return translate(err)
	}
	if err := s.setPassword(ctx, s.repo, user, newPassword); err != nil {
		return err
	}
	return s.Logout(ctx, user.ID)
}

func (s *UserService) setPassword(ctx context.Context, repo *rdb.UserRepository, user *model.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := repo.UpdatePassword(ctx, user, string(hash)); err != nil {
		return err
	}
	user.Password = string(hash)
	return nil
}

func (s *UserService) checkPassword(user *model.User, password string) error {
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return forbidden("Incorrect password.")
	}
	return nil
}

// UpdateCurrent patches the profile of user after re-checking its password.
// A non-empty newPassword replaces the password as well.
func (s *UserService) UpdateCurrent(ctx context.Context, user *model.User, password, newPassword string, body map[string]any) (*model.User, error) {
	if err := s.checkPassword(user, password); err != nil {
		return nil, err
	}
	if newPassword != "" {
		if err := model.ValidatePassword(newPassword); err != nil {
			return nil, err
		}
	}
	if newPassword == "" {
		return s.Crud.Patch(ctx, user, body)
	}
	return s.Crud.PatchThen(ctx, user, body, func(ctx context.Context, tx *gorm.DB) error {
		return s.setPassword(ctx, &rdb.UserRepository{DB: tx}, user, newPassword)
	})
}

// DeleteCurrent removes the account of user together with its items,
// memberships and requests. Owners of an organization must transfer it first.
func (s *UserService) DeleteCurrent(ctx context.Context, user *model.User, password string) error {
	if err := s.checkPassword(user, password); err != nil {
		return err
	}
	owned, err := (&rdb.OrganizationRepository{DB: s.db}).OwnedBy(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(owned) > 0 {
		return forbidden(fmt.Sprintf("transfer ownership of %q before deleting your account", owned[0].Name))
	}

	var written []*model.OrganizationLog
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, err := (&rdb.ItemRepository{DB: tx}).ListByUser(ctx, user.ID)
		if err != nil {
			return err
		}
		for i := range items {
			logs, err := s.items.removeTx(ctx, tx, &items[i])
			if err != nil {
				return err
			}
			written = append(written, logs...)
		}
		if err := (&rdb.MembershipRepository{DB: tx}).DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		if err := (&rdb.RequestRepository{DB: tx}).DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		return (&rdb.UserRepository{DB: tx}).Delete(ctx, user)
	})
	if err != nil {
		return err
	}
	s.logs.Publish(ctx, written...)
	return s.Logout(ctx, user.ID)
}

// SetBanned suspends or reinstates the user identified by login and mails a
// notice. A suspended user loses its session.
func (s *UserService) SetBanned(ctx context.Context, login string, banned bool, reason string) (*model.User, error) {
	user, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		return nil, translate(err)
	}
	if err := s.repo.SetBanned(ctx, user, banned); err != nil {
		return nil, err
	}
	user.IsBanned = banned
	if banned {
		if err := s.Logout(ctx, user.ID); err != nil {
			return nil, err
		}
	}
	if err := s.email.SendAccountNotice(user, banned, reason); err != nil {
		return nil, err
	}
	return user, nil
}
