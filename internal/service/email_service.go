package service

import (
	"time"

	"Itemizer/internal/model"
	"Itemizer/internal/pkg"

	"go.uber.org/zap"
)

type EmailConfig struct {
	// BaseURL is where this server is reachable; confirmation and reset
	// links point at it.
	BaseURL string
	// ClientURL is the web client; invitation links point at it.
	ClientURL string
	Support   string
}

// EmailService renders notifications and hands them to the mailer.
// Delivery failures are logged and never returned.
type EmailService struct {
	mailer pkg.Mailer
	cfg    EmailConfig
	log    *zap.Logger
}

func NewEmailService(mailer pkg.Mailer, cfg EmailConfig, log *zap.Logger) *EmailService {
	return &EmailService{mailer: mailer, cfg: cfg, log: log}
}

func (s *EmailService) deliver(subject string, to []string, tmpl string, data any) error {
	html, err := pkg.Render(tmpl, data)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(subject, to, html); err != nil {
		s.log.Warn("send email", zap.String("subject", subject), zap.Strings("to", to), zap.Error(err))
	}
	return nil
}

func (s *EmailService) ConfirmURL(token string) string {
	return s.cfg.BaseURL + "/confirm/" + token
}

func (s *EmailService) ResetURL(token string) string {
	return s.cfg.BaseURL + "/reset_password_form/" + token
}

func (s *EmailService) InvitationURL(token string) string {
	return s.cfg.ClientURL + "/invitation/" + token
}

func (s *EmailService) SendConfirmation(u *model.User, token string) error {
	return s.deliver("Please confirm your email", []string{u.Email}, "activate.html", pkg.ActivateData{
		Username:   u.Username,
		ConfirmURL: s.ConfirmURL(token),
		Minutes:    int(pkg.ConfirmTTL / time.Minute),
	})
}

func (s *EmailService) SendResetLink(u *model.User, token string) error {
	return s.deliver("Reset your password", []string{u.Email}, "reset_password_link.html", pkg.ResetLinkData{
		Username: u.Username,
		ResetURL: s.ResetURL(token),
		Minutes:  int(pkg.ResetTTL / time.Minute),
	})
}

func (s *EmailService) SendInvitation(to string, org *model.Organization, url string) error {
	return s.deliver("You're invited to join "+org.Name, []string{to}, "invitation.html", pkg.InvitationData{
		OrganizationName: org.Name,
		InvitationURL:    url,
		Minutes:          int(pkg.InviteTTL / time.Minute),
	})
}

func (s *EmailService) SendInquiry(in pkg.InquiryData) error {
	return s.deliver("Inquiry: "+in.Subject, []string{s.cfg.Support}, "inquiry.html", in)
}

func (s *EmailService) SendItemReport(in pkg.ItemReportData) error {
	return s.deliver("Item report: "+in.ItemName, []string{s.cfg.Support}, "item_report.html", in)
}

func (s *EmailService) SendInventoryReport(to *model.User, in pkg.InventoryReportData) error {
	return s.deliver("Inventory status for "+in.OrganizationName, []string{to.Email}, "inventory_report.html", in)
}

func (s *EmailService) SendAccountNotice(u *model.User, banned bool, reason string) error {
	data := pkg.AccountNoticeData{Username: u.Username, Reason: reason}
	if banned {
		data.Title = "Notice of Suspension"
		data.Body = "Your Itemizer account has been suspended. You will not be able to log in until it is reinstated."
	} else {
		data.Title = "Notice of Account Reinstatement"
		data.Body = "Your Itemizer account has been reinstated. You may log in again."
	}
	return s.deliver(data.Title, []string{u.Email}, "account_notice.html", data)
}
