package services

import (
	"context"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"propertystore/internal/models"
)

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier шлёт письмо риелтору о новой заявке и клиенту о доступе в ЛК.
type EmailNotifier struct {
	sender    mailSender
	from      string
	notifyTo  string
	portalURL string
}

func NewEmailNotifier(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail, notifyTo, portalURL string) *EmailNotifier {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &EmailNotifier{
		sender:    dialer,
		from:      fromEmail,
		notifyTo:  notifyTo,
		portalURL: portalURL,
	}
}

func (s *EmailNotifier) newRequestMessage(req *models.Request) *gomail.Message {
	msg := ParseMessage(req.Message)
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.notifyTo)
	m.SetHeader("Subject", fmt.Sprintf("Новая заявка: %s", requestTypeTitles[req.Type]))

	body := fmt.Sprintf(`
		<h3>Новая заявка с сайта</h3>
		<p><b>Клиент:</b> %s</p>
		<p><b>Телефон:</b> %s</p>
		<p><b>Email:</b> %s</p>
		<p><b>Сообщение:</b> %s</p>
		<p><b>Желаемая дата:</b> %s</p>
	`, html.EscapeString(msg.Name), html.EscapeString(msg.Phone), html.EscapeString(msg.Email),
		html.EscapeString(msg.Message), html.EscapeString(msg.PreferredDate))
	m.SetBody("text/html", body)
	return m
}

func (s *EmailNotifier) NewRequest(_ context.Context, req *models.Request) error {
	if s.notifyTo == "" {
		return nil
	}
	if err := s.sender.DialAndSend(s.newRequestMessage(req)); err != nil {
		return fmt.Errorf("failed to send request email: %w", err)
	}
	return nil
}

func (s *EmailNotifier) AccountActivated(_ context.Context, client *models.Client, login, tempPassword string) error {
	if client.Email == nil || *client.Email == "" {
		return nil
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", *client.Email)
	m.SetHeader("Subject", "Доступ в личный кабинет")

	body := fmt.Sprintf(`
		<h3>Здравствуйте, %s!</h3>
		<p>Для вас открыт личный кабинет: <a href="%s">%s</a></p>
		<p>Логин: <strong>%s</strong></p>
		<p>Временный пароль: <strong>%s</strong></p>
		<p>При первом входе пароль нужно будет сменить.</p>
	`, html.EscapeString(client.Name), s.portalURL, s.portalURL, html.EscapeString(login), html.EscapeString(tempPassword))
	m.SetBody("text/html", body)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send activation email: %w", err)
	}
	return nil
}
