package services

import (
	"context"
	"errors"

	"propertystore/internal/models"
)

// Notifier сообщает риелтору и клиентам о событиях CRM.
type Notifier interface {
	NewRequest(ctx context.Context, req *models.Request) error
	AccountActivated(ctx context.Context, client *models.Client, login, tempPassword string) error
}

type NopNotifier struct{}

func (NopNotifier) NewRequest(context.Context, *models.Request) error { return nil }
func (NopNotifier) AccountActivated(context.Context, *models.Client, string, string) error {
	return nil
}

// MultiNotifier рассылает по всем каналам и собирает ошибки.
type MultiNotifier []Notifier

func (m MultiNotifier) NewRequest(ctx context.Context, req *models.Request) error {
	var errs []error
	for _, n := range m {
		if err := n.NewRequest(ctx, req); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiNotifier) AccountActivated(ctx context.Context, client *models.Client, login, tempPassword string) error {
	var errs []error
	for _, n := range m {
		if err := n.AccountActivated(ctx, client, login, tempPassword); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var requestTypeTitles = map[models.RequestType]string{
	models.RequestConsultation: "Консультация",
	models.RequestViewing:      "Просмотр объекта",
	models.RequestCallback:     "Обратный звонок",
}
