package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"bizdir_backend/internal/directory"
	"bizdir_backend/internal/logger"
	"bizdir_backend/internal/models"
	"bizdir_backend/internal/repositories"
	"bizdir_backend/internal/services/dto"
	"bizdir_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

// FanoutService turns one administrative broadcast into per-recipient
// delivery rows across both recipient directories.
type FanoutService interface {
	Dispatch(createdBy string, req *dto.DispatchNotificationRequest) (*dto.DispatchResponse, error)
}

type fanoutService struct {
	notificationRepo repositories.NotificationRepository
	users            directory.Directory
	companies        directory.Directory
}

func NewFanoutService(
	notificationRepo repositories.NotificationRepository,
	users directory.Directory,
	companies directory.Directory,
) FanoutService {
	return &fanoutService{
		notificationRepo: notificationRepo,
		users:            users,
		companies:        companies,
	}
}

// Dispatch validates the request, persists the Notification, resolves
// the recipient set and inserts one delivery per recipient.
//
// Directory reads are best-effort per directory: one unreachable store
// never aborts fan-out to the other. Only when every directory the
// target needs has failed does the call error out. The returned count
// is the number of deliveries actually created, which on partial
// directory failure may be below the full target population.
func (s *fanoutService) Dispatch(createdBy string, req *dto.DispatchNotificationRequest) (*dto.DispatchResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, apperrors.ErrEmptyMessage
	}

	target := models.NotificationTarget(req.Target)
	if !target.Valid() {
		return nil, apperrors.ErrInvalidTarget
	}

	var recipients []directory.Recipient
	var dirErrs []error

	// A custom target must resolve before anything is persisted: a
	// ghost email fails validation with zero rows written.
	if target == models.TargetCustom {
		if req.TargetEmail == "" {
			return nil, apperrors.ErrTargetEmailRequired
		}
		recipients, dirErrs = s.resolveByEmail(req.TargetEmail)
		if len(recipients) == 0 {
			if len(dirErrs) == 2 {
				return nil, apperrors.ErrDirectoryUnavailable(joinErrs(dirErrs))
			}
			return nil, apperrors.ErrNoSuchRecipient
		}
	}

	var metadataJSON datatypes.JSON
	if req.Metadata != nil {
		jsonData, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, apperrors.InternalError(fmt.Errorf("marshal notification metadata: %w", err))
		}
		metadataJSON = datatypes.JSON(jsonData)
	}

	notification := &models.Notification{
		Message:     req.Message,
		Target:      target,
		TargetEmail: req.TargetEmail,
		CreatedBy:   createdBy,
		Metadata:    metadataJSON,
	}

	// Notification first, so it has a stable id even if fan-out
	// partially fails and gets retried.
	if err := s.notificationRepo.CreateNotification(notification); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if target != models.TargetCustom {
		recipients, dirErrs = s.resolveBroadcast(target)
		if len(recipients) == 0 && len(dirErrs) > 0 && len(dirErrs) == s.directoriesFor(target) {
			// Every directory the target needed was down.
			return nil, apperrors.ErrDirectoryUnavailable(joinErrs(dirErrs))
		}
	}

	for _, dirErr := range dirErrs {
		logger.Warn("fan-out proceeding with partial recipient set",
			"notification_id", notification.ID, "error", dirErr.Error())
	}

	delivered := 0
	for _, recipient := range recipients {
		created, err := s.notificationRepo.CreateDelivery(&models.Delivery{
			NotificationID: notification.ID,
			RecipientID:    recipient.ID,
			RecipientKind:  recipient.Kind,
			RecipientEmail: recipient.Email,
			IsRead:         false,
		})
		if err != nil {
			logger.Error("failed to create delivery",
				"notification_id", notification.ID,
				"recipient_id", recipient.ID,
				"recipient_kind", recipient.Kind,
				"error", err.Error())
			continue
		}
		if !created {
			// Re-dispatch hit an existing row; invariant held, move on.
			logger.Debug("duplicate delivery skipped",
				"notification_id", notification.ID,
				"recipient_id", recipient.ID,
				"recipient_kind", recipient.Kind)
			continue
		}
		delivered++
	}

	logger.Info("notification dispatched",
		"notification_id", notification.ID,
		"target", target,
		"delivered", delivered,
		"directory_failures", len(dirErrs))

	return &dto.DispatchResponse{
		NotificationID: notification.ID,
		DeliveredCount: delivered,
	}, nil
}

// resolveBroadcast collects recipients for all/users/companies targets,
// tolerating individual directory failures.
func (s *fanoutService) resolveBroadcast(target models.NotificationTarget) ([]directory.Recipient, []error) {
	var recipients []directory.Recipient
	var errs []error

	if target == models.TargetAll || target == models.TargetUsers {
		found, err := s.users.ListAll()
		if err != nil {
			errs = append(errs, err)
		} else {
			recipients = append(recipients, found...)
		}
	}

	if target == models.TargetAll || target == models.TargetCompanies {
		found, err := s.companies.ListAll()
		if err != nil {
			errs = append(errs, err)
		} else {
			recipients = append(recipients, found...)
		}
	}

	return recipients, errs
}

// resolveByEmail checks both directories: the same email may belong to
// an individual and a company principal, and then both get a delivery.
func (s *fanoutService) resolveByEmail(email string) ([]directory.Recipient, []error) {
	var recipients []directory.Recipient
	var errs []error

	for _, dir := range []directory.Directory{s.users, s.companies} {
		found, err := dir.FindByEmail(email)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		recipients = append(recipients, found...)
	}

	return recipients, errs
}

func (s *fanoutService) directoriesFor(target models.NotificationTarget) int {
	if target == models.TargetAll {
		return 2
	}
	return 1
}

func joinErrs(errs []error) error {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
