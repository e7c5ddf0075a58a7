package services

import (
	"net/http"
	"testing"
	"time"

	"bizdir_backend/internal/models"
	"bizdir_backend/internal/repositories"
	"bizdir_backend/internal/services/dto"
	"bizdir_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedDelivery persists a notification and one delivery for it,
// returning the delivery id.
func seedDelivery(t *testing.T, repo *fakeNotificationRepo, message string, ref dto.RecipientRef, createdAt time.Time) string {
	t.Helper()

	notification := &models.Notification{
		Message: message,
		Target:  models.TargetUsers,
	}
	require.NoError(t, repo.CreateNotification(notification))
	notification.CreatedAt = createdAt

	delivery := &models.Delivery{
		NotificationID: notification.ID,
		RecipientID:    ref.ID,
		RecipientKind:  models.RecipientKind(ref.Kind),
		RecipientEmail: ref.Email,
	}
	created, err := repo.CreateDelivery(delivery)
	require.NoError(t, err)
	require.True(t, created)
	return delivery.ID
}

func TestListDeliveries_NewestFirstWithUnreadCount(t *testing.T) {
	repo := newFakeNotificationRepo()
	service := NewNotificationService(repo)
	ref := dto.RecipientRef{ID: "user-1", Kind: "individual", Email: "alice@example.com"}

	base := time.Now()
	oldest := seedDelivery(t, repo, "first", ref, base.Add(-2*time.Hour))
	seedDelivery(t, repo, "second", ref, base.Add(-1*time.Hour))
	newest := seedDelivery(t, repo, "third", ref, base)

	require.NoError(t, repo.MarkDeliveryRead(oldest))

	response, err := service.ListDeliveries(ref)
	require.NoError(t, err)

	require.Len(t, response.Deliveries, 3)
	assert.Equal(t, 3, response.Total)
	assert.Equal(t, int64(2), response.UnreadCount)
	assert.Equal(t, newest, response.Deliveries[0].ID)
	assert.Equal(t, "third", response.Deliveries[0].Message)
	assert.Equal(t, oldest, response.Deliveries[2].ID)
	assert.True(t, response.Deliveries[2].IsRead)
	assert.NotNil(t, response.Deliveries[2].ReadAt)
}

func TestListDeliveries_EmailMatchWithoutDuplicates(t *testing.T) {
	repo := newFakeNotificationRepo()
	service := NewNotificationService(repo)
	ref := dto.RecipientRef{ID: "user-1", Kind: "individual", Email: "alice@example.com"}

	// Matched by both the id pair and the email: must appear once.
	seedDelivery(t, repo, "direct", ref, time.Now())
	// Matched only by email, as left by a custom dispatch that ran
	// before this recipient id was known to the caller.
	emailOnly := dto.RecipientRef{ID: "other-id", Kind: "company", Email: "alice@example.com"}
	seedDelivery(t, repo, "by-email", emailOnly, time.Now())
	// Unrelated recipient: must not appear.
	seedDelivery(t, repo, "noise", dto.RecipientRef{ID: "user-2", Kind: "individual", Email: "bob@example.com"}, time.Now())

	response, err := service.ListDeliveries(ref)
	require.NoError(t, err)
	require.Len(t, response.Deliveries, 2)

	messages := []string{response.Deliveries[0].Message, response.Deliveries[1].Message}
	assert.ElementsMatch(t, []string{"direct", "by-email"}, messages)

	count, err := service.UnreadCount(ref)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestUnreadCount_ConsistentWithList(t *testing.T) {
	repo := newFakeNotificationRepo()
	service := NewNotificationService(repo)
	ref := dto.RecipientRef{ID: "user-1", Kind: "individual"}

	first := seedDelivery(t, repo, "a", ref, time.Now())
	seedDelivery(t, repo, "b", ref, time.Now())

	count, err := service.UnreadCount(ref)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, service.MarkRead(first))

	count, err = service.UnreadCount(ref)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	response, err := service.ListDeliveries(ref)
	require.NoError(t, err)
	assert.Equal(t, count, response.UnreadCount)
}

func TestMarkRead_IdempotentAndMonotonic(t *testing.T) {
	repo := newFakeNotificationRepo()
	service := NewNotificationService(repo)
	ref := dto.RecipientRef{ID: "user-1", Kind: "individual"}

	id := seedDelivery(t, repo, "a", ref, time.Now())

	require.NoError(t, service.MarkRead(id))
	first, err := repo.FindDeliveryByID(id)
	require.NoError(t, err)
	require.True(t, first.IsRead)
	require.NotNil(t, first.ReadAt)
	firstReadAt := *first.ReadAt

	// Second call is a no-op: read_at keeps its original value.
	require.NoError(t, service.MarkRead(id))
	second, err := repo.FindDeliveryByID(id)
	require.NoError(t, err)
	assert.True(t, second.IsRead)
	assert.Equal(t, firstReadAt, *second.ReadAt)
}

func TestMarkRead_UnknownDeliveryIsNoop(t *testing.T) {
	service := NewNotificationService(newFakeNotificationRepo())

	// Races between tabs may mark a delivery the server never handed
	// out to this session; the caller must not see an error.
	assert.NoError(t, service.MarkRead("no-such-delivery"))
}

func TestMarkAllRead(t *testing.T) {
	repo := newFakeNotificationRepo()
	service := NewNotificationService(repo)
	ref := dto.RecipientRef{ID: "user-1", Kind: "individual"}

	already := seedDelivery(t, repo, "a", ref, time.Now())
	seedDelivery(t, repo, "b", ref, time.Now())
	seedDelivery(t, repo, "c", ref, time.Now())
	require.NoError(t, service.MarkRead(already))
	before, err := repo.FindDeliveryByID(already)
	require.NoError(t, err)
	beforeReadAt := *before.ReadAt

	marked, err := service.MarkAllRead(ref)
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)

	count, err := service.UnreadCount(ref)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// Already-read rows keep their original read_at.
	after, err := repo.FindDeliveryByID(already)
	require.NoError(t, err)
	assert.Equal(t, beforeReadAt, *after.ReadAt)

	marked, err = service.MarkAllRead(ref)
	require.NoError(t, err)
	assert.Equal(t, int64(0), marked)
}

func TestReadStateAPI_RejectsUnknownRecipientKind(t *testing.T) {
	service := NewNotificationService(newFakeNotificationRepo())
	ref := dto.RecipientRef{ID: "user-1", Kind: "robot"}

	_, err := service.ListDeliveries(ref)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRecipientKind)

	_, err = service.UnreadCount(ref)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRecipientKind)

	_, err = service.MarkAllRead(ref)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRecipientKind)
}

func TestListNotifications_StatsAndPagination(t *testing.T) {
	repo := newFakeNotificationRepo()
	service := NewNotificationService(repo)

	base := time.Now()
	for i := 0; i < 3; i++ {
		n := &models.Notification{Message: "broadcast", Target: models.TargetUsers, CreatedBy: "admin-1"}
		require.NoError(t, repo.CreateNotification(n))
		n.CreatedAt = base.Add(time.Duration(i) * time.Minute)
	}
	newest := repo.notifications[2]

	for i, recipient := range []string{"user-1", "user-2"} {
		d := &models.Delivery{
			NotificationID: newest.ID,
			RecipientID:    recipient,
			RecipientKind:  models.RecipientKindIndividual,
			RecipientEmail: recipient + "@example.com",
		}
		created, err := repo.CreateDelivery(d)
		require.NoError(t, err)
		require.True(t, created)
		if i == 0 {
			require.NoError(t, repo.MarkDeliveryRead(d.ID))
		}
	}

	response, err := service.ListNotifications(dto.NotificationCriteria{Page: 1, PageSize: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(3), response.Total)
	assert.Equal(t, 2, response.TotalPages)
	require.Len(t, response.Notifications, 2)

	// Newest first, with its delivery counters aggregated.
	top := response.Notifications[0]
	assert.Equal(t, newest.ID, top.ID)
	assert.Equal(t, int64(2), top.DeliveredCount)
	assert.Equal(t, int64(1), top.ReadCount)
	assert.Equal(t, int64(0), response.Notifications[1].DeliveredCount)
}

func TestGetNotification(t *testing.T) {
	repo := newFakeNotificationRepo()
	service := NewNotificationService(repo)

	notification := &models.Notification{Message: "broadcast", Target: models.TargetUsers, CreatedBy: "admin-1"}
	require.NoError(t, repo.CreateNotification(notification))
	for _, recipient := range []string{"user-1", "user-2"} {
		created, err := repo.CreateDelivery(&models.Delivery{
			NotificationID: notification.ID,
			RecipientID:    recipient,
			RecipientKind:  models.RecipientKindIndividual,
		})
		require.NoError(t, err)
		require.True(t, created)
	}
	require.NoError(t, service.MarkRead(repo.deliveries[0].ID))

	summary, err := service.GetNotification(notification.ID)
	require.NoError(t, err)
	assert.Equal(t, notification.ID, summary.ID)
	assert.Equal(t, "broadcast", summary.Message)
	assert.Equal(t, int64(2), summary.DeliveredCount)
	assert.Equal(t, int64(1), summary.ReadCount)
}

func TestGetNotification_UnknownID(t *testing.T) {
	service := NewNotificationService(newFakeNotificationRepo())

	_, err := service.GetNotification(uuid.NewString())
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.HTTPCode)
}

func TestListNotifications_TargetFilter(t *testing.T) {
	repo := newFakeNotificationRepo()
	service := NewNotificationService(repo)

	for _, target := range []models.NotificationTarget{models.TargetUsers, models.TargetCompanies, models.TargetUsers} {
		require.NoError(t, repo.CreateNotification(&models.Notification{Message: "m", Target: target}))
	}

	response, err := service.ListNotifications(dto.NotificationCriteria{Target: "users", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), response.Total)
	for _, n := range response.Notifications {
		assert.Equal(t, "users", n.Target)
	}
}

var _ repositories.NotificationRepository = (*fakeNotificationRepo)(nil)
