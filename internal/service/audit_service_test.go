package service

import (
	"context"
	"testing"
	"time"

	"bank-card-service/internal/core/domain"
	"bank-card-service/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

func TestAuditService_Log_PersistsToRepo(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockAuditRepository(ctrl)
	svc := NewAuditService(mockRepo, zerolog.Nop())

	done := make(chan struct{})
	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, entry *domain.AuditLog) error {
			if entry.Action != domain.AuditActionTransfer {
				t.Errorf("expected TRANSFER, got %s", entry.Action)
			}
			close(done)
			return nil
		},
	)

	email := "alice@example.com"
	svc.Log(context.Background(), &domain.AuditLog{
		ID:           uuid.New(),
		UserEmail:    &email,
		Action:       domain.AuditActionTransfer,
		ResourceType: "card",
		ResourceID:   uuid.New().String(),
		IPAddress:    "127.0.0.1",
		CreatedAt:    time.Now(),
	})

	select {
	case <-done:
		// OK
	case <-time.After(2 * time.Second):
		t.Fatal("audit log not persisted in time")
	}
}

func TestAuditService_Log_NilRepo(t *testing.T) {
	svc := NewAuditService(nil, zerolog.Nop())

	// Should not panic
	svc.Log(context.Background(), &domain.AuditLog{
		ID:           uuid.New(),
		Action:       domain.AuditActionSignin,
		ResourceType: "session",
		IPAddress:    "127.0.0.1",
		CreatedAt:    time.Now(),
	})

	time.Sleep(50 * time.Millisecond) // let goroutine run
}
