package webhook

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ArturTovmasyan/ministry-backend/internal/model"
	"github.com/ArturTovmasyan/ministry-backend/internal/repository"
	"github.com/ArturTovmasyan/ministry-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type nullNotifier struct{}

func (nullNotifier) Send(service.NotificationJob) error { return nil }

func newWebhookRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("getting sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&model.User{}, &model.Subscription{}, &model.EventLog{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	billing := service.NewBillingService(
		repository.NewSubscriptionRepository(db),
		service.NewEventProcessor(repository.NewEventLogRepository(db), service.NewSystemClock()),
		nullNotifier{},
	)

	router := gin.New()
	router.POST("/api/v1/webhook/billing", NewWebhookController(billing).HandleBillingEvent)
	return router, db
}

func postEvent(t *testing.T, router *gin.Engine, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/billing", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestHandleBillingEventMalformedBody(t *testing.T) {
	router, _ := newWebhookRouter(t)

	recorder := postEvent(t, router, []byte(`{"id":`))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}

	// Missing required fields is also a client error.
	recorder = postEvent(t, router, []byte(`{"type":"invoice.payment_succeeded"}`))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status without id = %d, want 400", recorder.Code)
	}
}

func TestHandleBillingEventAppliedOnce(t *testing.T) {
	router, db := newWebhookRouter(t)

	user := model.User{FirstName: "Ann", LastName: "Smith", Email: "ann@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	subscription := model.Subscription{
		UserID:                 user.ID,
		ProviderSubscriptionID: "sub_1",
		Status:                 model.SubscriptionActive,
	}
	if err := db.Create(&subscription).Error; err != nil {
		t.Fatalf("seeding subscription: %v", err)
	}

	body := []byte(`{"id":"evt_1","type":"customer.subscription.deleted","data":{"subscription_id":"sub_1"}}`)

	recorder := postEvent(t, router, body)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	var response map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if response["message"] != "Event handled." {
		t.Fatalf("message = %v", response["message"])
	}

	var reloaded model.Subscription
	db.Where("provider_subscription_id = ?", "sub_1").First(&reloaded)
	if reloaded.Status != model.SubscriptionCanceled {
		t.Fatalf("subscription status = %d, want canceled", reloaded.Status)
	}

	// Redelivery of the same event id is acknowledged without effect.
	recorder = postEvent(t, router, body)
	if recorder.Code != http.StatusOK {
		t.Fatalf("redelivery status = %d", recorder.Code)
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decoding redelivery response: %v", err)
	}
	if response["message"] != "Event previously handled." {
		t.Fatalf("redelivery message = %v", response["message"])
	}
}
