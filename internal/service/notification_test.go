package service

import (
	"context"
	"encoding/json"
	"testing"
)

func TestRedisNotifierQueuesJob(t *testing.T) {
	client := newRedisForTest(t)
	notifier := NewRedisNotifier(client)

	err := notifier.Send(NotificationJob{
		Template:  TemplateChallengeInvite,
		ToEmail:   "student@example.com",
		Subject:   "You have been challenged!",
		Variables: map[string]string{"sender": "Ann Low"},
	})
	if err != nil {
		t.Fatalf("sending notification: %v", err)
	}

	length, err := client.LLen(context.Background(), notificationQueueKey).Result()
	if err != nil {
		t.Fatalf("reading queue length: %v", err)
	}
	if length != 1 {
		t.Fatalf("queue length = %d, want 1", length)
	}

	payload, err := client.RPop(context.Background(), notificationQueueKey).Bytes()
	if err != nil {
		t.Fatalf("popping job: %v", err)
	}
	var job NotificationJob
	if err := json.Unmarshal(payload, &job); err != nil {
		t.Fatalf("decoding job: %v", err)
	}
	if job.ID == "" {
		t.Errorf("job id not assigned")
	}
	if job.Template != TemplateChallengeInvite || job.ToEmail != "student@example.com" {
		t.Errorf("job = %+v, want invite for student@example.com", job)
	}
	if job.Variables["sender"] != "Ann Low" {
		t.Errorf("variables = %v, want sender preserved", job.Variables)
	}
}

func TestLogNotifierNeverFails(t *testing.T) {
	if err := NewLogNotifier().Send(NotificationJob{Template: TemplateChallengeWon}); err != nil {
		t.Fatalf("log notifier returned %v", err)
	}
}
