package models

import "testing"

func TestNewWebhookHeader_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		h := NewWebhookHeader("X-Key", "v")
		if h.ID == "" {
			t.Fatal("empty header ID")
		}
		if seen[h.ID] {
			t.Fatalf("duplicate header ID %s", h.ID)
		}
		seen[h.ID] = true
		if h.Key != "X-Key" || h.Value != "v" {
			t.Errorf("unexpected header %+v", h)
		}
	}
}

func TestWebhookDelivery_Succeeded(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{200, true},
		{204, true},
		{301, false},
		{500, false},
		{0, false},
	}
	for _, tt := range tests {
		d := WebhookDelivery{ResponseCode: tt.code}
		if got := d.Succeeded(); got != tt.want {
			t.Errorf("Succeeded() with %d = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestChatIntegration_Configured(t *testing.T) {
	var nilChat *ChatIntegration
	if nilChat.Configured() {
		t.Error("nil integration reported configured")
	}
	c := &ChatIntegration{Kind: ChatSlack}
	if c.Configured() {
		t.Error("integration without URL reported configured")
	}
	c.WebhookURL = "https://hooks.slack.com/x"
	if !c.Configured() {
		t.Error("integration with URL reported unconfigured")
	}
}
