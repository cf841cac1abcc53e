package models

import "testing"

func TestValidSenderType(t *testing.T) {
	for _, valid := range []string{SenderTypeUser, SenderTypeCounselor, SenderTypeSystem} {
		if !ValidSenderType(valid) {
			t.Fatalf("expected %q to be valid", valid)
		}
	}
	for _, invalid := range []string{"", "bogus", "USER"} {
		if ValidSenderType(invalid) {
			t.Fatalf("expected %q to be invalid", invalid)
		}
	}
}

func TestParseInboundFrame(t *testing.T) {
	frame, err := ParseInboundFrame([]byte(`{"type":"chat_message","sessionId":"s1","senderId":"u1","senderType":"user","message":"hi"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame.Type != FrameTypeChatMessage || frame.SessionID != "s1" || frame.Message != "hi" {
		t.Fatalf("unexpected frame: %+v", frame)
	}

	if _, err := ParseInboundFrame([]byte("not json")); err == nil {
		t.Fatalf("expected parse error")
	}
}
