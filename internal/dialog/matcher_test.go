package dialog

import "testing"

func TestMatcherMatches(t *testing.T) {
	tests := []struct {
		name    string
		matcher Matcher
		event   Event
		want    bool
	}{
		{"command exact", Command("start"), Event{Kind: KindCommand, Command: "start"}, true},
		{"command other name", Command("start"), Event{Kind: KindCommand, Command: "cancel"}, false},
		{"command never matches text", Command("start"), Event{Kind: KindText, Text: "/start"}, false},
		{"callback exact", Callback("confirm"), Event{Kind: KindCallback, Payload: "confirm"}, true},
		{"callback exact rejects prefix", Callback("confirm"), Event{Kind: KindCallback, Payload: "confirm_x"}, false},
		{"callback prefix", CallbackPrefix("brand_"), Event{Kind: KindCallback, Payload: "brand_Toyota"}, true},
		{"callback prefix mismatch", CallbackPrefix("brand_"), Event{Kind: KindCallback, Payload: "year_2020"}, false},
		{"text matches any body", Text(), Event{Kind: KindText, Text: "hello"}, true},
		{"text never matches command", Text(), Event{Kind: KindCommand, Command: "start"}, false},
		{"text never matches contact", Text(), Event{Kind: KindContact, Phone: "+7900"}, false},
		{"text exact", TextExact("🏠 Главное меню"), Event{Kind: KindText, Text: "🏠 Главное меню"}, true},
		{"text exact other body", TextExact("🏠 Главное меню"), Event{Kind: KindText, Text: "меню"}, false},
		{"contact", Contact(), Event{Kind: KindContact, Phone: "+7900"}, true},
		{"contact rejects text", Contact(), Event{Kind: KindText, Text: "+7900"}, false},
		{"text or contact takes text", TextOrContact(), Event{Kind: KindText, Text: "+7900"}, true},
		{"text or contact takes contact", TextOrContact(), Event{Kind: KindContact, Phone: "+7900"}, true},
		{"text or contact rejects callback", TextOrContact(), Event{Kind: KindCallback, Payload: "x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.matcher.Matches(tt.event); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
