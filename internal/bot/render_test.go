package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/carhaus/autoservice-bot/internal/dialog"
	"github.com/carhaus/autoservice-bot/internal/models"
)

func TestAvailableDates(t *testing.T) {
	// 2026-09-02 is a Wednesday; the window starts the following Monday.
	now := time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)

	dates := availableDates(now)
	if len(dates) != 18 {
		t.Fatalf("got %d dates, want 18", len(dates))
	}

	want := []string{"08.09.2026", "09.09.2026", "10.09.2026"}
	for i, w := range want {
		if got := dates[i].Format("02.01.2006"); got != w {
			t.Errorf("dates[%d] = %s, want %s", i, got, w)
		}
	}
	if got := dates[17].Format("02.01.2006"); got != "15.10.2026" {
		t.Errorf("last date = %s, want 15.10.2026", got)
	}

	for _, d := range dates {
		switch d.Weekday() {
		case time.Tuesday, time.Wednesday, time.Thursday:
		default:
			t.Errorf("offered %s which is a %s", d.Format("02.01.2006"), d.Weekday())
		}
	}
}

func TestAvailableDatesFromMonday(t *testing.T) {
	// When today already is Monday, the window still starts next week.
	monday := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)

	dates := availableDates(monday)
	if len(dates) == 0 {
		t.Fatal("no dates offered")
	}
	if got := dates[0].Format("02.01.2006"); got != "15.09.2026" {
		t.Fatalf("first date = %s, want 15.09.2026", got)
	}
}

func TestDateButtons(t *testing.T) {
	now := time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)

	rows := dateButtons(now)
	// 18 dates in rows of 3, plus the back row.
	if len(rows) != 7 {
		t.Fatalf("got %d rows, want 7", len(rows))
	}

	first := rows[0][0]
	if first.Label != "08.09 (Вт)" {
		t.Errorf("first label = %q, want %q", first.Label, "08.09 (Вт)")
	}
	if first.Data != "date_08.09.2026" {
		t.Errorf("first payload = %q, want %q", first.Data, "date_08.09.2026")
	}

	back := rows[len(rows)-1][0]
	if back.Data != "main_menu" {
		t.Errorf("last row payload = %q, want back navigation", back.Data)
	}
}

func TestYearButtons(t *testing.T) {
	rows := yearButtons()
	// 20 years in rows of 4, plus the back row.
	if len(rows) != 6 {
		t.Fatalf("got %d rows, want 6", len(rows))
	}
	if rows[0][0].Data != "year_2006" {
		t.Errorf("first payload = %q, want year_2006", rows[0][0].Data)
	}
	if rows[4][3].Data != "year_2025" {
		t.Errorf("last year payload = %q, want year_2025", rows[4][3].Data)
	}
}

func TestModelPayloadRoundTrip(t *testing.T) {
	rows := modelButtons("Toyota")

	var payload string
	for _, row := range rows {
		for _, btn := range row {
			if btn.Label == "Land Cruiser 200" {
				payload = btn.Data
			}
		}
	}
	if payload != "model_Land_Cruiser_200" {
		t.Fatalf("payload for multi-word model = %q", payload)
	}

	if got := canonicalModel("Toyota", strings.TrimPrefix(payload, "model_")); got != "Land Cruiser 200" {
		t.Fatalf("canonicalModel = %q, want catalog spelling", got)
	}
}

func TestConfirmationSummary(t *testing.T) {
	form := &dialog.Form{
		CarModel:      "Toyota Camry 2020 г.",
		LicensePlate:  "A123BC",
		Mileage:       50000,
		MileageSet:    true,
		RequestedWork: models.WorkMaintenance,
		PreferredDate: "15.09.2026",
		Phone:         "+79001234567",
	}

	text := confirmationSummary(form)
	for _, want := range []string{"Toyota Camry 2020 г.", "A123BC", "50000", "15.09.2026", "+79001234567"} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}

	form.RequestedWork = models.WorkMileageInfo
	inquiry := confirmationSummary(form)
	if strings.Contains(inquiry, "15.09.2026") {
		t.Error("mileage inquiry summary should not mention a visit date")
	}
	if !strings.Contains(inquiry, "специалисту") {
		t.Errorf("inquiry summary missing routing explanation:\n%s", inquiry)
	}
}

func collectPayloads(rows [][]dialog.Button) []string {
	var out []string
	for _, row := range rows {
		for _, btn := range row {
			out = append(out, btn.Data)
		}
	}
	return out
}

func hasPrefixIn(payloads []string, prefix string) bool {
	for _, p := range payloads {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func TestAdminRequestDetailButtons(t *testing.T) {
	req := models.NewServiceRequest(100, "Toyota Camry 2020 г.", "A123BC", 50000,
		models.WorkMaintenance, "15.09.2026", "+79001234567", "Иван", "Петров")

	t.Run("pending", func(t *testing.T) {
		_, rows := adminRequestDetail(req, "Иван Петров", true)
		payloads := collectPayloads(rows)
		for _, prefix := range []string{"approve_", "reject_", "comment_"} {
			if !hasPrefixIn(payloads, prefix) {
				t.Errorf("pending detail missing %s button: %v", prefix, payloads)
			}
		}
		if hasPrefixIn(payloads, "delete_") {
			t.Error("pending detail offers deletion")
		}
	})

	t.Run("approved", func(t *testing.T) {
		req.Status = models.StatusApproved
		_, rows := adminRequestDetail(req, "Иван Петров", true)
		payloads := collectPayloads(rows)
		if !hasPrefixIn(payloads, "complete_") || !hasPrefixIn(payloads, "reject_") {
			t.Errorf("approved detail buttons: %v", payloads)
		}
		if hasPrefixIn(payloads, "approve_") {
			t.Error("approved detail offers approval again")
		}
	})

	t.Run("completed", func(t *testing.T) {
		req.Status = models.StatusCompleted
		_, rows := adminRequestDetail(req, "Иван Петров", true)
		payloads := collectPayloads(rows)
		if !hasPrefixIn(payloads, "delete_") {
			t.Errorf("completed detail missing delete: %v", payloads)
		}
		if hasPrefixIn(payloads, "approve_") || hasPrefixIn(payloads, "complete_") {
			t.Errorf("completed detail offers lifecycle actions: %v", payloads)
		}
	})

	t.Run("pending mileage inquiry", func(t *testing.T) {
		inquiry := models.NewServiceRequest(100, "Toyota Camry 2020 г.", "A123BC", 50000,
			models.WorkMileageInfo, asapDate, "+79001234567", "Иван", "Петров")
		_, rows := adminRequestDetail(inquiry, "Иван Петров", true)
		payloads := collectPayloads(rows)
		if !hasPrefixIn(payloads, "mileage_response_") || !hasPrefixIn(payloads, "reject_mileage_") {
			t.Errorf("inquiry detail buttons: %v", payloads)
		}
		if hasPrefixIn(payloads, "approve_") {
			t.Errorf("inquiry detail offers the regular lifecycle: %v", payloads)
		}
	})

	t.Run("without actions", func(t *testing.T) {
		_, rows := adminRequestDetail(req, "Иван Петров", false)
		payloads := collectPayloads(rows)
		if len(payloads) != 1 || payloads[0] != "admin_menu" {
			t.Errorf("action-free detail should carry only navigation: %v", payloads)
		}
	})
}

func TestClientRequestDetailShowsNotes(t *testing.T) {
	req := models.NewServiceRequest(100, "Toyota Camry 2020 г.", "A123BC", 50000,
		models.WorkMaintenance, "15.09.2026", "+79001234567", "Иван", "Петров")
	req.AdminNotes = "ждём запчасти"

	text, rows := clientRequestDetail(req)
	if !strings.Contains(text, "ждём запчасти") {
		t.Errorf("client detail missing admin note:\n%s", text)
	}
	if payloads := collectPayloads(rows); len(payloads) != 1 || payloads[0] != "my_requests" {
		t.Errorf("client detail navigation: %v", payloads)
	}
}
