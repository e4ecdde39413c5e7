package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/utils"
)

type fakeRenderer struct{ html string }

func (f *fakeRenderer) RenderPDF(_ context.Context, html string) ([]byte, error) {
	f.html = html
	return []byte("%PDF-1.4 fake"), nil
}

func TestEarnings_ListAndStatement(t *testing.T) {
	db := newTestDB(t)
	bookings := NewBookingService(db, nil)
	renderer := &fakeRenderer{}
	svc := &EarningsService{DB: db, Renderer: renderer}
	tutor := createTutor(t, db, "Tina Tutor", 40)
	alice := createUser(t, db, models.RoleStudent, "Alice <b>Smith</b>")

	completedBooking(t, bookings, alice, tutor, 0)
	b := bookAt(t, bookings, alice, tutor, 3*time.Hour, 30*time.Minute)
	for _, st := range []models.BookingStatus{models.BookingConfirmed, models.BookingCompleted} {
		if _, err := bookings.Update(t.Context(), asUser(tutor), b.ID, UpdateBookingInput{Status: statusPtr(st)}); err != nil {
			t.Fatalf("move to %s: %v", st, err)
		}
	}

	summary, err := svc.List(t.Context(), asUser(tutor), utils.Page{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if summary.Count != 2 || summary.Total != 60.00 || len(summary.Earnings) != 2 {
		t.Fatalf("summary = %+v", summary)
	}

	if _, err := svc.List(t.Context(), asUser(alice), utils.Page{}); KindOf(err) != KindForbidden {
		t.Fatalf("student earnings err = %v, want forbidden", err)
	}

	pdf, err := svc.StatementPDF(t.Context(), asUser(tutor), time.Now().UTC())
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if !strings.HasPrefix(string(pdf), "%PDF") {
		t.Fatalf("renderer output not returned")
	}
	if !strings.Contains(renderer.html, "Tina Tutor") || !strings.Contains(renderer.html, "60.00") {
		t.Fatalf("statement html missing totals:\n%s", renderer.html)
	}
	if strings.Contains(renderer.html, "<b>Smith</b>") {
		t.Fatalf("statement html not escaped")
	}

	empty, err := svc.StatementHTML(t.Context(), asUser(tutor), time.Now().UTC().AddDate(-1, 0, 0))
	if err != nil || !strings.Contains(empty, "No earnings in this period.") {
		t.Fatalf("empty statement = %v", err)
	}
}
