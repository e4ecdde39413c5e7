package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/utils"
	"github.com/google/uuid"
)

func TestCreateBooking_PriceAndPayment(t *testing.T) {
	db := newTestDB(t)
	pub := &recordingPublisher{}
	svc := NewBookingService(db, pub)
	tutor := createTutor(t, db, "Tina Tutor", 40)
	student := createUser(t, db, models.RoleStudent, "Sam Student")

	b := bookAt(t, svc, student, tutor, 0, 90*time.Minute)

	if b.Price != 60.00 {
		t.Fatalf("price = %v, want 60.00", b.Price)
	}
	if b.Status != models.BookingPending {
		t.Fatalf("status = %s, want PENDING", b.Status)
	}
	if b.DurationMinutes() != 90 || !b.ScheduledFor().Equal(baseTime) {
		t.Fatalf("session shape = %v/%d", b.ScheduledFor(), b.DurationMinutes())
	}

	var payment models.Payment
	if err := db.First(&payment, "booking_id = ?", b.ID).Error; err != nil {
		t.Fatalf("payment not created: %v", err)
	}
	if payment.Amount != 60.00 || payment.Status != models.PaymentPending {
		t.Fatalf("payment = %+v", payment)
	}

	chans := pub.channelsFor(EventBookingCreated)
	if len(chans) != 2 {
		t.Fatalf("booking-created pushed to %v, want tutor and student", chans)
	}
	got := map[string]bool{chans[0]: true, chans[1]: true}
	if !got[tutor.ID.String()] || !got[student.ID.String()] {
		t.Fatalf("booking-created channels = %v", chans)
	}
}

func TestPriceFor_RoundsToCents(t *testing.T) {
	if p := PriceFor(33.33, baseTime, baseTime.Add(20*time.Minute)); p != 11.11 {
		t.Fatalf("price = %v, want 11.11", p)
	}
}

func TestCreateBooking_RejectsOverlap(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, nil)
	tutor := createTutor(t, db, "Tina Tutor", 30)
	alice := createUser(t, db, models.RoleStudent, "Alice")
	bob := createUser(t, db, models.RoleStudent, "Bob")

	first := bookAt(t, svc, alice, tutor, 0, time.Hour)

	_, err := svc.Create(t.Context(), asUser(bob), CreateBookingInput{
		TutorID:   tutor.ID,
		Subject:   "Physics",
		StartTime: baseTime.Add(30 * time.Minute),
		EndTime:   baseTime.Add(90 * time.Minute),
	})
	if !errors.Is(err, ErrSchedulingConflict) || KindOf(err) != KindConflict {
		t.Fatalf("overlap err = %v, want scheduling conflict", err)
	}

	// half-open windows: touching end to start is allowed
	bookAt(t, svc, bob, tutor, time.Hour, time.Hour)

	// cancelled bookings free the slot
	if _, err := svc.Update(t.Context(), asUser(alice), first.ID, UpdateBookingInput{Status: statusPtr(models.BookingCancelled)}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	bookAt(t, svc, bob, tutor, 0, time.Hour)
}

func TestCreateBooking_ConfirmedBlocksSlot(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, nil)
	tutor := createTutor(t, db, "Tina Tutor", 30)
	alice := createUser(t, db, models.RoleStudent, "Alice")

	b := bookAt(t, svc, alice, tutor, 0, time.Hour)
	if _, err := svc.Update(t.Context(), asUser(tutor), b.ID, UpdateBookingInput{Status: statusPtr(models.BookingConfirmed)}); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	// tutor-side session path hits the same conflict rule
	_, err := svc.Create(t.Context(), asUser(tutor), CreateBookingInput{
		StudentID: alice.ID,
		Subject:   "Math",
		StartTime: baseTime.Add(-30 * time.Minute),
		EndTime:   baseTime.Add(30 * time.Minute),
	})
	if !errors.Is(err, ErrSchedulingConflict) {
		t.Fatalf("err = %v, want scheduling conflict", err)
	}
}

func TestCreateBooking_ConcurrentRequestsYieldOneBooking(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, nil)
	tutor := createTutor(t, db, "Tina Tutor", 30)
	students := make([]models.User, 6)
	for i := range students {
		students[i] = createUser(t, db, models.RoleStudent, "Student "+string(rune('A'+i)))
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	created, conflicts := 0, 0
	for _, st := range students {
		wg.Add(1)
		go func(st models.User) {
			defer wg.Done()
			_, err := svc.Create(t.Context(), asUser(st), CreateBookingInput{
				TutorID:   tutor.ID,
				Subject:   "Math",
				StartTime: baseTime,
				EndTime:   baseTime.Add(time.Hour),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrSchedulingConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(st)
	}
	wg.Wait()

	if created != 1 || conflicts != len(students)-1 {
		t.Fatalf("created=%d conflicts=%d", created, conflicts)
	}
}

func TestCreateBooking_RoleAndInputRules(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, nil)
	tutor := createTutor(t, db, "Tina Tutor", 30)
	otherTutor := createTutor(t, db, "Otto Tutor", 30)
	bare := createUser(t, db, models.RoleTutor, "No Profile")
	alice := createUser(t, db, models.RoleStudent, "Alice")
	bob := createUser(t, db, models.RoleStudent, "Bob")
	admin := createUser(t, db, models.RoleAdmin, "Ada Admin")

	window := func(in CreateBookingInput) CreateBookingInput {
		if in.Subject == "" {
			in.Subject = "Math"
		}
		if in.StartTime.IsZero() {
			in.StartTime, in.EndTime = baseTime, baseTime.Add(time.Hour)
		}
		return in
	}

	cases := []struct {
		name string
		who  models.User
		in   CreateBookingInput
		kind Kind
	}{
		{"student books for another student", alice, window(CreateBookingInput{TutorID: tutor.ID, StudentID: bob.ID}), KindForbidden},
		{"tutor books for another tutor", tutor, window(CreateBookingInput{TutorID: otherTutor.ID, StudentID: alice.ID}), KindForbidden},
		{"tutor without student", tutor, window(CreateBookingInput{}), KindInvalidArgument},
		{"admin without student", admin, window(CreateBookingInput{TutorID: tutor.ID}), KindInvalidArgument},
		{"unknown tutor", alice, window(CreateBookingInput{TutorID: uuid.New()}), KindNotFound},
		{"student as tutor", alice, window(CreateBookingInput{TutorID: bob.ID}), KindNotFound},
		{"tutor without profile", alice, window(CreateBookingInput{TutorID: bare.ID}), KindNotFound},
		{"admin books non-student", admin, window(CreateBookingInput{TutorID: tutor.ID, StudentID: otherTutor.ID}), KindNotFound},
		{"end before start", alice, CreateBookingInput{TutorID: tutor.ID, Subject: "Math", StartTime: baseTime, EndTime: baseTime.Add(-time.Hour)}, KindInvalidArgument},
		{"zero length", alice, CreateBookingInput{TutorID: tutor.ID, Subject: "Math", StartTime: baseTime, EndTime: baseTime}, KindInvalidArgument},
		{"blank subject", alice, CreateBookingInput{TutorID: tutor.ID, Subject: "  ", StartTime: baseTime, EndTime: baseTime.Add(time.Hour)}, KindInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(t.Context(), asUser(tc.who), tc.in)
			if KindOf(err) != tc.kind || err == nil {
				t.Fatalf("err = %v (kind %s), want kind %s", err, KindOf(err), tc.kind)
			}
		})
	}

	var count int64
	db.Model(&models.Booking{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejected requests wrote %d bookings", count)
	}

	// admin may book on behalf of any student
	b, err := svc.Create(t.Context(), asUser(admin), window(CreateBookingInput{TutorID: tutor.ID, StudentID: bob.ID}))
	if err != nil {
		t.Fatalf("admin booking: %v", err)
	}
	if b.StudentID != bob.ID {
		t.Fatalf("student = %s, want bob", b.StudentID)
	}
}

func TestUpdateBooking_StudentCannotConfirm(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, nil)
	tutor := createTutor(t, db, "Tina Tutor", 30)
	alice := createUser(t, db, models.RoleStudent, "Alice")
	b := bookAt(t, svc, alice, tutor, 0, time.Hour)

	_, err := svc.Update(t.Context(), asUser(alice), b.ID, UpdateBookingInput{Status: statusPtr(models.BookingConfirmed)})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
	_, err = svc.Update(t.Context(), asUser(alice), b.ID, UpdateBookingInput{Status: statusPtr(models.BookingCompleted)})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("complete err = %v, want forbidden", err)
	}

	var stored models.Booking
	db.First(&stored, "id = ?", b.ID)
	if stored.Status != models.BookingPending {
		t.Fatalf("status = %s, want PENDING", stored.Status)
	}
}

func TestUpdateBooking_CompleteRecordsEarning(t *testing.T) {
	db := newTestDB(t)
	pub := &recordingPublisher{}
	svc := NewBookingService(db, pub)
	fixed := baseTime.Add(2 * time.Hour)
	svc.Now = func() time.Time { return fixed }
	tutor := createTutor(t, db, "Tina Tutor", 40)
	alice := createUser(t, db, models.RoleStudent, "Alice Smith")
	b := bookAt(t, svc, alice, tutor, 0, 90*time.Minute)

	// completing straight from PENDING is not a legal move
	_, err := svc.Update(t.Context(), asUser(tutor), b.ID, UpdateBookingInput{Status: statusPtr(models.BookingCompleted)})
	if KindOf(err) != KindInvalidTransition {
		t.Fatalf("err = %v, want invalid transition", err)
	}

	if _, err := svc.Update(t.Context(), asUser(tutor), b.ID, UpdateBookingInput{Status: statusPtr(models.BookingConfirmed)}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	done, err := svc.Update(t.Context(), asUser(tutor), b.ID, UpdateBookingInput{Status: statusPtr(models.BookingCompleted)})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != models.BookingCompleted || done.CompletedAt == nil || !done.CompletedAt.Equal(fixed) {
		t.Fatalf("completed booking = %+v", done)
	}

	var earnings []models.Earning
	db.Where("tutor_id = ?", tutor.ID).Find(&earnings)
	if len(earnings) != 1 {
		t.Fatalf("earnings = %d, want 1", len(earnings))
	}
	if earnings[0].Amount != 60.00 {
		t.Fatalf("earning amount = %v, want 60.00", earnings[0].Amount)
	}
	if want := "Earning from session with Alice Smith on Jan 7, 2030"; earnings[0].Description != want {
		t.Fatalf("description = %q, want %q", earnings[0].Description, want)
	}
	if earnings[0].BookingID == nil || *earnings[0].BookingID != b.ID {
		t.Fatalf("earning booking ref = %v", earnings[0].BookingID)
	}

	var payment models.Payment
	db.First(&payment, "booking_id = ?", b.ID)
	if payment.Status != models.PaymentCompleted {
		t.Fatalf("payment status = %s, want COMPLETED", payment.Status)
	}

	if n := len(pub.channelsFor(EventBookingUpdated)); n != 4 {
		t.Fatalf("booking-updated pushes = %d, want 4", n)
	}
}

func TestUpdateBooking_CancelRefundsThenRejectsRepeat(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, nil)
	tutor := createTutor(t, db, "Tina Tutor", 40)
	alice := createUser(t, db, models.RoleStudent, "Alice")
	b := bookAt(t, svc, alice, tutor, 0, time.Hour)

	cancelled, err := svc.Update(t.Context(), asUser(alice), b.ID, UpdateBookingInput{Status: statusPtr(models.BookingCancelled)})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.CancelledAt == nil {
		t.Fatalf("cancelled_at not set")
	}
	var payment models.Payment
	db.First(&payment, "booking_id = ?", b.ID)
	if payment.Status != models.PaymentRefunded {
		t.Fatalf("payment status = %s, want REFUNDED", payment.Status)
	}

	_, err = svc.Update(t.Context(), asUser(alice), b.ID, UpdateBookingInput{Status: statusPtr(models.BookingCancelled)})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second cancel err = %v, want invalid transition", err)
	}
}

func TestUpdateBooking_TerminalStatesAreFinal(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, nil)
	tutor := createTutor(t, db, "Tina Tutor", 40)
	admin := createUser(t, db, models.RoleAdmin, "Ada Admin")
	alice := createUser(t, db, models.RoleStudent, "Alice")

	completed := bookAt(t, svc, alice, tutor, 0, time.Hour)
	for _, st := range []models.BookingStatus{models.BookingConfirmed, models.BookingCompleted} {
		if _, err := svc.Update(t.Context(), asUser(tutor), completed.ID, UpdateBookingInput{Status: statusPtr(st)}); err != nil {
			t.Fatalf("move to %s: %v", st, err)
		}
	}
	cancelled := bookAt(t, svc, alice, tutor, 2*time.Hour, time.Hour)
	if _, err := svc.Update(t.Context(), asUser(tutor), cancelled.ID, UpdateBookingInput{Status: statusPtr(models.BookingCancelled)}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	all := []models.BookingStatus{models.BookingPending, models.BookingConfirmed, models.BookingCompleted, models.BookingCancelled}
	for _, id := range []uuid.UUID{completed.ID, cancelled.ID} {
		for _, to := range all {
			_, err := svc.Update(t.Context(), asUser(admin), id, UpdateBookingInput{Status: statusPtr(to)})
			if KindOf(err) != KindInvalidTransition {
				t.Fatalf("booking %s -> %s: err = %v, want invalid transition", id, to, err)
			}
		}
	}
}

func TestUpdateBooking_MeetingLinkAndVisibility(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, nil)
	tutor := createTutor(t, db, "Tina Tutor", 40)
	alice := createUser(t, db, models.RoleStudent, "Alice")
	mallory := createUser(t, db, models.RoleStudent, "Mallory")
	b := bookAt(t, svc, alice, tutor, 0, time.Hour)

	link := "https://meet.example.com/abc"
	if _, err := svc.Update(t.Context(), asUser(alice), b.ID, UpdateBookingInput{MeetingLink: &link}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("student link err = %v, want forbidden", err)
	}
	if _, err := svc.Update(t.Context(), asUser(mallory), b.ID, UpdateBookingInput{Status: statusPtr(models.BookingCancelled)}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider cancel err = %v, want forbidden", err)
	}
	updated, err := svc.Update(t.Context(), asUser(tutor), b.ID, UpdateBookingInput{Status: statusPtr(models.BookingConfirmed), MeetingLink: &link})
	if err != nil {
		t.Fatalf("tutor update: %v", err)
	}
	if updated.MeetingLink == nil || *updated.MeetingLink != link || updated.Status != models.BookingConfirmed {
		t.Fatalf("updated = %+v", updated)
	}

	if _, err := svc.Update(t.Context(), asUser(tutor), b.ID, UpdateBookingInput{}); KindOf(err) != KindInvalidArgument {
		t.Fatalf("empty update err = %v", err)
	}
	if _, err := svc.Update(t.Context(), asUser(tutor), uuid.New(), UpdateBookingInput{MeetingLink: &link}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing booking err = %v", err)
	}

	if _, err := svc.Get(t.Context(), asUser(mallory), b.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider get err = %v, want forbidden", err)
	}
	got, err := svc.Get(t.Context(), asUser(alice), b.ID)
	if err != nil || got.Payment == nil || got.Tutor == nil {
		t.Fatalf("get = %+v, %v", got, err)
	}
}

func TestListBookings_ScopedByRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, nil)
	tina := createTutor(t, db, "Tina Tutor", 40)
	otto := createTutor(t, db, "Otto Tutor", 40)
	alice := createUser(t, db, models.RoleStudent, "Alice")
	bob := createUser(t, db, models.RoleStudent, "Bob")
	admin := createUser(t, db, models.RoleAdmin, "Ada Admin")

	a1 := bookAt(t, svc, alice, tina, 0, time.Hour)
	bookAt(t, svc, alice, otto, 0, time.Hour)
	bookAt(t, svc, bob, tina, 2*time.Hour, time.Hour)
	if _, err := svc.Update(t.Context(), asUser(tina), a1.ID, UpdateBookingInput{Status: statusPtr(models.BookingConfirmed)}); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	check := func(who models.User, f BookingFilter, want int64) {
		t.Helper()
		list, total, err := svc.List(t.Context(), asUser(who), f)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if total != want || int64(len(list)) != want {
			t.Fatalf("%s list = %d/%d, want %d", who.Name, len(list), total, want)
		}
	}
	check(alice, BookingFilter{}, 2)
	check(bob, BookingFilter{}, 1)
	check(tina, BookingFilter{}, 2)
	check(admin, BookingFilter{}, 3)
	check(admin, BookingFilter{TutorID: otto.ID}, 1)
	check(tina, BookingFilter{Status: "scheduled"}, 1)
	check(tina, BookingFilter{Status: "PENDING"}, 1)

	page, total, err := svc.List(t.Context(), asUser(alice), BookingFilter{Page: utils.NewPage(2, 1)})
	if err != nil || total != 2 || len(page) != 1 {
		t.Fatalf("paged list = %d/%d, %v", len(page), total, err)
	}

	if _, _, err := svc.List(t.Context(), asUser(alice), BookingFilter{Status: "bogus"}); KindOf(err) != KindInvalidArgument {
		t.Fatalf("bad status err = %v", err)
	}
}

func TestDeleteBooking_AdminCascade(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, nil)
	reviews := NewReviewService(db, nil)
	tutor := createTutor(t, db, "Tina Tutor", 40)
	alice := createUser(t, db, models.RoleStudent, "Alice")
	admin := createUser(t, db, models.RoleAdmin, "Ada Admin")

	b := bookAt(t, svc, alice, tutor, 0, time.Hour)
	for _, st := range []models.BookingStatus{models.BookingConfirmed, models.BookingCompleted} {
		if _, err := svc.Update(t.Context(), asUser(tutor), b.ID, UpdateBookingInput{Status: statusPtr(st)}); err != nil {
			t.Fatalf("move to %s: %v", st, err)
		}
	}
	if _, err := reviews.Create(t.Context(), asUser(alice), b.ID, 5, "great"); err != nil {
		t.Fatalf("review: %v", err)
	}

	if err := svc.Delete(t.Context(), asUser(tutor), b.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("tutor delete err = %v, want forbidden", err)
	}
	if err := svc.Delete(t.Context(), asUser(admin), b.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if err := svc.Delete(t.Context(), asUser(admin), b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("repeat delete err = %v, want not found", err)
	}

	var n int64
	db.Model(&models.Payment{}).Where("booking_id = ?", b.ID).Count(&n)
	if n != 0 {
		t.Fatalf("payment survived delete")
	}
	db.Model(&models.Review{}).Where("booking_id = ?", b.ID).Count(&n)
	if n != 0 {
		t.Fatalf("review survived delete")
	}

	var earnings []models.Earning
	db.Where("tutor_id = ?", tutor.ID).Find(&earnings)
	if len(earnings) != 1 || earnings[0].BookingID != nil {
		t.Fatalf("earnings after delete = %+v", earnings)
	}

	var profile models.TutorProfile
	db.First(&profile, "user_id = ?", tutor.ID)
	if profile.AverageRating != nil || profile.ReviewCount != 0 {
		t.Fatalf("rating not reset: %v/%d", profile.AverageRating, profile.ReviewCount)
	}
}

func TestExpireStale(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, nil)
	tutor := createTutor(t, db, "Tina Tutor", 40)
	alice := createUser(t, db, models.RoleStudent, "Alice")

	started := bookAt(t, svc, alice, tutor, 0, time.Hour)
	confirmed := bookAt(t, svc, alice, tutor, 2*time.Hour, time.Hour)
	future := bookAt(t, svc, alice, tutor, 30*24*time.Hour, time.Hour)
	if _, err := svc.Update(t.Context(), asUser(tutor), confirmed.ID, UpdateBookingInput{Status: statusPtr(models.BookingConfirmed)}); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	svc.Now = func() time.Time { return baseTime.Add(5 * time.Hour) }
	n, err := svc.ExpireStale(t.Context(), 0)
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired = %d, want 1", n)
	}

	statusOf := func(id uuid.UUID) models.BookingStatus {
		var b models.Booking
		db.First(&b, "id = ?", id)
		return b.Status
	}
	if statusOf(started.ID) != models.BookingCancelled {
		t.Fatalf("started booking not cancelled")
	}
	if statusOf(confirmed.ID) != models.BookingConfirmed || statusOf(future.ID) != models.BookingPending {
		t.Fatalf("unexpected cancellations")
	}
	var payment models.Payment
	db.First(&payment, "booking_id = ?", started.ID)
	if payment.Status != models.PaymentRefunded {
		t.Fatalf("expired payment = %s, want REFUNDED", payment.Status)
	}

	// age rule: created long before "now"
	svc.Now = func() time.Time { return time.Now().Add(72 * time.Hour) }
	n, err = svc.ExpireStale(t.Context(), 48*time.Hour)
	if err != nil || n != 1 {
		t.Fatalf("ttl expire = %d, %v; want 1", n, err)
	}
	if statusOf(future.ID) != models.BookingCancelled {
		t.Fatalf("stale pending booking not cancelled")
	}
}

func TestDueReminders_ClaimedOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, nil)
	tutor := createTutor(t, db, "Tina Tutor", 40)
	alice := createUser(t, db, models.RoleStudent, "Alice")

	soon := bookAt(t, svc, alice, tutor, time.Hour, time.Hour)
	bookAt(t, svc, alice, tutor, 3*time.Hour, time.Hour)
	if _, err := svc.Update(t.Context(), asUser(tutor), soon.ID, UpdateBookingInput{Status: statusPtr(models.BookingConfirmed)}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	svc.Now = func() time.Time { return baseTime.Add(10 * time.Minute) }

	list, err := svc.DueReminders(t.Context(), time.Hour)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(list) != 1 || list[0].ID != soon.ID || list[0].Student == nil {
		t.Fatalf("due = %+v", list)
	}

	claimed, err := svc.ClaimReminder(t.Context(), soon.ID)
	if err != nil || !claimed {
		t.Fatalf("first claim = %v, %v", claimed, err)
	}
	claimed, err = svc.ClaimReminder(t.Context(), soon.ID)
	if err != nil || claimed {
		t.Fatalf("second claim = %v, %v", claimed, err)
	}
	list, err = svc.DueReminders(t.Context(), time.Hour)
	if err != nil || len(list) != 0 {
		t.Fatalf("due after claim = %d, %v", len(list), err)
	}
}
