package services

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visitcare/visitation-backend/internal/database"
	"github.com/visitcare/visitation-backend/internal/models"
	"github.com/visitcare/visitation-backend/internal/scheduling"
)

var memberColumns = []string{
	"id", "name", "email", "password_hash", "role", "active",
	"last_login_at", "created_at", "updated_at",
}

var routeColumns = []string{
	"id", "name", "hospitals", "active", "created_at", "updated_at",
}

var slotColumns = []string{
	"id", "route_id", "date", "member_ids", "status",
	"report_notes", "report_author", "report_follow_up", "report_created_at",
	"created_at", "updated_at",
}

func newTestVisitService(t *testing.T) (*VisitService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mockDB := &mockDatabase{db: sqlx.NewDb(db, "sqlmock")}
	service := NewVisitService(
		database.NewVisitSlotRepository(mockDB),
		database.NewVisitRouteRepository(mockDB),
		database.NewMemberRepository(mockDB),
	)

	return service, mock, func() { db.Close() }
}

func memberRow(id uuid.UUID, name string, role models.MemberRole) []driver.Value {
	now := time.Now()
	return []driver.Value{id, name, name + "@example.com", "hash", string(role), true, nil, now, now}
}

func TestGetSlot(t *testing.T) {
	service, mock, closeFn := newTestVisitService(t)
	defer closeFn()

	t.Run("Invalid Date", func(t *testing.T) {
		slot, err := service.GetSlot(uuid.New().String(), "15-09-2026")
		assert.Error(t, err)
		assert.Nil(t, slot)
	})

	t.Run("No Assignment Yet", func(t *testing.T) {
		routeID := uuid.New().String()

		mock.ExpectQuery(`SELECT (.+) FROM visit_slots WHERE route_id`).
			WithArgs(routeID, "2026-09-15").
			WillReturnError(sql.ErrNoRows)

		slot, err := service.GetSlot(routeID, "2026-09-15")
		require.NoError(t, err)
		assert.Nil(t, slot)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Existing Slot", func(t *testing.T) {
		routeID := uuid.New().String()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM visit_slots WHERE route_id`).
			WithArgs(routeID, "2026-09-15").
			WillReturnRows(sqlmock.NewRows(slotColumns).AddRow(
				uuid.New().String(), routeID, "2026-09-15", []byte(`{}`), "PENDING",
				nil, nil, nil, nil, now, now,
			))

		slot, err := service.GetSlot(routeID, "2026-09-15")
		require.NoError(t, err)
		require.NotNil(t, slot)
		assert.Equal(t, routeID, slot.RouteID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAssignVisit(t *testing.T) {
	t.Run("Self Assignment Creates Slot", func(t *testing.T) {
		service, mock, closeFn := newTestVisitService(t)
		defer closeFn()

		actor := models.Member{ID: uuid.New(), Name: "Nimal Perera", Role: models.RoleMember, Active: true}
		routeID := uuid.New().String()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM members ORDER BY name`).
			WillReturnRows(sqlmock.NewRows(memberColumns).
				AddRow(memberRow(actor.ID, "Nimal Perera", models.RoleMember)...))

		mock.ExpectQuery(`SELECT (.+) FROM visit_routes ORDER BY name`).
			WillReturnRows(sqlmock.NewRows(routeColumns).
				AddRow(routeID, "North Route", []byte(`{"General Hospital"}`), true, now, now))

		mock.ExpectQuery(`SELECT (.+) FROM visit_slots WHERE date`).
			WithArgs("2026-09-15").
			WillReturnRows(sqlmock.NewRows(slotColumns))

		mock.ExpectExec(`INSERT INTO visit_slots`).
			WithArgs(sqlmock.AnyArg(), routeID, "2026-09-15", sqlmock.AnyArg(),
				models.VisitSlotStatusPending, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		change, err := service.Assign(actor, models.AssignRequest{
			RouteID:  routeID,
			Date:     "2026-09-15",
			MemberID: actor.ID.String(),
		})
		require.NoError(t, err)
		require.NotNil(t, change)
		assert.True(t, change.Created)
		assert.Equal(t, []string{actor.ID.String()}, change.NewMemberIDs)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Permission Denied For Other Member", func(t *testing.T) {
		service, mock, closeFn := newTestVisitService(t)
		defer closeFn()

		actor := models.Member{ID: uuid.New(), Name: "Nimal Perera", Role: models.RoleMember, Active: true}
		other := uuid.New()
		routeID := uuid.New().String()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM members ORDER BY name`).
			WillReturnRows(sqlmock.NewRows(memberColumns).
				AddRow(memberRow(actor.ID, "Nimal Perera", models.RoleMember)...).
				AddRow(memberRow(other, "Kumari Silva", models.RoleMember)...))

		mock.ExpectQuery(`SELECT (.+) FROM visit_routes ORDER BY name`).
			WillReturnRows(sqlmock.NewRows(routeColumns).
				AddRow(routeID, "North Route", []byte(`{"General Hospital"}`), true, now, now))

		mock.ExpectQuery(`SELECT (.+) FROM visit_slots WHERE date`).
			WithArgs("2026-09-15").
			WillReturnRows(sqlmock.NewRows(slotColumns))

		change, err := service.Assign(actor, models.AssignRequest{
			RouteID:  routeID,
			Date:     "2026-09-15",
			MemberID: other.String(),
		})
		assert.ErrorIs(t, err, scheduling.ErrPermissionDenied)
		assert.Nil(t, change)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Toggle Off Deletes Empty Slot", func(t *testing.T) {
		service, mock, closeFn := newTestVisitService(t)
		defer closeFn()

		actor := models.Member{ID: uuid.New(), Name: "Nimal Perera", Role: models.RoleMember, Active: true}
		routeID := uuid.New().String()
		slotID := uuid.New().String()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM members ORDER BY name`).
			WillReturnRows(sqlmock.NewRows(memberColumns).
				AddRow(memberRow(actor.ID, "Nimal Perera", models.RoleMember)...))

		mock.ExpectQuery(`SELECT (.+) FROM visit_routes ORDER BY name`).
			WillReturnRows(sqlmock.NewRows(routeColumns).
				AddRow(routeID, "North Route", []byte(`{"General Hospital"}`), true, now, now))

		mock.ExpectQuery(`SELECT (.+) FROM visit_slots WHERE date`).
			WithArgs("2026-09-15").
			WillReturnRows(sqlmock.NewRows(slotColumns).AddRow(
				slotID, routeID, "2026-09-15",
				[]byte(fmt.Sprintf(`{"%s"}`, actor.ID.String())), "PENDING",
				nil, nil, nil, nil, now, now,
			))

		mock.ExpectExec(`DELETE FROM visit_slots`).
			WithArgs(slotID).
			WillReturnResult(sqlmock.NewResult(1, 1))

		change, err := service.Assign(actor, models.AssignRequest{
			RouteID:  routeID,
			Date:     "2026-09-15",
			MemberID: actor.ID.String(),
		})
		require.NoError(t, err)
		assert.True(t, change.Deleted)
		assert.Empty(t, change.NewMemberIDs)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Invalid Date", func(t *testing.T) {
		service, _, closeFn := newTestVisitService(t)
		defer closeFn()

		actor := models.Member{ID: uuid.New(), Role: models.RoleMember}

		change, err := service.Assign(actor, models.AssignRequest{
			RouteID:  uuid.New().String(),
			Date:     "2026/09/15",
			MemberID: actor.ID.String(),
		})
		assert.Error(t, err)
		assert.Nil(t, change)
	})
}

func TestMarkOnTheWay(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		service, mock, closeFn := newTestVisitService(t)
		defer closeFn()

		actor := models.Member{ID: uuid.New(), Role: models.RoleMember}
		slotID := uuid.New().String()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM visit_slots WHERE id`).
			WithArgs(slotID).
			WillReturnRows(sqlmock.NewRows(slotColumns).AddRow(
				slotID, uuid.New().String(), "2026-09-15",
				[]byte(fmt.Sprintf(`{"%s"}`, actor.ID.String())), "PENDING",
				nil, nil, nil, nil, now, now,
			))

		mock.ExpectExec(`UPDATE visit_slots SET status`).
			WithArgs(models.VisitSlotStatusOnTheWay, sqlmock.AnyArg(), slotID).
			WillReturnResult(sqlmock.NewResult(1, 1))

		slot, err := service.MarkOnTheWay(actor, slotID)
		require.NoError(t, err)
		assert.Equal(t, models.VisitSlotStatusOnTheWay, slot.Status)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Assigned", func(t *testing.T) {
		service, mock, closeFn := newTestVisitService(t)
		defer closeFn()

		actor := models.Member{ID: uuid.New(), Role: models.RoleMember}
		slotID := uuid.New().String()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM visit_slots WHERE id`).
			WithArgs(slotID).
			WillReturnRows(sqlmock.NewRows(slotColumns).AddRow(
				slotID, uuid.New().String(), "2026-09-15",
				[]byte(fmt.Sprintf(`{"%s"}`, uuid.New().String())), "PENDING",
				nil, nil, nil, nil, now, now,
			))

		slot, err := service.MarkOnTheWay(actor, slotID)
		assert.ErrorIs(t, err, ErrNotAssigned)
		assert.Nil(t, slot)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already On The Way", func(t *testing.T) {
		service, mock, closeFn := newTestVisitService(t)
		defer closeFn()

		actor := models.Member{ID: uuid.New(), Role: models.RoleMember}
		slotID := uuid.New().String()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM visit_slots WHERE id`).
			WithArgs(slotID).
			WillReturnRows(sqlmock.NewRows(slotColumns).AddRow(
				slotID, uuid.New().String(), "2026-09-15",
				[]byte(fmt.Sprintf(`{"%s"}`, actor.ID.String())), "ON_THE_WAY",
				nil, nil, nil, nil, now, now,
			))

		slot, err := service.MarkOnTheWay(actor, slotID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Nil(t, slot)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Slot Not Found", func(t *testing.T) {
		service, mock, closeFn := newTestVisitService(t)
		defer closeFn()

		actor := models.Member{ID: uuid.New(), Role: models.RoleMember}
		slotID := uuid.New().String()

		mock.ExpectQuery(`SELECT (.+) FROM visit_slots WHERE id`).
			WithArgs(slotID).
			WillReturnError(sql.ErrNoRows)

		slot, err := service.MarkOnTheWay(actor, slotID)
		assert.ErrorIs(t, err, ErrSlotNotFound)
		assert.Nil(t, slot)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFinishVisit(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		service, mock, closeFn := newTestVisitService(t)
		defer closeFn()

		actor := models.Member{ID: uuid.New(), Role: models.RoleMember}
		slotID := uuid.New().String()
		routeID := uuid.New().String()
		now := time.Now()
		notes := "Visited both wards, patients doing well"

		mock.ExpectQuery(`SELECT (.+) FROM visit_slots WHERE id`).
			WithArgs(slotID).
			WillReturnRows(sqlmock.NewRows(slotColumns).AddRow(
				slotID, routeID, "2026-09-15",
				[]byte(fmt.Sprintf(`{"%s"}`, actor.ID.String())), "ON_THE_WAY",
				nil, nil, nil, nil, now, now,
			))

		mock.ExpectExec(`UPDATE visit_slots`).
			WithArgs(models.VisitSlotStatusFinished, notes, actor.ID.String(),
				false, sqlmock.AnyArg(), slotID).
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectQuery(`SELECT (.+) FROM visit_slots WHERE id`).
			WithArgs(slotID).
			WillReturnRows(sqlmock.NewRows(slotColumns).AddRow(
				slotID, routeID, "2026-09-15",
				[]byte(fmt.Sprintf(`{"%s"}`, actor.ID.String())), "FINISHED",
				notes, actor.ID.String(), false, now, now, now,
			))

		slot, err := service.FinishVisit(actor, slotID, models.FinishVisitRequest{Notes: notes})
		require.NoError(t, err)
		assert.Equal(t, models.VisitSlotStatusFinished, slot.Status)
		assert.True(t, slot.HasReport())

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Still Pending", func(t *testing.T) {
		service, mock, closeFn := newTestVisitService(t)
		defer closeFn()

		actor := models.Member{ID: uuid.New(), Role: models.RoleMember}
		slotID := uuid.New().String()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM visit_slots WHERE id`).
			WithArgs(slotID).
			WillReturnRows(sqlmock.NewRows(slotColumns).AddRow(
				slotID, uuid.New().String(), "2026-09-15",
				[]byte(fmt.Sprintf(`{"%s"}`, actor.ID.String())), "PENDING",
				nil, nil, nil, nil, now, now,
			))

		slot, err := service.FinishVisit(actor, slotID, models.FinishVisitRequest{Notes: "skipped departure"})
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Nil(t, slot)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Finished", func(t *testing.T) {
		service, mock, closeFn := newTestVisitService(t)
		defer closeFn()

		actor := models.Member{ID: uuid.New(), Role: models.RoleMember}
		slotID := uuid.New().String()
		now := time.Now()
		notes := "existing report"

		mock.ExpectQuery(`SELECT (.+) FROM visit_slots WHERE id`).
			WithArgs(slotID).
			WillReturnRows(sqlmock.NewRows(slotColumns).AddRow(
				slotID, uuid.New().String(), "2026-09-15",
				[]byte(fmt.Sprintf(`{"%s"}`, actor.ID.String())), "FINISHED",
				notes, actor.ID.String(), false, now, now, now,
			))

		slot, err := service.FinishVisit(actor, slotID, models.FinishVisitRequest{Notes: "second report"})
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Nil(t, slot)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMonthCoverage(t *testing.T) {
	service, mock, closeFn := newTestVisitService(t)
	defer closeFn()

	routeID := uuid.New().String()
	now := time.Now()
	m1 := uuid.New().String()
	m2 := uuid.New().String()

	mock.ExpectQuery(`SELECT (.+) FROM visit_routes ORDER BY name`).
		WillReturnRows(sqlmock.NewRows(routeColumns).
			AddRow(routeID, "North Route", []byte(`{"General Hospital"}`), true, now, now))

	mock.ExpectQuery(`SELECT (.+) FROM visit_slots WHERE date >= (.+) AND date <=`).
		WithArgs("2026-09-01", "2026-09-30").
		WillReturnRows(sqlmock.NewRows(slotColumns).
			AddRow(uuid.New().String(), routeID, "2026-09-15",
				[]byte(fmt.Sprintf(`{"%s","%s"}`, m1, m2)), "PENDING",
				nil, nil, nil, nil, now, now).
			AddRow(uuid.New().String(), routeID, "2026-09-16",
				[]byte(fmt.Sprintf(`{"%s"}`, m1)), "PENDING",
				nil, nil, nil, nil, now, now))

	coverage, err := service.MonthCoverage(2026, 9)
	require.NoError(t, err)
	require.Len(t, coverage, 30)

	byDate := make(map[string]scheduling.Coverage)
	for _, day := range coverage {
		byDate[day.Date] = day.Coverage
	}

	assert.Equal(t, scheduling.CoverageFull, byDate["2026-09-15"].Status)
	assert.Equal(t, scheduling.CoveragePartial, byDate["2026-09-16"].Status)
	assert.Equal(t, scheduling.CoverageEmpty, byDate["2026-09-17"].Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpcomingVisits(t *testing.T) {
	service, mock, closeFn := newTestVisitService(t)
	defer closeFn()

	memberID := uuid.New().String()
	now := time.Now()
	tomorrow := now.AddDate(0, 0, 1).Format("2006-01-02")
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")

	mock.ExpectQuery(`SELECT (.+) FROM visit_slots WHERE (.+) ANY\(member_ids\)`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows(slotColumns).
			AddRow(uuid.New().String(), uuid.New().String(), yesterday,
				[]byte(fmt.Sprintf(`{"%s"}`, memberID)), "PENDING",
				nil, nil, nil, nil, now, now).
			AddRow(uuid.New().String(), uuid.New().String(), tomorrow,
				[]byte(fmt.Sprintf(`{"%s"}`, memberID)), "PENDING",
				nil, nil, nil, nil, now, now))

	visits, err := service.UpcomingVisits(memberID)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, tomorrow, visits[0].Date)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// Mock database implementation for testing, backed by sqlmock via sqlx
// so struct scanning in Get and Select works the same as production.
type mockDatabase struct {
	db *sqlx.DB
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return m.db.Get(dest, query, args...)
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return m.db.Select(dest, query, args...)
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) Close() error {
	return m.db.Close()
}

func (m *mockDatabase) Ping() error {
	return m.db.Ping()
}
