package period_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/period"
	dummydb "github.com/kazadi/darasa/storage/database/dummy"
	testutil "github.com/kazadi/darasa/tests"
)

func setup(t *testing.T) *period.Service {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	validate, _ := testutil.NewValidator()
	return period.NewService(dummydb.NewPeriodRepository(db), validate)
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()

	vErr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("expected *core.ValidationError, got %T: %v", err, err)
	}
	flds := make(map[string]string, len(vErr.Fields))
	for _, fErr := range vErr.Fields {
		flds[fErr.Field] = fErr.Error
	}
	return flds
}

func TestService_Create(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, period.NewPeriod{TimeStart: "08:00", TimeEnd: "08:45"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	assert.NotZero(t, first.ID)

	tests := []struct {
		name               string
		timeStart, timeEnd string
		wantFld            string
	}{
		{name: "end before start", timeStart: "09:00", timeEnd: "08:30", wantFld: "time_end"},
		{name: "end equals start", timeStart: "09:00", timeEnd: "09:00", wantFld: "time_end"},
		{name: "overlaps existing", timeStart: "08:30", timeEnd: "09:15", wantFld: "time_start"},
		{name: "contains existing", timeStart: "07:00", timeEnd: "10:00", wantFld: "time_start"},
		{name: "back to back is fine", timeStart: "08:45", timeEnd: "09:30"},
		{name: "bad format", timeStart: "8am", timeEnd: "9am", wantFld: "time_start"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, period.NewPeriod{TimeStart: tt.timeStart, TimeEnd: tt.timeEnd})
			if tt.wantFld == "" {
				assert.NoError(t, err)
				return
			}
			if vErr, ok := err.(*core.ValidationError); ok {
				flds := make(map[string]string, len(vErr.Fields))
				for _, fErr := range vErr.Fields {
					flds[fErr.Field] = fErr.Error
				}
				assert.Contains(t, flds, tt.wantFld)
				return
			}
			// struct validation errors surface as validator.ValidationErrors
			assert.Error(t, err)
		})
	}
}

func TestService_Update(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, period.NewPeriod{TimeStart: "08:00", TimeEnd: "08:45"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err = svc.Create(ctx, period.NewPeriod{TimeStart: "08:45", TimeEnd: "09:30"}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	t.Run("cannot move onto another period", func(t *testing.T) {
		_, err := svc.Update(ctx, first.ID, period.UpdatePeriod{TimeStart: "08:00", TimeEnd: "09:00"})
		flds := fieldErrors(t, err)
		assert.Contains(t, flds, "time_start")
	})

	t.Run("may shrink within its own slot", func(t *testing.T) {
		got, err := svc.Update(ctx, first.ID, period.UpdatePeriod{TimeStart: "08:05", TimeEnd: "08:40"})
		assert.NoError(t, err)
		assert.Equal(t, "08:05", got.TimeStart)
		assert.Equal(t, "08:40", got.TimeEnd)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Update(ctx, 999, period.UpdatePeriod{TimeStart: "10:00", TimeEnd: "10:45"})
		assert.Equal(t, period.ErrNotFound, err)
	})
}
