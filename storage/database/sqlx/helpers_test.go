package sqlxrepos

import (
	"testing"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/mark"
	"github.com/kazadi/darasa/core/user"
)

func TestWrapWriteError(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		wantErr   error
		wantField string
	}{
		{
			"unique username",
			&pq.Error{Code: "23505", Constraint: "user_username_key"},
			user.ErrUsernameExists, "username",
		},
		{
			"unique symbol name",
			&pq.Error{Code: "23505", Constraint: "mark_symbol_name_key"},
			mark.ErrSymbolNameExists, "name",
		},
		{
			"teacher slot exclusion",
			&pq.Error{Code: "23P01", Constraint: "schedule_teacher_no_overlap"},
			errTeacherOccupied, "teacher",
		},
		{
			"group slot exclusion",
			&pq.Error{Code: "23P01", Constraint: "schedule_group_no_overlap"},
			errGroupOccupied, "course",
		},
		{
			"assignment exclusion, already wrapped",
			errors.Wrap(&pq.Error{Code: "23P01", Constraint: "assignment_no_overlap"}, "inserting assignment"),
			errAssignmentTaken, "date_start",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := wrapWriteError(tc.err, "writing")
			vErr, ok := err.(*core.ValidationError)
			if !ok {
				t.Fatalf("expected *core.ValidationError, got %T: %v", err, err)
			}
			assert.Equal(t, tc.wantErr, vErr.Err)
			assert.Equal(t, tc.wantField, vErr.Fields[0].Field)
		})
	}
}

func TestWrapWriteError_passthrough(t *testing.T) {
	// foreign keys and unmapped constraints are not validation failures
	raw := &pq.Error{Code: "23503", Constraint: "mark_course_id_fkey"}
	err := wrapWriteError(raw, "inserting mark")
	assert.Equal(t, raw, errors.Cause(err))
	assert.Contains(t, err.Error(), "inserting mark")

	err = wrapWriteError(errors.New("connection reset"), "updating schedule")
	assert.Contains(t, err.Error(), "updating schedule")
}
