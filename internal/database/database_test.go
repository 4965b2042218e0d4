package database

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "translated gorm duplicate key",
			err:  gorm.ErrDuplicatedKey,
			want: true,
		},
		{
			name: "wrapped gorm duplicate key",
			err:  fmt.Errorf("creating entry: %w", gorm.ErrDuplicatedKey),
			want: true,
		},
		{
			name: "raw sqlite unique failure",
			err:  errors.New("constraint failed: UNIQUE constraint failed: watchlist_entries.user_id, watchlist_entries.movie_id (2067)"),
			want: true,
		},
		{
			name: "raw postgres unique failure",
			err:  errors.New(`ERROR: duplicate key value violates unique constraint "idx_watchlist_user_movie" (SQLSTATE 23505)`),
			want: true,
		},
		{
			name: "record not found is not a violation",
			err:  gorm.ErrRecordNotFound,
			want: false,
		},
		{
			name: "unrelated error",
			err:  errors.New("connection refused"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err); got != tt.want {
				t.Errorf("IsUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
