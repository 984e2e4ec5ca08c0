package repository

import (
	"context"
	"testing"
)

// A malformed id can never match the UUID-typed id column; it must read as a
// missing row instead of reaching the database and failing the uuid cast.
// The nil db proves the lookup short-circuits before any query.
func TestPostgresGetByID_MalformedID(t *testing.T) {
	r := NewPostgresRepository(nil)

	u, err := r.GetByID(context.Background(), "not-a-uuid")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if u != nil {
		t.Errorf("user = %+v, want nil", u)
	}
}
