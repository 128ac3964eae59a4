package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateEntry(t *testing.T) {
	assert.True(t, isDuplicateEntry(errors.New("Error 1062 (23000): Duplicate entry '1-4-4' for key 'uq_screening_seat_row'")))
	assert.True(t, isDuplicateEntry(errors.New("duplicate entry 'a@b.c' for key 'uq_users_email'")))
	assert.False(t, isDuplicateEntry(errors.New("Error 1452 (23000): Cannot add or update a child row")))
	assert.False(t, isDuplicateEntry(errors.New("driver: bad connection")))
	assert.False(t, isDuplicateEntry(nil))
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, isForeignKeyViolation(errors.New("Error 1452 (23000): Cannot add or update a child row: a foreign key constraint fails")))
	assert.True(t, isForeignKeyViolation(errors.New("Error 1451 (23000): Cannot delete or update a parent row")))
	assert.False(t, isForeignKeyViolation(errors.New("Error 1062 (23000): Duplicate entry")))
	assert.False(t, isForeignKeyViolation(nil))
}
