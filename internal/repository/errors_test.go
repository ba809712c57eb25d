package repository

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMapWriteError(t *testing.T) {
	assert.ErrorIs(t, mapWriteError(&pq.Error{Code: "23505"}), ErrDuplicate)

	fk := &pq.Error{Code: "23503"}
	assert.Same(t, fk, mapWriteError(fk))

	plain := errors.New("boom")
	assert.Equal(t, plain, mapWriteError(plain))
}
