package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gmportal/internal/db"
)

func TestElevated(t *testing.T) {
	assert.False(t, Elevated(nil))
	assert.False(t, Elevated(&db.Account{AccountType: db.TypePlayer}))
	assert.False(t, Elevated(&db.Account{AccountType: db.TypeMaster}))
	assert.True(t, Elevated(&db.Account{AccountType: db.TypeAdministrator}))
	assert.True(t, Elevated(&db.Account{AccountType: db.TypeDeveloper}))
}

func TestCanManage(t *testing.T) {
	owner := &db.Account{ID: 7, AccountType: db.TypeMaster}
	stranger := &db.Account{ID: 8, AccountType: db.TypeMaster}
	admin := &db.Account{ID: 9, AccountType: db.TypeAdministrator}

	assert.True(t, CanManage(owner, 7))
	assert.False(t, CanManage(stranger, 7))
	assert.True(t, CanManage(admin, 7), "elevated callers bypass ownership")
	assert.False(t, CanManage(nil, 7))

	assert.NoError(t, Authorize(owner, 7))
	assert.ErrorIs(t, Authorize(stranger, 7), ErrForbidden)
}

func TestListScope(t *testing.T) {
	assert.EqualValues(t, 0, ListScope(&db.Account{ID: 9, AccountType: db.TypeAdministrator}))
	assert.EqualValues(t, 7, ListScope(&db.Account{ID: 7, AccountType: db.TypeMaster}))
	assert.EqualValues(t, -1, ListScope(nil))
}
