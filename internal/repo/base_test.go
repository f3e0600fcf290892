package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/novathreads/storefront-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	return conn
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)
	require.NotNil(t, withCtx.Statement)
	assert.Equal(t, ctx, withCtx.Statement.Context)

	assert.Same(t, db, base.DB(nil))
}

func TestBaseWithTx(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	assert.Same(t, db, base.WithTx(nil).db)

	tx := db.Session(&gorm.Session{})
	assert.Same(t, tx, base.WithTx(tx).db)
}

type row struct {
	ID int
}

func TestPaginate(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.AutoMigrate(&row{}))
	for i := 1; i <= 25; i++ {
		require.NoError(t, db.Create(&row{ID: i}).Error)
	}

	var page []row
	require.NoError(t, db.Scopes(Paginate(pagination.Params{Page: 3, Limit: 12})).Order("id").Find(&page).Error)
	require.Len(t, page, 1)
	assert.Equal(t, 25, page[0].ID)

	page = nil
	require.NoError(t, db.Scopes(Paginate(pagination.Params{Page: 4, Limit: 12})).Order("id").Find(&page).Error)
	assert.Empty(t, page)
}
