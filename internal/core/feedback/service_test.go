package feedback

import (
	"context"
	"testing"

	"snap2cook/internal/infrastructure/database"
	"snap2cook/internal/pkg/common"
	"snap2cook/internal/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_PersistsWithDefaultName(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewService(db)

	require.NoError(t, svc.Submit(context.Background(), Request{Message: "Love it"}))
	require.NoError(t, svc.Submit(context.Background(), Request{Name: " Sam ", Message: "More vegan recipes"}))

	var rows []database.Feedback
	require.NoError(t, db.Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, AnonymousName, rows[0].Name)
	assert.Equal(t, "Love it", rows[0].Message)
	assert.Equal(t, "Sam", rows[1].Name)
}

func TestSubmit_RequiresMessage(t *testing.T) {
	err := NewService(testhelpers.SetupTestDB(t)).Submit(context.Background(), Request{Name: "x", Message: "  "})
	assert.True(t, common.IsValidationError(err))
}
