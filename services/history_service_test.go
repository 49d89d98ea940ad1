package services

import (
	"testing"
	"time"

	"resq-http-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryAppendAndOrdering(t *testing.T) {
	db := newTestDB(t)
	clock := newFakeClock(time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC))
	service := NewHistoryService(db, newTestConfig(), clock)

	require.NoError(t, service.Append(nil, 1, "operator", "status", "Pending", "Pending Assignment", "proposed"))
	clock.Advance(time.Minute)
	require.NoError(t, service.Append(nil, 1, "system", "status", "Pending Assignment", "Pending", "expired"))
	clock.Advance(time.Minute)
	require.NoError(t, service.Append(nil, 1, "operator", "notes", "", "updated", "manual edit"))
	require.NoError(t, service.Append(nil, 2, "operator", "status", "Pending", "Cancelled", "other ticket"))

	// 展示顺序：时间倒序
	history, err := service.GetTicketHistory(1)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "notes", history[0].FieldName)
	assert.Equal(t, "proposed", history[2].Notes)

	// 审计顺序：时间正序，可回放出工单的每一次状态流转
	trail, err := service.GetAuditTrail(1)
	require.NoError(t, err)
	require.Len(t, trail, 3)
	assert.Equal(t, "proposed", trail[0].Notes)
	assert.Equal(t, "expired", trail[1].Notes)
	assert.Equal(t, "manual edit", trail[2].Notes)
}

func TestHistoryAppendWithinTransaction(t *testing.T) {
	db := newTestDB(t)
	clock := newFakeClock(time.Now())
	service := NewHistoryService(db, newTestConfig(), clock)

	// 事务回滚时历史记录一并回滚
	tx := db.Begin()
	require.NoError(t, service.Append(tx, 1, "operator", "status", "a", "b", ""))
	tx.Rollback()

	var count int64
	require.NoError(t, db.Model(&models.TicketUpdate{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	tx = db.Begin()
	require.NoError(t, service.Append(tx, 1, "operator", "status", "a", "b", ""))
	require.NoError(t, tx.Commit().Error)

	require.NoError(t, db.Model(&models.TicketUpdate{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
