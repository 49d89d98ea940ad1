package services

import (
	"testing"
	"time"

	"resq-http-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTicketService(t *testing.T) (InterfaceTicketService, *gorm.DB, *fakeClock) {
	t.Helper()
	db := newTestDB(t)
	cfg := newTestConfig()
	clock := newFakeClock(time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC))
	history := NewHistoryService(db, cfg, clock)
	service := NewTicketService(db, cfg, NewGeoService(), history, clock)
	return service, db, clock
}

func TestCreateTicketClassifiesPriority(t *testing.T) {
	service, _, _ := newTicketService(t)

	tests := []struct {
		name     string
		category string
		people   int
		want     int
	}{
		{"rescue is urgent", "needs rescue", 2, 5},
		{"medical is urgent", "medical emergency", 1, 5},
		{"fire is urgent", "fire", 3, 5},
		{"water is high", "water", 2, 3},
		{"food is high", "food,shelter", 5, 3},
		{"large group without urgent tag", "other", 25, 4},
		{"default", "other", 2, 1},
		{"combined tags take urgent", "water,needs rescue", 2, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket, err := service.CreateTicket(&CreateTicketRequest{
				People:    tt.people,
				Latitude:  19.0760,
				Longitude: 72.8777,
				Category:  tt.category,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ticket.Priority)
			assert.Equal(t, models.TicketStatusPending, ticket.Status)
			assert.NotEmpty(t, ticket.ExternalID)
		})
	}
}

func TestCreateTicketValidation(t *testing.T) {
	service, _, _ := newTicketService(t)

	_, err := service.CreateTicket(&CreateTicketRequest{
		People: 0, Latitude: 19.0, Longitude: 72.9, Category: "water",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = service.CreateTicket(&CreateTicketRequest{
		People: 3, Latitude: 200, Longitude: 72.9, Category: "water",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateTicketKeepsExternalID(t *testing.T) {
	service, _, _ := newTicketService(t)

	ticket, err := service.CreateTicket(&CreateTicketRequest{
		ExternalID: "channel-abc-1",
		People:     3,
		Latitude:   19.0,
		Longitude:  72.9,
		Category:   "water",
	})
	require.NoError(t, err)
	assert.Equal(t, "channel-abc-1", ticket.ExternalID)
}

func TestGetTicketsFilterAndOrder(t *testing.T) {
	service, db, _ := newTicketService(t)

	seedTicket(t, db, "other", 2, 19.0, 72.9)           // priority 1
	seedTicket(t, db, "needs rescue", 2, 19.0, 72.9)    // priority 5
	seedTicket(t, db, "water", 2, 19.0, 72.9)           // priority 3
	done := seedTicket(t, db, "water", 2, 19.0, 72.9)   // priority 3, Done
	require.NoError(t, db.Model(done).Update("status", models.TicketStatusDone).Error)

	tickets, total, err := service.GetTickets(TicketFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, tickets, 4)
	// 优先级高者在前
	assert.Equal(t, 5, tickets[0].Priority)

	tickets, total, err = service.GetTickets(TicketFilter{Status: models.TicketStatusPending})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, tickets, 3)

	tickets, _, err = service.GetTickets(TicketFilter{Priority: 3})
	require.NoError(t, err)
	assert.Len(t, tickets, 2)
}

func TestGetTicketsRegionFilter(t *testing.T) {
	service, db, _ := newTicketService(t)

	seedTicket(t, db, "water", 2, 19.0, 72.9)  // Western
	seedTicket(t, db, "water", 2, 19.9, 75.9)  // Central
	seedTicket(t, db, "water", 2, 21.1, 79.1)  // Vidarbha

	tickets, _, err := service.GetTickets(TicketFilter{Region: "Western"})
	require.NoError(t, err)
	assert.Len(t, tickets, 1)

	tickets, _, err = service.GetTickets(TicketFilter{Region: "vidarbha"})
	require.NoError(t, err)
	assert.Len(t, tickets, 1)
}

func TestGetTicketsInBoundsExcludesTerminal(t *testing.T) {
	service, db, _ := newTicketService(t)

	inside := seedTicket(t, db, "water", 2, 19.0, 72.9)
	seedTicket(t, db, "water", 2, 25.0, 80.0) // 界外
	cancelled := seedTicket(t, db, "water", 2, 19.1, 72.95)
	require.NoError(t, db.Model(cancelled).Update("status", models.TicketStatusCancelled).Error)

	tickets, err := service.GetTicketsInBounds(20.0, 18.0, 74.0, 72.0)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, inside.ID, tickets[0].ID)
}

func TestUpdateTicketWritesPerFieldHistory(t *testing.T) {
	service, db, _ := newTicketService(t)
	ticket := seedTicket(t, db, "water", 2, 19.0, 72.9)

	updated, err := service.UpdateTicket(ticket.ID, "operator", map[string]interface{}{
		"notes":    "family of four on rooftop",
		"priority": 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "family of four on rooftop", updated.Notes)
	assert.Equal(t, 4, updated.Priority)

	var updates []models.TicketUpdate
	require.NoError(t, db.Where("ticket_id = ?", ticket.ID).Order("field_name ASC").Find(&updates).Error)
	require.Len(t, updates, 2)

	assert.Equal(t, "notes", updates[0].FieldName)
	assert.Equal(t, "", updates[0].OldValue)
	assert.Equal(t, "family of four on rooftop", updates[0].NewValue)
	assert.Equal(t, "operator", updates[0].UpdatedBy)

	assert.Equal(t, "priority", updates[1].FieldName)
	assert.Equal(t, "3", updates[1].OldValue)
	assert.Equal(t, "4", updates[1].NewValue)
}

func TestUpdateTicketSkipsUnchangedAndUnknownFields(t *testing.T) {
	service, db, _ := newTicketService(t)
	ticket := seedTicket(t, db, "water", 2, 19.0, 72.9)

	_, err := service.UpdateTicket(ticket.ID, "operator", map[string]interface{}{
		"priority": 3,          // 与当前值相同
		"latitude": 20.0,       // 不在白名单内
		"category": "tampered", // 不在白名单内
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.TicketUpdate{}).Where("ticket_id = ?", ticket.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	reloaded, err := service.GetTicketByID(ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "water", reloaded.Category)
}

func TestUpdateTicketRejectsUnknownStatus(t *testing.T) {
	service, db, _ := newTicketService(t)
	ticket := seedTicket(t, db, "water", 2, 19.0, 72.9)

	_, err := service.UpdateTicket(ticket.ID, "operator", map[string]interface{}{
		"status": "Exploded",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateTicketRejectsTerminalState(t *testing.T) {
	service, db, _ := newTicketService(t)
	ticket := seedTicket(t, db, "water", 2, 19.0, 72.9)
	require.NoError(t, db.Model(ticket).Update("status", models.TicketStatusDone).Error)

	_, err := service.UpdateTicket(ticket.ID, "operator", map[string]interface{}{
		"notes": "too late",
	})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestDeleteTicket(t *testing.T) {
	service, db, _ := newTicketService(t)
	ticket := seedTicket(t, db, "water", 2, 19.0, 72.9)

	require.NoError(t, service.DeleteTicket(ticket.ID))

	_, err := service.GetTicketByID(ticket.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = service.DeleteTicket(ticket.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetTicketByIDNotFound(t *testing.T) {
	service, _, _ := newTicketService(t)

	_, err := service.GetTicketByID(12345)
	assert.ErrorIs(t, err, ErrNotFound)
}
