package services

import (
	"testing"

	"resq-http-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScoring() *ScoringService {
	return NewScoringService(NewGeoService(), newTestConfig())
}

func floatPtr(v float64) *float64 { return &v }

func testTicket(category string) *models.EmergencyTicket {
	return &models.EmergencyTicket{
		ID:        1,
		Category:  category,
		Latitude:  19.0760,
		Longitude: 72.8777,
		People:    5,
	}
}

func TestScoreOrganizationCompositeWeights(t *testing.T) {
	scoring := newTestScoring()
	ticket := &models.EmergencyTicket{
		ID:        1,
		Category:  "Medical Emergency",
		Latitude:  19.0760,
		Longitude: 72.8750,
		People:    5,
	}

	// 距离0：0.4*100=40；容量(100-20)/100：0.3*80=24；类别命中：0.3*100=30
	org := models.Organization{ID: 1, Capacity: 100, CurrentLoad: 20,
		Latitude: floatPtr(19.0760), Longitude: floatPtr(72.8750), Category: "Medical"}
	score, err := scoring.ScoreOrganization(ticket, &org)
	require.NoError(t, err)
	assert.InDelta(t, 94.0, score, 1e-9)

	best, bestScore, err := scoring.BestOrganization(ticket, []models.Organization{org})
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.InDelta(t, 94.0, bestScore, 1e-9)

	// 容量为0、类别不命中时只剩距离项40和半分类别项15
	bare := models.Organization{ID: 2, Capacity: 0, CurrentLoad: 0,
		Latitude: floatPtr(19.0760), Longitude: floatPtr(72.8750), Category: "Logistics"}
	score, err = scoring.ScoreOrganization(ticket, &bare)
	require.NoError(t, err)
	assert.InDelta(t, 55.0, score, 1e-9)
}

func TestBestOrganizationPrefersCloser(t *testing.T) {
	scoring := newTestScoring()
	ticket := testTicket("needs rescue")

	near := models.Organization{ID: 1, Capacity: 10, CurrentLoad: 5,
		Latitude: floatPtr(19.08), Longitude: floatPtr(72.88), Category: "Emergency Response"}
	far := models.Organization{ID: 2, Capacity: 10, CurrentLoad: 5,
		Latitude: floatPtr(21.14), Longitude: floatPtr(79.08), Category: "Emergency Response"}

	best, score, err := scoring.BestOrganization(ticket, []models.Organization{far, near})
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, uint(1), best.ID)
	assert.Greater(t, score, 0.0)
}

func TestBestOrganizationPrefersMoreFreeCapacity(t *testing.T) {
	scoring := newTestScoring()
	ticket := testTicket("needs rescue")

	// 坐标和类别相同，只有剩余容量不同
	loaded := models.Organization{ID: 1, Capacity: 10, CurrentLoad: 9,
		Latitude: floatPtr(19.08), Longitude: floatPtr(72.88), Category: "Rescue"}
	free := models.Organization{ID: 2, Capacity: 10, CurrentLoad: 0,
		Latitude: floatPtr(19.08), Longitude: floatPtr(72.88), Category: "Rescue"}

	best, _, err := scoring.BestOrganization(ticket, []models.Organization{loaded, free})
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, uint(2), best.ID)
}

func TestBestOrganizationCategoryMatchBeatsPartial(t *testing.T) {
	scoring := newTestScoring()
	ticket := testTicket("medical emergency")

	mismatch := models.Organization{ID: 1, Capacity: 10, CurrentLoad: 0,
		Latitude: floatPtr(19.08), Longitude: floatPtr(72.88), Category: "Logistics"}
	match := models.Organization{ID: 2, Capacity: 10, CurrentLoad: 0,
		Latitude: floatPtr(19.08), Longitude: floatPtr(72.88), Category: "Medical"}

	best, _, err := scoring.BestOrganization(ticket, []models.Organization{mismatch, match})
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, uint(2), best.ID)
}

func TestBestOrganizationTieBreaksOnLowerID(t *testing.T) {
	scoring := newTestScoring()
	ticket := testTicket("needs rescue")

	a := models.Organization{ID: 7, Capacity: 10, CurrentLoad: 0,
		Latitude: floatPtr(19.08), Longitude: floatPtr(72.88), Category: "Rescue"}
	b := models.Organization{ID: 3, Capacity: 10, CurrentLoad: 0,
		Latitude: floatPtr(19.08), Longitude: floatPtr(72.88), Category: "Rescue"}

	// 完全相同的得分，结果必须确定且取ID最小者
	best, _, err := scoring.BestOrganization(ticket, []models.Organization{a, b})
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, uint(3), best.ID)

	best, _, err = scoring.BestOrganization(ticket, []models.Organization{b, a})
	require.NoError(t, err)
	assert.Equal(t, uint(3), best.ID)
}

func TestBestOrganizationEmptySetReturnsNil(t *testing.T) {
	scoring := newTestScoring()

	best, score, err := scoring.BestOrganization(testTicket("fire"), nil)
	require.NoError(t, err)
	assert.Nil(t, best)
	assert.Equal(t, 0.0, score)
}

func TestBestOrganizationFallsBackToDefaultCoords(t *testing.T) {
	scoring := newTestScoring()
	ticket := testTicket("needs rescue")

	// 没有坐标的机构按默认调度中心坐标参与排名，不报错
	noCoords := models.Organization{ID: 1, Capacity: 10, CurrentLoad: 0, Category: "Rescue"}
	best, score, err := scoring.BestOrganization(ticket, []models.Organization{noCoords})
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Greater(t, score, 0.0)
}

func TestBestStaffPrefersSkillMatch(t *testing.T) {
	scoring := newTestScoring()
	ticket := testTicket("medical emergency")

	unskilled := models.Staff{ID: 1, Skills: "logistics",
		Latitude: floatPtr(19.08), Longitude: floatPtr(72.88)}
	medic := models.Staff{ID: 2, Skills: "medical,first aid",
		Latitude: floatPtr(19.08), Longitude: floatPtr(72.88)}

	best, _, err := scoring.BestStaff(ticket, []models.Staff{unskilled, medic})
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, uint(2), best.ID)
}

func TestBestStaffDistanceDominates(t *testing.T) {
	scoring := newTestScoring()
	ticket := testTicket("needs rescue")

	// 技能都匹配时距离近者胜出
	near := models.Staff{ID: 1, Skills: "rescue",
		Latitude: floatPtr(19.08), Longitude: floatPtr(72.88)}
	far := models.Staff{ID: 2, Skills: "rescue",
		Latitude: floatPtr(21.14), Longitude: floatPtr(79.08)}

	best, _, err := scoring.BestStaff(ticket, []models.Staff{far, near})
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, uint(1), best.ID)
}

func TestBestDivisionCapacityAndType(t *testing.T) {
	scoring := newTestScoring()
	ticket := testTicket("medical emergency")

	full := models.Division{ID: 1, Type: "Medical", Capacity: 10, CurrentLoad: 10}
	free := models.Division{ID: 2, Type: "Medical", Capacity: 10, CurrentLoad: 0}

	best, _, err := scoring.BestDivision(ticket, []models.Division{full, free})
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, uint(2), best.ID)
}

func TestScoringDeterministic(t *testing.T) {
	scoring := newTestScoring()
	ticket := testTicket("needs rescue")
	org := models.Organization{ID: 1, Capacity: 8, CurrentLoad: 3,
		Latitude: floatPtr(19.2), Longitude: floatPtr(73.0), Category: "Rescue"}

	first, err := scoring.ScoreOrganization(ticket, &org)
	require.NoError(t, err)
	second, err := scoring.ScoreOrganization(ticket, &org)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
