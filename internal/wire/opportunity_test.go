package wire

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyaboveme/yourgency/internal/models"
)

func TestDealFields_MatchStructs(t *testing.T) {
	wireType := reflect.TypeOf(Opportunity{})
	modelType := reflect.TypeOf(models.Deal{})

	require.Equal(t, wireType.NumField(), len(DealFields))
	require.Equal(t, modelType.NumField(), len(DealFields))

	for _, f := range DealFields {
		wf, ok := wireType.FieldByName(f.Model)
		require.Truef(t, ok, "wire struct lacks %s", f.Model)
		tag := strings.Split(wf.Tag.Get("json"), ",")[0]
		assert.Equal(t, f.Wire, tag, "json tag of %s", f.Model)

		_, ok = modelType.FieldByName(f.Model)
		assert.Truef(t, ok, "models.Deal lacks %s", f.Model)
	}
}

func TestToDeal_NormalisesStage(t *testing.T) {
	d, err := ToDeal(Opportunity{ID: "1", Stage: "prospect"})
	require.NoError(t, err)
	assert.Equal(t, models.StageProspect, d.Stage)
}

func TestToDeal_UnknownStage(t *testing.T) {
	_, err := ToDeal(Opportunity{ID: "1", Stage: "WON"})
	var verr *models.ErrValidation
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "stage", verr.Field)
}

func TestRoundTrip_PreservesEveryField(t *testing.T) {
	last := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	in := models.Deal{
		ID: "d1", AccountID: "a1", PrimaryContactID: "c1",
		CompanyName: "Acme HVAC", ContactName: "Jo", Email: "jo@acme.test",
		Phone: "555", Website: "acme.test", Industry: "HVAC", RevenueRange: "$1M-$5M",
		Stage: models.StageEngaged, Notes: "n", AssignedTo: "u1", AssignedToName: "Sam",
		Score:       &models.LeadScore{Fit: 8, Need: 7, Timing: 6, Readiness: 5, Composite: 66, Rationale: "ok"},
		LastContact: &last, CreatedAt: last.Add(-time.Hour),
	}

	out, err := ToDeal(FromDeal(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestToDeals_FailsWholeBatch(t *testing.T) {
	_, err := ToDeals([]Opportunity{{ID: "1", Stage: "PROSPECT"}, {ID: "2", Stage: "???"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `id="2"`)
}
