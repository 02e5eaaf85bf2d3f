package sgcarmart

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carlist-scraper/models"
	"carlist-scraper/utils"
)

const listingPage = `<html><head>
<script>window.analytics = {"success": true};</script>
<script>self.__next_f.push([1,"{\"success\":true,\"depreciation\":\"$9,870/yr\",` +
	`\"price\":\"$88,800\",\"Transmission\":\"Auto\",\"fuel_type\":\"Petrol\",` +
	`\"engine_capacity\":\"1,598 cc\",\"curb_weight\":\"1,290 kg\",\"power\":\"90.0 kW (121 bhp)\",` +
	`\"road_tax\":\"$742/yr\",\"deregistration_value\":\"$31,234 as of today\",\"coe\":\"$54,001\",` +
	`\"omv\":\"$18,123\",\"arf\":\"$18,372\",\"mileage\":\"52,000 km\",\"owners\":\"1\",` +
	`\"dealer\":\"Example Motors\",\"car_model\":\"Toyota Corolla Altis 1.6A\",` +
	`\"reg_date\":\"19-Jan-2016\",\"type_of_vehicle\":{\"text\":\"Mid-Sized Sedan\",\"id\":2},` +
	`\"detail\":{\"mileage\":\"51,500 km (as of today)\"},\"url\":\"https:\/\/www.sgcarmart.com\/x\"}"])</script>
</head><body></body></html>`

func quietLogger() *utils.Logger { return utils.NewLoggerTo(io.Discard, "error") }

func TestExtractFullListing(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(listingPage))
	}))
	defer srv.Close()

	ex := NewExtractor(5*time.Second, quietLogger())
	rec, err := ex.Extract(context.Background(), srv.URL+"/listing/1")
	require.NoError(t, err)

	assert.Contains(t, gotUA, "Mozilla/5.0")
	assert.Contains(t, gotAccept, "text/html")

	want := models.CarRecord{
		models.FieldPrice:               "88800",
		models.FieldTransmission:        "Auto",
		models.FieldFuelType:            "Petrol",
		models.FieldEngineCapacity:      "1598",
		models.FieldCurbWeight:          "1290",
		models.FieldPower:               "90.0",
		models.FieldRoadTax:             "742",
		models.FieldDeregistrationValue: "31234",
		models.FieldCOE:                 "54001",
		models.FieldOMV:                 "18123",
		models.FieldARF:                 "18372",
		models.FieldMileage:             "51500",
		models.FieldOwners:              "1",
		models.FieldDealer:              "Example Motors",
		models.FieldRegDate:             "19-Jan-2016",
		models.FieldCarModel:            "Toyota Corolla Altis 1.6A",
		models.FieldTypeOfVehicle:       "Mid-Sized Sedan",
		models.FieldURL:                 srv.URL + "/listing/1",
	}
	assert.Equal(t, want, rec)
	assert.True(t, rec.Complete())
}

func TestExtractNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	ex := NewExtractor(5*time.Second, quietLogger())
	rec, err := ex.Extract(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, utils.KindNetwork, utils.KindOf(err))
}

func TestExtractWithoutPayloadKeepsURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><script>var coe = 1;</script></html>`))
	}))
	defer srv.Close()

	ex := NewExtractor(5*time.Second, quietLogger())
	rec, err := ex.Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, models.CarRecord{models.FieldURL: srv.URL}, rec)
	assert.False(t, rec.Complete())
}

func TestFindPayloadPicksMarkedScript(t *testing.T) {
	html := `<script>success only</script><script>coe depreciation success here</script><script>coe depreciation success later</script>`
	payload, ok := FindPayload(html)
	require.True(t, ok)
	assert.Equal(t, "coe depreciation success here", payload)

	_, ok = FindPayload(`<script>coe and depreciation</script>`)
	assert.False(t, ok)
}

func TestParseListingMatchesExtract(t *testing.T) {
	rec := ParseListing("https://example.com/a", listingPage)
	assert.Equal(t, "Mid-Sized Sedan", rec.Get(models.FieldTypeOfVehicle))
	assert.Equal(t, "https://example.com/a", rec.URL())
}
