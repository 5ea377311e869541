package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/applicant-intake/internal/airtable"
)

func newAirtableTestStore(t *testing.T, handler http.HandlerFunc) *AirtableStore {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := airtable.NewClient("key123", "appBASE", &airtable.Options{BaseURL: server.URL})
	require.NoError(t, err)
	return NewAirtableStore(client)
}

func writeRecord(w http.ResponseWriter, rec airtable.Record) {
	_ = json.NewEncoder(w).Encode(rec)
}

func writeRecords(w http.ResponseWriter, recs ...airtable.Record) {
	_ = json.NewEncoder(w).Encode(map[string]any{"records": recs})
}

func TestAirtableStore_GetApplicant(t *testing.T) {
	s := newAirtableTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/appBASE/Applicants/rec001", r.URL.Path)
		writeRecord(w, airtable.Record{
			ID: "rec001",
			Fields: map[string]any{
				"Compressed JSON":  `{"personal":{}}`,
				"Shortlist Status": "Shortlisted",
				"LLM Summary":      "Solid candidate",
				"LLM Score":        float64(8),
				"LLM Issues":       "None",
				"LLM Follow-Ups":   "- When can you start?",
			},
		})
	})

	applicant, err := s.GetApplicant(context.Background(), "rec001")
	require.NoError(t, err)
	assert.Equal(t, "rec001", applicant.ID)
	assert.Equal(t, `{"personal":{}}`, applicant.CompressedJSON)
	assert.Equal(t, StatusShortlisted, applicant.ShortlistStatus)
	require.NotNil(t, applicant.LLMScore)
	assert.Equal(t, 8, *applicant.LLMScore)
}

func TestAirtableStore_GetApplicant_Defaults(t *testing.T) {
	s := newAirtableTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		writeRecord(w, airtable.Record{ID: "rec002", Fields: map[string]any{}})
	})

	applicant, err := s.GetApplicant(context.Background(), "rec002")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, applicant.ShortlistStatus, "missing status defaults to pending")
	assert.Nil(t, applicant.LLMScore)
	assert.Empty(t, applicant.CompressedJSON)
}

func TestAirtableStore_GetApplicant_NotFound(t *testing.T) {
	s := newAirtableTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"type": "NOT_FOUND", "message": "missing"}}`))
	})

	_, err := s.GetApplicant(context.Background(), "recMISSING")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, TableApplicants, notFoundErr.Collection)
	assert.Equal(t, "recMISSING", notFoundErr.ID)
}

func TestAirtableStore_GetApplicant_ServerErrorIsTransport(t *testing.T) {
	s := newAirtableTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error": {"message": "upstream down"}}`))
	})

	_, err := s.GetApplicant(context.Background(), "rec001")
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestAirtableStore_GetPersonalDetails_UsesLinkFormula(t *testing.T) {
	s := newAirtableTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "{Applicant ID} = 'rec001'", r.URL.Query().Get("filterByFormula"))
		writeRecords(w, airtable.Record{
			ID: "pd001",
			Fields: map[string]any{
				"Full Name": "Ada Lovelace",
				"Email":     "ada@example.com",
				"Location":  "UK",
			},
		})
	})

	rec, err := s.GetPersonalDetails(context.Background(), "rec001")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "pd001", rec.ID)
	assert.Equal(t, "rec001", rec.ApplicantID)
	assert.Equal(t, "Ada Lovelace", rec.FullName)
}

func TestAirtableStore_GetPersonalDetails_AbsentIsNil(t *testing.T) {
	s := newAirtableTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		writeRecords(w)
	})

	rec, err := s.GetPersonalDetails(context.Background(), "rec001")
	require.NoError(t, err)
	assert.Nil(t, rec, "a missing one-to-one record is nil, not an error")
}

func TestAirtableStore_SaveEnrichment(t *testing.T) {
	tests := []struct {
		name      string
		score     *int
		wantScore any
	}{
		{name: "score present", score: intPtr(7), wantScore: float64(7)},
		{name: "score absent clears field", score: nil, wantScore: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured map[string]any
			s := newAirtableTestStore(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPatch, r.Method)
				var body struct {
					Fields map[string]any `json:"fields"`
				}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				captured = body.Fields
				writeRecord(w, airtable.Record{ID: "rec001", Fields: body.Fields})
			})

			err := s.SaveEnrichment(context.Background(), "rec001", EnrichmentFields{
				Summary: "Good fit", Score: tt.score, Issues: "None", FollowUps: "- Q1",
			})
			require.NoError(t, err)

			assert.Equal(t, "Good fit", captured["LLM Summary"])
			assert.Equal(t, tt.wantScore, captured["LLM Score"])
		})
	}
}

func TestAirtableStore_SalaryPreferenceNumericFields(t *testing.T) {
	s := newAirtableTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		writeRecords(w, airtable.Record{
			ID: "sp001",
			Fields: map[string]any{
				"Preferred Rate":        float64(95),
				"Minimum Rate":          float64(80),
				"Currency":              "USD",
				"Availability (hrs/wk)": float64(30),
			},
		})
	})

	rec, err := s.GetSalaryPreference(context.Background(), "rec001")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 95.0, rec.PreferredRate)
	assert.Equal(t, 30.0, rec.Availability)
}

func TestAirtableStore_CreateShortlistedLead(t *testing.T) {
	var captured map[string]any
	s := newAirtableTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Fields map[string]any `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		captured = body.Fields
		writeRecord(w, airtable.Record{ID: "sl001", Fields: body.Fields})
	})

	lead, err := s.CreateShortlistedLead(context.Background(), ShortlistedLead{
		ApplicantID:    "rec001",
		CompressedJSON: `{"personal":{}}`,
		ScoreReason:    "Experience: passed",
	})
	require.NoError(t, err)
	assert.Equal(t, "sl001", lead.ID)
	assert.False(t, lead.CreatedAt.IsZero())

	assert.Equal(t, []any{"rec001"}, captured["Applicant"], "lead links back to the applicant record")
	assert.Equal(t, "Experience: passed", captured["Score Reason"])
}

func TestAirtableStore_WriteRejectionIsWriteError(t *testing.T) {
	s := newAirtableTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error": {"type": "INVALID_VALUE_FOR_COLUMN", "message": "bad field"}}`))
	})

	err := s.SaveCompressedJSON(context.Background(), "rec001", "{}")
	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, TableApplicants, writeErr.Collection)
}

func intPtr(v int) *int { return &v }
