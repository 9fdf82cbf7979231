package sequence_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"vaxscreen/internal/sequence"
)

// =============================================================================
// UniProt Client Test Suite
// =============================================================================

type UniProtClientSuite struct {
	suite.Suite
}

func TestUniProtClientSuite(t *testing.T) {
	suite.Run(t, new(UniProtClientSuite))
}

const spikeEntry = `{
	"primaryAccession": "P0DTC2",
	"uniProtkbId": "SPIKE_SARS2",
	"proteinDescription": {
		"recommendedName": {"fullName": {"value": "Spike glycoprotein"}}
	},
	"organism": {"scientificName": "Severe acute respiratory syndrome coronavirus 2"},
	"sequence": {"value": "MFVFLVLLPLVSSQ", "length": 14},
	"keywords": [{"name": "Virion"}, {"name": "Host membrane"}],
	"comments": [{
		"commentType": "SUBCELLULAR LOCATION",
		"subcellularLocations": [{"location": {"value": "Virion membrane"}}]
	}]
}`

func (s *UniProtClientSuite) TestFetchByID() {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/uniprotkb/P0DTC2.json", r.URL.Path)
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(spikeEntry))
	}))
	defer srv.Close()

	client := sequence.NewClient(sequence.ClientConfig{BaseURL: srv.URL})
	rec, err := client.FetchByID(context.Background(), "P0DTC2")

	s.Require().NoError(err)
	s.Equal("P0DTC2", rec.ProteinID)
	s.Equal("Spike glycoprotein", rec.Name)
	s.Equal("MFVFLVLLPLVSSQ", rec.Sequence)
	s.Equal(14, rec.Length)
	s.Equal("Severe acute respiratory syndrome coronavirus 2", rec.Organism)
	s.Equal("Virion membrane", rec.SubcellularLocation)
	s.Equal([]string{"Virion", "Host membrane"}, rec.Keywords)
	s.Equal(sequence.SourceUniProt, rec.Source)
	s.NotEmpty(gotAgent)
}

func (s *UniProtClientSuite) TestFetchUnknownAccessionIsNotFound() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := sequence.NewClient(sequence.ClientConfig{BaseURL: srv.URL})
	_, err := client.FetchByID(context.Background(), "NOPE99")

	s.Require().Error(err)
	s.ErrorIs(err, sequence.ErrNotFound)
}

func (s *UniProtClientSuite) TestFetchServerError() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := sequence.NewClient(sequence.ClientConfig{BaseURL: srv.URL})
	_, err := client.FetchByID(context.Background(), "P0DTC2")

	s.Require().Error(err)
	s.Contains(err.Error(), "unexpected status")
}

func (s *UniProtClientSuite) TestFetchFallsBackOnMissingNames() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"primaryAccession": "X00001",
			"uniProtkbId": "X1_UNKWN",
			"sequence": {"value": "ACDEF", "length": 5}
		}`))
	}))
	defer srv.Close()

	client := sequence.NewClient(sequence.ClientConfig{BaseURL: srv.URL})
	rec, err := client.FetchByID(context.Background(), "X00001")

	s.Require().NoError(err)
	s.Equal("X1_UNKWN", rec.Name)
	s.Equal("Unknown organism", rec.Organism)
	s.Equal("Unknown", rec.SubcellularLocation)
}

func (s *UniProtClientSuite) TestSearchResolvesMatches() {
	var detailCalls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/uniprotkb/search" {
			s.Equal("spike coronavirus", r.URL.Query().Get("query"))
			s.Equal("3", r.URL.Query().Get("size"))
			_, _ = w.Write([]byte(`{"results": [
				{"primaryAccession": "P00001"},
				{"primaryAccession": "P00002"},
				{"primaryAccession": "P00003"}
			]}`))
			return
		}

		detailCalls.Add(1)
		acc := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/uniprotkb/"), ".json")
		_, _ = fmt.Fprintf(w, `{
			"primaryAccession": %q,
			"uniProtkbId": "%s_ORG",
			"sequence": {"value": "ACDEF", "length": 5}
		}`, acc, acc)
	}))
	defer srv.Close()

	client := sequence.NewClient(sequence.ClientConfig{BaseURL: srv.URL})
	records, err := client.Search(context.Background(), "spike coronavirus", 3)

	s.Require().NoError(err)
	s.Require().Len(records, 3)
	s.EqualValues(3, detailCalls.Load())
	// fan-out must preserve the search result order
	s.Equal("P00001", records[0].ProteinID)
	s.Equal("P00002", records[1].ProteinID)
	s.Equal("P00003", records[2].ProteinID)
}

func (s *UniProtClientSuite) TestSearchWithNoMatches() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	client := sequence.NewClient(sequence.ClientConfig{BaseURL: srv.URL})
	records, err := client.Search(context.Background(), "no such protein", 10)

	s.Require().NoError(err)
	s.Empty(records)
}

func (s *UniProtClientSuite) TestSearchFailsWhenDetailFetchFails() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/uniprotkb/search" {
			_, _ = w.Write([]byte(`{"results": [{"primaryAccession": "P00001"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := sequence.NewClient(sequence.ClientConfig{BaseURL: srv.URL})
	_, err := client.Search(context.Background(), "spike", 1)

	s.Require().Error(err)
	s.ErrorIs(err, sequence.ErrNotFound)
}
