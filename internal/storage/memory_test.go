package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"vaxscreen/internal/candidate"
	"vaxscreen/internal/storage"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *storage.Memory
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = storage.NewMemory()
}

func (s *MemoryStoreSuite) TestRunRoundTrip() {
	ctx := context.Background()

	run := candidate.NewRun("Neisseria meningitidis", candidate.InputSearchTerm, "fHbp")
	s.Require().NoError(s.store.CreateRun(ctx, run))

	got, err := s.store.GetRun(ctx, run.ID)
	s.Require().NoError(err)
	s.Equal(run.ID, got.ID)
	s.Equal("Neisseria meningitidis", got.PathogenName)
}

func (s *MemoryStoreSuite) TestGetMissingRun() {
	run := candidate.NewRun("Influenza A", candidate.InputSingleID, "P03452")
	_, err := s.store.GetRun(context.Background(), run.ID)
	s.ErrorIs(err, storage.ErrNotFound)
}

func (s *MemoryStoreSuite) TestUpdateMissingRun() {
	run := candidate.NewRun("Influenza A", candidate.InputSingleID, "P03452")
	err := s.store.UpdateRun(context.Background(), run)
	s.ErrorIs(err, storage.ErrNotFound)
}

func (s *MemoryStoreSuite) TestSaveCandidateRequiresRun() {
	run := candidate.NewRun("Influenza A", candidate.InputSingleID, "P03452")
	c := candidate.New("P03452", "NP", "MASQGTKRSYEQM", "uniprot", candidate.StageAntigenScreening)
	err := s.store.SaveCandidate(context.Background(), run.ID, c)
	s.ErrorIs(err, storage.ErrNotFound)
}

func (s *MemoryStoreSuite) TestCandidateUpsertByProtein() {
	ctx := context.Background()

	run := candidate.NewRun("Borrelia burgdorferi", candidate.InputSearchTerm, "OspA")
	s.Require().NoError(s.store.CreateRun(ctx, run))

	c := candidate.New("P0CL66", "OspA", "MKKYLLGIGLILALIAC", "uniprot", candidate.StageAntigenScreening)
	s.Require().NoError(s.store.SaveCandidate(ctx, run.ID, c))

	c.Localization = candidate.LocOuterMembrane
	c.SurfaceScore = 1.0
	s.Require().NoError(s.store.SaveCandidate(ctx, run.ID, c))

	got, err := s.store.ListCandidates(ctx, run.ID)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(candidate.LocOuterMembrane, got[0].Localization)
}

func (s *MemoryStoreSuite) TestListPreservesInsertionOrder() {
	ctx := context.Background()

	run := candidate.NewRun("Plasmodium falciparum", candidate.InputSearchTerm, "CSP")
	s.Require().NoError(s.store.CreateRun(ctx, run))

	ids := []string{"P19597", "Q8I0U8", "A0A143ZZL3"}
	for _, proteinID := range ids {
		c := candidate.New(proteinID, proteinID, "MKNFILLA", "uniprot", candidate.StageAntigenScreening)
		s.Require().NoError(s.store.SaveCandidate(ctx, run.ID, c))
	}

	got, err := s.store.ListCandidates(ctx, run.ID)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	for i, proteinID := range ids {
		s.Equal(proteinID, got[i].ProteinID)
	}
}

func (s *MemoryStoreSuite) TestStoredStateIsIsolatedFromCaller() {
	ctx := context.Background()

	run := candidate.NewRun("SARS-CoV-2", candidate.InputSingleID, "P0DTC2")
	s.Require().NoError(s.store.CreateRun(ctx, run))

	c := candidate.New("P0DTC2", "Spike", "MFVFLVLLPLVSSQ", "uniprot", candidate.StageAntigenScreening)
	s.Require().NoError(s.store.SaveCandidate(ctx, run.ID, c))

	// Mutations after save must not leak into the store.
	c.AddFlag(candidate.FlagRepetitive)
	run.AddWarning("should not be visible")

	gotRun, err := s.store.GetRun(ctx, run.ID)
	s.Require().NoError(err)
	s.Empty(gotRun.Warnings)

	gotCands, err := s.store.ListCandidates(ctx, run.ID)
	s.Require().NoError(err)
	s.Require().Len(gotCands, 1)
	s.Empty(gotCands[0].Flags)
}
