package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/conquest-go/internal/model"
	"github.com/mcoot/conquest-go/internal/storage"
	"github.com/mcoot/conquest-go/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &StorageSuite{
		Suite: storagetest.Suite{New: func() storage.Storage { return New() }},
	})
}

func (s *StorageSuite) TestSavePlayerStoresCopy() {
	player := &model.Player{ID: "player-1", DisplayName: "Alice"}
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, player))

	player.DisplayName = "Mallory"

	retrieved, err := s.Storage.GetPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("Alice", retrieved.DisplayName)
}

func (s *StorageSuite) TestConcurrentCreateGameIDsAreUnique() {
	s.Require().NoError(s.Storage.CreateRegistry(s.Ctx, &model.Registry{}))
	s.Require().NoError(s.Storage.CreateProfile(s.Ctx, &model.PlayerProfile{Player: "alice"}))

	const n = 20
	ids := make(chan model.GameID, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := s.Storage.CreateGame(s.Ctx, "alice", func(id model.GameID, _ *model.PlayerProfile) (*model.Game, error) {
				return &model.Game{ID: id, Round: 1}, nil
			})
			if err == nil {
				ids <- g.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[model.GameID]bool)
	for id := range ids {
		s.False(seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	s.Len(seen, n)

	reg, err := s.Storage.GetRegistry(s.Ctx)
	s.Require().NoError(err)
	s.Equal(uint32(n), reg.GameCount)
}
