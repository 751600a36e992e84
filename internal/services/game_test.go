package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdabb05/llmud/pkg/actor"
	"github.com/kdabb05/llmud/pkg/dice"
	"github.com/kdabb05/llmud/pkg/gameerr"
	"github.com/kdabb05/llmud/pkg/lore"
	"github.com/kdabb05/llmud/pkg/scenario"
	"github.com/kdabb05/llmud/pkg/storage"
)

func testMap() *scenario.Map {
	return &scenario.Map{
		Name:         "village",
		StartingRoom: "tavern",
		Rooms: map[string]scenario.Room{
			"tavern": {Description: "A warm tavern.", Exits: map[string]string{"east": "street", "down": "cellar"}},
			"cellar": {Description: "Barrels.", Exits: map[string]string{"up": "tavern"}},
			"street": {Description: "A muddy street.", Exits: map[string]string{"west": "tavern", "north": "ruins"}},
		},
	}
}

func newTestService(t *testing.T) (*GameService, *storage.MemoryStorage) {
	t.Helper()
	store := storage.NewMemoryStorage()
	store.AddMap(testMap())
	store.SetLayout("village", scenario.Layout{
		"tavern": {X: 0, Y: 0},
		"cellar": {X: 0, Y: 0, Level: -1},
		"street": {X: 1, Y: 0},
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewGameService(store, store, dice.NewSeededRoller(7), "village", logger), store
}

func TestGameService_EndToEnd(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, "s1", "Hero")
	require.NoError(t, err)
	assert.Equal(t, "tavern", created.StartingRoom)
	assert.Equal(t, 15, created.Character.Gold())
	hp, _ := created.Character.Stat("hp")
	maxHP, _ := created.Character.Stat("max_hp")
	assert.Equal(t, 20, hp)
	assert.Equal(t, 20, maxHP)
	assert.Equal(t, []string{"torch", "rope", "dagger"}, created.Character.Inventory())

	sheet, err := svc.UpdateCharacter(ctx, "s1", "Hero", actor.Updates{{Key: "gold", Value: "-5"}})
	require.NoError(t, err)
	assert.Equal(t, 10, sheet.Gold())

	_, err = svc.UpdateCharacter(ctx, "s1", "Hero", actor.Updates{{Key: "gold", Value: "-100"}})
	assert.True(t, errors.Is(err, gameerr.InsufficientFunds), "got %v", err)
	stored, err := svc.ReadCharacter(ctx, "s1", "Hero")
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Gold())

	_, err = svc.MoveCharacter(ctx, "s1", "north")
	require.True(t, errors.Is(err, gameerr.NoSuchExit), "got %v", err)
	assert.Equal(t, []string{"down", "east"}, gameerr.As(err).ValidExits)

	st, err := svc.GetSessionState(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, st.TurnCount)
	assert.Equal(t, "tavern", st.CurrentRoom)
}

func TestGameService_CreateSessionErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateSession(ctx, "", "Hero")
	assert.Equal(t, gameerr.KindMalformed, gameerr.KindOf(err))

	_, err = svc.CreateSession(ctx, "bad-id!", "Hero")
	assert.Equal(t, gameerr.KindMalformed, gameerr.KindOf(err))

	_, err = svc.CreateSession(ctx, "s1", "   ")
	assert.Equal(t, gameerr.KindMalformed, gameerr.KindOf(err))

	_, err = svc.CreateSession(ctx, "s1", "Hero")
	require.NoError(t, err)
	_, err = svc.CreateSession(ctx, "s1", "Other")
	assert.Equal(t, gameerr.KindAlreadyExists, gameerr.KindOf(err))
	assert.NotEmpty(t, gameerr.As(err).Hint)
}

func TestGameService_CreateSessionRollback(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	store.FailPut(storage.ResourceState, errors.New("disk full"))
	_, err := svc.CreateSession(ctx, "s1", "Hero")
	require.Error(t, err)
	assert.Empty(t, store.Sessions(), "failed creation must leave no documents")

	store.FailPut(storage.ResourceState, nil)
	_, err = svc.CreateSession(ctx, "s1", "Hero")
	assert.NoError(t, err, "the id must be reusable after a rolled back creation")
}

func TestGameService_CreateSessionMissingMap(t *testing.T) {
	store := storage.NewMemoryStorage()
	svc := NewGameService(store, store, nil, "castle", slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := svc.CreateSession(context.Background(), "s1", "Hero")
	assert.Equal(t, gameerr.KindNotFound, gameerr.KindOf(err))
	assert.Empty(t, store.Sessions())
}

func TestGameService_ReadCharacterErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ReadCharacter(ctx, "nope", "Hero")
	assert.Equal(t, gameerr.KindNotFound, gameerr.KindOf(err))
	assert.Contains(t, err.Error(), "Session 'nope' not found")

	_, err = svc.CreateSession(ctx, "s1", "Hero")
	require.NoError(t, err)
	_, err = svc.ReadCharacter(ctx, "s1", "Villain")
	require.Equal(t, gameerr.KindNotFound, gameerr.KindOf(err))
	assert.Contains(t, gameerr.As(err).Hint, "Hero")
}

func TestGameService_CharacterNamesAreTrimmed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, "s1", " Hero ")
	require.NoError(t, err)
	assert.Equal(t, "Hero", created.Character.Name())

	for _, name := range []string{" Hero ", "Hero", "\tHero\n"} {
		sheet, err := svc.ReadCharacter(ctx, "s1", name)
		require.NoError(t, err, "read %q", name)
		assert.Equal(t, "Hero", sheet.Name())
	}

	_, err = svc.UpdateCharacter(ctx, "s1", " Hero ", actor.Updates{{Key: "gold", Value: "+1"}})
	require.NoError(t, err)
	sheet, err := svc.ReadCharacter(ctx, "s1", "Hero")
	require.NoError(t, err)
	assert.Equal(t, 16, sheet.Gold())

	_, err = svc.ReadCharacter(ctx, "s1", "   ")
	assert.Equal(t, gameerr.KindMalformed, gameerr.KindOf(err))
}

func TestGameService_UpdateFailureLeavesSheet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateSession(ctx, "s1", "Hero")
	require.NoError(t, err)

	_, err = svc.UpdateCharacter(ctx, "s1", "Hero", actor.Updates{
		{Key: "inventory+", Value: "lantern"},
		{Key: "inventory-", Value: "sword"},
	})
	assert.Equal(t, gameerr.KindValueNotFound, gameerr.KindOf(err))

	sheet, err := svc.ReadCharacter(ctx, "s1", "Hero")
	require.NoError(t, err)
	assert.Equal(t, []string{"torch", "rope", "dagger"}, sheet.Inventory())
}

func TestGameService_UpdateClampsHP(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateSession(ctx, "s1", "Hero")
	require.NoError(t, err)

	sheet, err := svc.UpdateCharacter(ctx, "s1", "Hero", actor.Updates{{Key: "stats.hp", Value: "+50"}})
	require.NoError(t, err)
	hp, _ := sheet.Stat("hp")
	assert.Equal(t, 20, hp)
}

func TestGameService_Navigation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateSession(ctx, "s1", "Hero")
	require.NoError(t, err)

	view, err := svc.GetCurrentMap(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "tavern", view.CurrentRoom)
	assert.Equal(t, "A warm tavern.", view.Description)
	assert.True(t, strings.HasPrefix(view.Diagram, "<?xml"))

	view, err = svc.MoveCharacter(ctx, "s1", "  EAST ")
	require.NoError(t, err)
	assert.Equal(t, "street", view.CurrentRoom)
	assert.Equal(t, map[string]string{"west": "tavern", "north": "ruins"}, view.Exits)

	st, err := svc.GetSessionState(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, st.TurnCount)
	assert.Equal(t, "street", st.CurrentRoom)

	_, err = svc.MoveCharacter(ctx, "s1", "north")
	assert.Equal(t, gameerr.KindCorruptMap, gameerr.KindOf(err))
	st, err = svc.GetSessionState(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, st.TurnCount)
	assert.Equal(t, "street", st.CurrentRoom)
}

func TestGameService_DeleteSession(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateSession(ctx, "s1", "Hero")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(ctx, "s1"))
	assert.Empty(t, store.Sessions())

	err = svc.DeleteSession(ctx, "s1")
	assert.Equal(t, gameerr.KindNotFound, gameerr.KindOf(err))
}

func TestGameService_RollDice(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.RollDice("2d6+3")
	require.NoError(t, err)
	assert.Len(t, res.Rolls, 2)
	assert.Equal(t, res.Rolls[0]+res.Rolls[1]+3, res.Total)

	_, err = svc.RollDice("banana")
	assert.Equal(t, gameerr.KindMalformed, gameerr.KindOf(err))
	assert.Contains(t, gameerr.As(err).Hint, "2d6+3")
}

func TestGameService_Lore(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.Lore(ctx, lore.Creatures)
	assert.Equal(t, gameerr.KindNotFound, gameerr.KindOf(err))

	store.SetLore(lore.Creatures, lore.Collection{})
	c, err := svc.Lore(ctx, lore.Creatures)
	require.NoError(t, err)
	assert.Empty(t, c)
}
