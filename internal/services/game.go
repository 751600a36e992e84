package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kdabb05/llmud/pkg/actor"
	"github.com/kdabb05/llmud/pkg/dice"
	"github.com/kdabb05/llmud/pkg/gameerr"
	"github.com/kdabb05/llmud/pkg/lore"
	"github.com/kdabb05/llmud/pkg/scenario"
	"github.com/kdabb05/llmud/pkg/state"
	"github.com/kdabb05/llmud/pkg/storage"
	"github.com/kdabb05/llmud/pkg/svgmap"
)

// GameService implements the game operations on top of the document and
// world stores. Every call re-reads and re-writes the documents it touches.
// Callers serialize mutating calls on the same session.
type GameService struct {
	docs       storage.DocumentStore
	world      storage.WorldStore
	roller     *dice.Roller
	defaultMap string
	logger     *slog.Logger
}

// NewGameService creates a GameService. New sessions start on defaultMap.
func NewGameService(docs storage.DocumentStore, world storage.WorldStore, roller *dice.Roller, defaultMap string, logger *slog.Logger) *GameService {
	if roller == nil {
		roller = dice.NewRoller()
	}
	return &GameService{
		docs:       docs,
		world:      world,
		roller:     roller,
		defaultMap: defaultMap,
		logger:     logger,
	}
}

// SessionCreated is the result of CreateSession.
type SessionCreated struct {
	SessionID    string      `json:"session_id"`
	Character    actor.Sheet `json:"character"`
	StartingRoom string      `json:"starting_room"`
}

// MapView is a room view plus its rendered diagram.
type MapView struct {
	state.View
	Diagram string `json:"diagram"`
}

// Ping checks the document store.
func (s *GameService) Ping(ctx context.Context) error {
	return s.docs.Ping(ctx)
}

// CreateSession creates a session with one character at the default map's
// starting room. A failed creation leaves nothing behind.
func (s *GameService) CreateSession(ctx context.Context, sessionID, characterName string) (*SessionCreated, error) {
	if err := state.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	characterName = strings.TrimSpace(characterName)
	if characterName == "" {
		return nil, gameerr.New(gameerr.KindMalformed, "Character name cannot be empty",
			"Provide a name for your character")
	}

	exists, err := s.docs.SessionExists(ctx, sessionID)
	if err != nil {
		s.logger.Error("Failed to check session", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if exists {
		return nil, gameerr.New(gameerr.KindAlreadyExists,
			fmt.Sprintf("Session '%s' already exists", sessionID),
			"Choose a different session ID, or continue the existing session")
	}

	m, err := s.loadMap(ctx, s.defaultMap)
	if err != nil {
		return nil, err
	}
	if _, ok := m.Room(m.StartingRoom); !ok {
		return nil, gameerr.New(gameerr.KindCorruptMap,
			fmt.Sprintf("Starting room '%s' not found in map '%s'", m.StartingRoom, m.Name),
			"Map data is corrupted; report this to the game author")
	}

	sheet := actor.NewSheet(characterName)
	st := state.NewSessionState(sessionID, m, characterName)

	if err := s.createDocuments(ctx, sessionID, sheet, st); err != nil {
		if rbErr := s.docs.DeleteSession(ctx, sessionID); rbErr != nil {
			s.logger.Error("Failed to roll back session", "session_id", sessionID, "error", rbErr)
		}
		return nil, err
	}

	s.logger.Info("Session created", "session_id", sessionID, "character", characterName, "map", m.Name)
	return &SessionCreated{
		SessionID:    sessionID,
		Character:    sheet,
		StartingRoom: st.CurrentRoom,
	}, nil
}

func (s *GameService) createDocuments(ctx context.Context, sessionID string, sheet actor.Sheet, st *state.SessionState) error {
	if err := s.saveSheet(ctx, sessionID, sheet.Name(), sheet); err != nil {
		return err
	}
	return s.saveState(ctx, st)
}

// GetSessionState returns the stored session state.
func (s *GameService) GetSessionState(ctx context.Context, sessionID string) (*state.SessionState, error) {
	if err := state.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	return s.loadState(ctx, sessionID)
}

// ReadCharacter returns a character sheet. Names match the way CreateSession
// stores them, with surrounding whitespace trimmed.
func (s *GameService) ReadCharacter(ctx context.Context, sessionID, characterName string) (actor.Sheet, error) {
	if err := state.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	characterName = strings.TrimSpace(characterName)
	return s.loadSheet(ctx, sessionID, characterName)
}

// UpdateCharacter applies update directives in order and persists the sheet.
// On any failure the stored sheet is unchanged.
func (s *GameService) UpdateCharacter(ctx context.Context, sessionID, characterName string, updates actor.Updates) (actor.Sheet, error) {
	if err := state.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	characterName = strings.TrimSpace(characterName)
	sheet, err := s.loadSheet(ctx, sessionID, characterName)
	if err != nil {
		return nil, err
	}

	updated, err := sheet.Update(updates)
	if err != nil {
		s.logger.Debug("Character update rejected",
			"session_id", sessionID, "character", characterName, "kind", gameerr.KindOf(err), "error", err)
		return nil, err
	}

	if err := s.saveSheet(ctx, sessionID, characterName, updated); err != nil {
		return nil, err
	}
	s.logger.Debug("Character updated", "session_id", sessionID, "character", characterName, "directives", len(updates))
	return updated, nil
}

// GetCurrentMap returns the current room view and diagram without changing
// the session.
func (s *GameService) GetCurrentMap(ctx context.Context, sessionID string) (*MapView, error) {
	if err := state.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	st, err := s.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	m, err := s.loadMap(ctx, st.CurrentMap)
	if err != nil {
		return nil, err
	}
	view, err := st.CurrentView(m)
	if err != nil {
		return nil, err
	}
	return s.withDiagram(ctx, m, view)
}

// MoveCharacter moves the session through an exit of the current room.
func (s *GameService) MoveCharacter(ctx context.Context, sessionID, direction string) (*MapView, error) {
	if err := state.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	st, err := s.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	m, err := s.loadMap(ctx, st.CurrentMap)
	if err != nil {
		return nil, err
	}

	from := st.CurrentRoom
	view, err := st.Move(m, direction)
	if err != nil {
		if gameerr.KindOf(err) == gameerr.KindCorruptMap {
			s.logger.Error("Broken exit in map", "session_id", sessionID, "map", m.Name, "room", from, "error", err)
		}
		return nil, err
	}

	if err := s.saveState(ctx, st); err != nil {
		return nil, err
	}
	s.logger.Info("Character moved",
		"session_id", sessionID, "from", from, "to", st.CurrentRoom, "turn", st.TurnCount)
	return s.withDiagram(ctx, m, view)
}

// DeleteSession removes a session and all its characters.
func (s *GameService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := state.ValidateSessionID(sessionID); err != nil {
		return err
	}
	exists, err := s.docs.SessionExists(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if !exists {
		return sessionNotFound(sessionID)
	}
	if err := s.docs.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.logger.Info("Session deleted", "session_id", sessionID)
	return nil
}

// RollDice rolls dice in NdS+M notation.
func (s *GameService) RollDice(notation string) (dice.Result, error) {
	res, err := s.roller.RollNotation(notation)
	if err != nil {
		return dice.Result{}, gameerr.Wrap(gameerr.KindMalformed, err,
			fmt.Sprintf("Invalid dice notation '%s'", notation),
			"Use NdS or NdS+M, e.g. '1d20', '2d6+3', 'd8-1' (1-100 dice, 2-1000 sides)")
	}
	return res, nil
}

// Lore returns a lore collection.
func (s *GameService) Lore(ctx context.Context, category lore.Category) (lore.Collection, error) {
	c, err := s.world.GetLore(ctx, category)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, gameerr.Wrap(gameerr.KindNotFound, err,
				fmt.Sprintf("No %s data available", category),
				"World data is missing; check the data directory")
		}
		s.logger.Error("Failed to load lore", "category", category, "error", err)
		return nil, fmt.Errorf("failed to load lore: %w", err)
	}
	return c, nil
}

func (s *GameService) withDiagram(ctx context.Context, m *scenario.Map, view state.View) (*MapView, error) {
	layout, err := s.world.GetLayout(ctx, m.Name)
	if err != nil {
		s.logger.Error("Failed to load layout", "map", m.Name, "error", err)
		return nil, fmt.Errorf("failed to load layout: %w", err)
	}
	return &MapView{
		View:    view,
		Diagram: svgmap.RenderMap(m, view.CurrentRoom, layout),
	}, nil
}

func sessionNotFound(sessionID string) error {
	return gameerr.New(gameerr.KindNotFound,
		fmt.Sprintf("Session '%s' not found", sessionID),
		"Create a session first with create_session")
}

func (s *GameService) loadState(ctx context.Context, sessionID string) (*state.SessionState, error) {
	data, err := s.docs.Get(ctx, storage.StateKey(sessionID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, sessionNotFound(sessionID)
		}
		s.logger.Error("Failed to load session state", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("failed to load session state: %w", err)
	}
	st, err := state.DecodeSessionState(data)
	if err != nil {
		s.logger.Error("Stored session state is unreadable", "session_id", sessionID, "error", err)
		return nil, err
	}
	return st, nil
}

func (s *GameService) saveState(ctx context.Context, st *state.SessionState) error {
	data, err := st.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	if err := s.docs.Put(ctx, storage.StateKey(st.SessionID), data); err != nil {
		s.logger.Error("Failed to save session state", "session_id", st.SessionID, "error", err)
		return fmt.Errorf("failed to save session state: %w", err)
	}
	return nil
}

func (s *GameService) loadSheet(ctx context.Context, sessionID, characterName string) (actor.Sheet, error) {
	if characterName == "" {
		return nil, gameerr.New(gameerr.KindMalformed, "Character name cannot be empty",
			"Provide the character's name")
	}

	data, err := s.docs.Get(ctx, storage.CharacterKey(sessionID, characterName))
	if err == nil {
		sheet, err := actor.DecodeSheet(data)
		if err != nil {
			s.logger.Error("Stored character is unreadable",
				"session_id", sessionID, "character", characterName, "error", err)
			return nil, err
		}
		return sheet, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		s.logger.Error("Failed to load character", "session_id", sessionID, "character", characterName, "error", err)
		return nil, fmt.Errorf("failed to load character: %w", err)
	}

	exists, existsErr := s.docs.SessionExists(ctx, sessionID)
	if existsErr != nil {
		return nil, fmt.Errorf("failed to check session: %w", existsErr)
	}
	if !exists {
		return nil, sessionNotFound(sessionID)
	}

	hint := "Check the character name"
	if st, stErr := s.loadState(ctx, sessionID); stErr == nil && len(st.Characters) > 0 {
		hint = "Characters in this session: " + strings.Join(st.Characters, ", ")
	}
	return nil, gameerr.New(gameerr.KindNotFound,
		fmt.Sprintf("Character '%s' not found in session '%s'", characterName, sessionID), hint)
}

func (s *GameService) saveSheet(ctx context.Context, sessionID, characterName string, sheet actor.Sheet) error {
	data, err := sheet.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode character: %w", err)
	}
	if err := s.docs.Put(ctx, storage.CharacterKey(sessionID, characterName), data); err != nil {
		s.logger.Error("Failed to save character", "session_id", sessionID, "character", characterName, "error", err)
		return fmt.Errorf("failed to save character: %w", err)
	}
	return nil
}

func (s *GameService) loadMap(ctx context.Context, name string) (*scenario.Map, error) {
	m, err := s.world.GetMap(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, gameerr.Wrap(gameerr.KindNotFound, err,
				fmt.Sprintf("Map '%s' not found", name),
				"World data is missing; check the data directory")
		}
		s.logger.Error("Failed to load map", "map", name, "error", err)
		return nil, fmt.Errorf("failed to load map: %w", err)
	}
	return m, nil
}
