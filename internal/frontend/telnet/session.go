package telnet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dkessler/fableforge/internal/game/engine"
)

const banner = `
  .-.      .            .
 (  _)_.._ | |._ .-,._ _|_ _ .._ _  .-,
  )  (_)(_)| |(/_ )(_)  | (_)| (_|(/_
 (_)                 '        _|
`

const helpText = `Commands:
  explore           return to the current scene (or open a new one)
  new               abandon the scene and strike out somewhere fresh
  stats             show your character sheet
  inventory         show your belongings
  help              this text
  quit              leave the game

Anything else is taken as an action in the story. In battle, your
words are your attack.`

// Session handles one connected player: the name handshake followed by the
// command loop. It is safe for the acceptor to share one Session across
// connections.
type Session struct {
	engine *engine.Engine
	logger *zap.Logger
}

// NewSession creates a session handler backed by the given engine.
//
// Precondition: eng and logger must be non-nil.
func NewSession(eng *engine.Engine, logger *zap.Logger) *Session {
	return &Session{engine: eng, logger: logger}
}

// HandleSession runs the interactive loop for a single connection until the
// player quits, the connection drops, or ctx is cancelled.
func (s *Session) HandleSession(ctx context.Context, conn *Conn) error {
	start := time.Now()

	_ = conn.WriteLine(Colorize(BrightCyan, banner))
	_ = conn.WriteLine("The fire crackles. The story waits.")
	_ = conn.WriteLine("")

	playerID, name, err := s.handshake(conn)
	if err != nil {
		return err
	}

	char, err := s.engine.Character(ctx, playerID)
	switch {
	case errors.Is(err, engine.ErrCharacterNotFound):
		char, err = s.engine.CreateCharacter(ctx, playerID, name)
		if err != nil {
			return fmt.Errorf("creating character: %w", err)
		}
		_ = conn.WriteLine(Colorf(BrightGreen, "A new tale begins for %s.", char.Name))
		s.writeCharacter(conn, char)
		items, invErr := s.engine.Inventory(ctx, playerID)
		if invErr == nil {
			s.writeInventory(conn, items)
		}
	case err != nil:
		return fmt.Errorf("loading character: %w", err)
	default:
		_ = conn.WriteLine(Colorf(BrightGreen, "Welcome back, %s.", char.Name))
		s.writeCharacter(conn, char)
	}

	_ = conn.WriteLine("")
	_ = conn.WriteLine(Colorize(Dim, `Type "explore" to enter the story, or "help" for commands.`))

	s.logger.Info("player session started",
		zap.String("player_id", playerID),
		zap.String("remote_addr", conn.RemoteAddr().String()),
	)

	err = s.commandLoop(ctx, conn, playerID)
	s.logger.Info("player session ended",
		zap.String("player_id", playerID),
		zap.Duration("duration", time.Since(start)),
	)
	return err
}

// handshake prompts for the player's name and derives the player ID from it.
// The ID is the lowercased name, so "Yrsa" and "yrsa" are the same player.
func (s *Session) handshake(conn *Conn) (playerID, name string, err error) {
	for {
		_ = conn.WritePrompt("By what name are you known? ")
		line, err := conn.ReadLine()
		if err != nil {
			return "", "", err
		}
		name = strings.TrimSpace(line)
		if name == "" {
			_ = conn.WriteLine("Even a stray dog has a name. Try again.")
			continue
		}
		if len(name) > 64 {
			_ = conn.WriteLine("That name will not fit on any ledger. Something shorter.")
			continue
		}
		return strings.ToLower(name), name, nil
	}
}

func (s *Session) commandLoop(ctx context.Context, conn *Conn, playerID string) error {
	for {
		if ctx.Err() != nil {
			_ = conn.WriteLine("The server is going down. Your progress is saved.")
			return nil
		}

		_ = conn.WritePrompt(Colorize(BrightYellow, "> "))
		line, err := conn.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "quit", "exit":
			_ = conn.WriteLine("The story will keep. Farewell.")
			return nil
		case "help":
			_ = conn.WriteLine(helpText)
		case "stats":
			s.showStats(ctx, conn, playerID)
		case "inventory", "inv":
			s.showInventory(ctx, conn, playerID)
		case "explore":
			s.explore(ctx, conn, playerID, false)
		case "new":
			s.explore(ctx, conn, playerID, true)
		default:
			s.freeText(ctx, conn, playerID, input)
		}
	}
}

func (s *Session) showStats(ctx context.Context, conn *Conn, playerID string) {
	char, err := s.engine.Character(ctx, playerID)
	if err != nil {
		s.writeError(conn, playerID, "loading character", err)
		return
	}
	s.writeCharacter(conn, char)

	enemy, err := s.engine.ActiveBattle(ctx, playerID)
	if err == nil && enemy != nil {
		_ = conn.WriteLine(Colorf(BrightRed, "In battle with %s (%d/%d HP).",
			enemy.Name, displayHP(enemy.HP), enemy.MaxHP))
	}
}

func (s *Session) showInventory(ctx context.Context, conn *Conn, playerID string) {
	items, err := s.engine.Inventory(ctx, playerID)
	if err != nil {
		s.writeError(conn, playerID, "loading inventory", err)
		return
	}
	s.writeInventory(conn, items)
}

func (s *Session) explore(ctx context.Context, conn *Conn, playerID string, fresh bool) {
	res, err := s.engine.Explore(ctx, playerID, fresh)
	if err != nil {
		s.writeError(conn, playerID, "exploring", err)
		return
	}
	s.writeExplore(conn, res)
}

// freeText routes free input: an attack while a battle is active, an
// exploration action otherwise.
func (s *Session) freeText(ctx context.Context, conn *Conn, playerID, input string) {
	enemy, err := s.engine.ActiveBattle(ctx, playerID)
	if err != nil {
		s.writeError(conn, playerID, "checking battle", err)
		return
	}

	if enemy != nil {
		payload, err := s.engine.Attack(ctx, playerID, input)
		if err != nil {
			s.writeError(conn, playerID, "attacking", err)
			return
		}
		s.writeAttack(conn, payload)
		return
	}

	res, err := s.engine.Act(ctx, playerID, input)
	if errors.Is(err, engine.ErrNoActiveScene) {
		_ = conn.WriteLine(`You are nowhere yet. Type "explore" first.`)
		return
	}
	if err != nil {
		s.writeError(conn, playerID, "acting", err)
		return
	}
	s.writeExplore(conn, res)
}

func (s *Session) writeError(conn *Conn, playerID, op string, err error) {
	s.logger.Error("session command failed",
		zap.String("player_id", playerID),
		zap.String("operation", op),
		zap.Error(err),
	)
	_ = conn.WriteLine(Colorize(Red, "Something went wrong. Try again."))
}
