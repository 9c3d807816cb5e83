// Package shell implements the interactive command loop of the client.
package shell

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nknight/playclient/internal/api"
	"github.com/nknight/playclient/internal/board"
	"github.com/nknight/playclient/internal/notation"
	"github.com/nknight/playclient/internal/session"
)

// Prompt is printed before each command when the shell is interactive.
const Prompt = "(nknight) "

// errQuit ends the loop.
var errQuit = errors.New("quit")

// Stages reported in user-visible failures.
const (
	stageRequest     = "request"
	stageDecode      = "decode"
	stageOrientation = "orientation"
	stageSession     = "session"
	stageUsage       = "usage"
)

type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.stage, e.err)
}

func (e *stageError) Unwrap() error {
	return e.err
}

func failed(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &stageError{stage: stage, err: err}
}

// Shell reads commands and drives the client.
type Shell struct {
	sess   *session.Context
	client *api.Client
	tr     *notation.Translator
	out    io.Writer
	log    *zap.Logger

	debug  bool
	prompt bool
}

// Option configures a Shell.
type Option func(*Shell)

// WithOutput sets where command output goes.
func WithOutput(w io.Writer) Option {
	return func(s *Shell) { s.out = w }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Shell) {
		if l != nil {
			s.log = l
		}
	}
}

// WithDebug starts the shell with JSON echo enabled.
func WithDebug(on bool) Option {
	return func(s *Shell) { s.debug = on }
}

// WithPrompt enables the interactive prompt.
func WithPrompt(on bool) Option {
	return func(s *Shell) { s.prompt = on }
}

// WithTranslator overrides the move translator.
func WithTranslator(tr *notation.Translator) Option {
	return func(s *Shell) { s.tr = tr }
}

// New creates a shell over a session and a server client.
func New(sess *session.Context, client *api.Client, opts ...Option) *Shell {
	s := &Shell{
		sess:   sess,
		client: client,
		tr:     notation.Default(),
		out:    io.Discard,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run reads commands from in until EOF, "quit" or ctx is done. Command
// failures are printed and do not stop the loop.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)

	for {
		if s.prompt {
			fmt.Fprint(s.out, Prompt)
		}
		if !scanner.Scan() {
			if s.prompt {
				fmt.Fprintln(s.out)
			}
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.Execute(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			var se *stageError
			if errors.As(err, &se) {
				s.log.Warn("command failed", zap.String("stage", se.stage), zap.Error(se.err))
			}
			fmt.Fprintln(s.out, err)
		}
	}
}

// Execute runs a single command line.
func (s *Shell) Execute(ctx context.Context, line string) error {
	line = strings.ToLower(strings.TrimSpace(line))
	if line == "" {
		return nil
	}

	parts := strings.Fields(line)
	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "new":
		return s.handleNew(ctx, args)
	case "show":
		return s.handleShow(ctx, args)
	case "play":
		return s.handlePlay(ctx, args)
	case "activate":
		return s.handleActivate(args)
	case "debug":
		s.handleDebug(args)
		return nil
	case "get":
		return s.handleRaw(ctx, http.MethodGet, args)
	case "post":
		return s.handleRaw(ctx, http.MethodPost, args)
	case "put":
		return s.handleRaw(ctx, http.MethodPut, args)
	case "help", "?":
		s.handleHelp()
		return nil
	case "quit", "exit", "eof":
		return errQuit
	default:
		return failed(stageUsage, fmt.Errorf("unknown command %q (try help)", cmd))
	}
}

func (s *Shell) handleHelp() {
	fmt.Fprintln(s.out, `commands:
  new agent [game-id]    join a game as a user agent
  new game               create a game
  show agents|board|games|plays
  play <move>            send a move for the active agent
  activate <n>           select agent n
  debug [off]            echo JSON responses
  get|post|put <path>    raw request
  quit`)
}

func (s *Shell) handleNew(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return failed(stageUsage, errors.New("new agent|game"))
	}

	switch args[0] {
	case "agent":
		var gameID string
		if len(args) > 1 {
			gameID = args[1]
		} else {
			id, err := s.pickGame(ctx)
			if err != nil {
				return failed(stageRequest, err)
			}
			gameID = id
		}

		resp, err := s.client.JoinGame(ctx, gameID, "user")
		if err != nil {
			return failed(stageRequest, err)
		}
		s.echo(resp)

		agent, idx, err := s.sess.AddHref(resp.Href, "user", gameID)
		if err != nil {
			return failed(stageSession, err)
		}
		s.log.Info("agent added", zap.Int("index", idx), zap.String("href", agent.Href), zap.String("game", gameID))
		fmt.Fprintf(s.out, "%d %s\n", idx, agent.Href)
		return nil

	case "game":
		resp, err := s.client.CreateGame(ctx)
		if err != nil {
			return failed(stageRequest, err)
		}
		return s.printJSON(resp)

	default:
		return failed(stageUsage, fmt.Errorf("cannot create %q", args[0]))
	}
}

// pickGame returns the first open game, or creates one and seats a server
// agent in it so the user has an opponent.
func (s *Shell) pickGame(ctx context.Context) (string, error) {
	games, err := s.client.Games(ctx)
	if err != nil {
		return "", err
	}
	if len(games) > 0 {
		return games[0].GameID, nil
	}

	created, err := s.client.CreateGame(ctx)
	if err != nil {
		return "", err
	}
	s.echo(created)
	gameID := created.Game.GameID

	opponent, err := s.client.JoinGame(ctx, gameID, "agent")
	if err != nil {
		return "", err
	}
	s.echo(opponent)
	return gameID, nil
}

func (s *Shell) handleShow(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return failed(stageUsage, errors.New("show agents|board|games|plays"))
	}

	switch args[0] {
	case "agents":
		return s.printJSON(s.sess.Hrefs())

	case "board":
		_, snap, o, err := s.view(ctx)
		if err != nil {
			return err
		}
		text, err := board.Render(snap.Board.Board, o)
		if err != nil {
			return failed(stageDecode, err)
		}
		fmt.Fprint(s.out, text)
		return nil

	case "games":
		raw, err := s.client.Do(ctx, http.MethodGet, "/games", nil)
		if err != nil {
			return failed(stageRequest, err)
		}
		return s.printJSON(raw)

	case "plays":
		_, snap, o, err := s.view(ctx)
		if err != nil {
			return err
		}
		plays, err := s.client.Plays(ctx, snap.GameID)
		if err != nil {
			return failed(stageRequest, err)
		}
		s.echo(plays)
		for _, m := range s.tr.ReceiveAll(plays.Moves, o) {
			fmt.Fprintln(s.out, m)
		}
		return nil

	default:
		return failed(stageUsage, fmt.Errorf("cannot show %q", args[0]))
	}
}

func (s *Shell) handlePlay(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return failed(stageUsage, errors.New("play <move>"))
	}

	agent, _, o, err := s.view(ctx)
	if err != nil {
		return err
	}

	// Translation cannot fail here: the tables were checked when the
	// translator was built.
	move := s.tr.Send(args[0], o)
	s.log.Debug("sending move",
		zap.String("typed", args[0]),
		zap.String("sent", move),
		zap.Stringer("orientation", o),
	)

	snap, err := s.client.Play(ctx, agent.Href, move)
	if err != nil {
		return failed(stageRequest, err)
	}
	s.echo(snap)
	return nil
}

func (s *Shell) handleActivate(args []string) error {
	if len(args) != 1 {
		return failed(stageUsage, errors.New("activate <n>"))
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		return failed(stageUsage, fmt.Errorf("agent index %q: %w", args[0], err))
	}
	agent, err := s.sess.Activate(i)
	if err != nil {
		return failed(stageSession, err)
	}
	s.log.Info("agent activated", zap.Int("index", i), zap.String("href", agent.Href))
	return nil
}

func (s *Shell) handleDebug(args []string) {
	s.debug = true
	if len(args) > 0 {
		switch args[0] {
		case "off", "false", "0", "no":
			s.debug = false
		}
	}
	fmt.Fprintf(s.out, "debug %v\n", s.debug)
}

func (s *Shell) handleRaw(ctx context.Context, method string, args []string) error {
	if len(args) != 1 {
		return failed(stageUsage, fmt.Errorf("%s <path>", strings.ToLower(method)))
	}
	raw, err := s.client.Do(ctx, method, args[0], nil)
	if err != nil {
		return failed(stageRequest, err)
	}
	return s.printJSON(raw)
}

// view fetches the active agent's game and works out its orientation. The
// orientation is recomputed on every call.
func (s *Shell) view(ctx context.Context) (session.Agent, *api.GameSnapshot, board.Orientation, error) {
	agent, err := s.sess.Active()
	if err != nil {
		return session.Agent{}, nil, 0, failed(stageSession, err)
	}
	snap, err := s.client.Agent(ctx, agent.Href)
	if err != nil {
		return session.Agent{}, nil, 0, failed(stageRequest, err)
	}
	s.echo(snap)
	o, err := session.Orientation(agent.ID, snap)
	if err != nil {
		return session.Agent{}, nil, 0, failed(stageOrientation, err)
	}
	return agent, snap, o, nil
}

// echo prints v as JSON when debug is on.
func (s *Shell) echo(v any) {
	if !s.debug {
		return
	}
	if err := s.printJSON(v); err != nil {
		s.log.Warn("debug echo failed", zap.Error(err))
	}
}

func (s *Shell) printJSON(v any) error {
	if raw, ok := v.(json.RawMessage); ok {
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return failed(stageDecode, fmt.Errorf("response %q: %w", raw, err))
		}
		v = decoded
	}
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return failed(stageDecode, err)
	}
	fmt.Fprintln(s.out, string(data))
	return nil
}
