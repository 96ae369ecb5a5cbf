package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"cardtable/internal/game"
	"cardtable/internal/logger"
	"cardtable/internal/repository"
)

const (
	persistTimeout = 5 * time.Second
	archiveTimeout = 5 * time.Second
)

type joinRequest struct {
	conn  sender
	name  string
	reply chan *session
}

type inbound struct {
	sess *session
	data []byte
}

// Room is the per-table actor. It owns one engine and the session registry,
// and its Run loop is the only goroutine that touches either: every join,
// command and disconnect funnels through the same channels, so commands are
// applied, broadcast and persisted strictly one at a time.
type Room struct {
	name     string
	engine   *game.Engine
	sessions map[string]*session

	store   Saver
	matches *repository.MatchRepository
	log     *slog.Logger

	join    chan joinRequest
	inbound chan inbound
	leave   chan *session
	done    chan struct{}
	stop    sync.Once

	open       atomic.Int32
	lastActive atomic.Int64
}

// Saver is the slice of the durable store contract a running room needs.
type Saver interface {
	Save(ctx context.Context, room string, data []byte) error
}

func newRoom(name string, engine *game.Engine, st Saver, matches *repository.MatchRepository) *Room {
	r := &Room{
		name:     name,
		engine:   engine,
		sessions: make(map[string]*session),
		store:    st,
		matches:  matches,
		log:      logger.With("room", name),
		join:     make(chan joinRequest, 2),
		inbound:  make(chan inbound, 16),
		leave:    make(chan *session, 2),
		done:     make(chan struct{}),
	}
	r.touch()
	return r
}

// Run drives the actor loop until Stop.
func (r *Room) Run() {
	r.log.Info("room started", "players", len(r.engine.Players()))
	for {
		select {
		case req := <-r.join:
			r.handleJoin(req)
		case in := <-r.inbound:
			r.handleMessage(in.sess, in.data)
		case sess := <-r.leave:
			r.handleLeave(sess)
		case <-r.done:
			r.log.Info("room stopped")
			return
		}
	}
}

// Stop terminates the actor loop. Meant for idle rooms; live sessions keep
// their connections but the room stops answering.
func (r *Room) Stop() {
	r.stop.Do(func() { close(r.done) })
}

// Idle reports whether the room has had no sessions and no traffic for at
// least d.
func (r *Room) Idle(d time.Duration) bool {
	return r.open.Load() == 0 && time.Since(time.Unix(r.lastActive.Load(), 0)) > d
}

// Join registers a connection under a player name and returns its session, or
// nil when the room has been stopped.
func (r *Room) Join(conn sender, name string) *session {
	req := joinRequest{conn: conn, name: name, reply: make(chan *session, 1)}
	select {
	case r.join <- req:
	case <-r.done:
		return nil
	}
	select {
	case sess := <-req.reply:
		return sess
	case <-r.done:
		return nil
	}
}

// Receive queues one raw client frame for the actor loop.
func (r *Room) Receive(sess *session, data []byte) {
	select {
	case r.inbound <- inbound{sess: sess, data: data}:
	case <-r.done:
	}
}

// Leave reports a closed connection.
func (r *Room) Leave(sess *session) {
	select {
	case r.leave <- sess:
	case <-r.done:
	}
}

func (r *Room) handleJoin(req joinRequest) {
	sess := &session{id: uuid.NewString(), name: req.name, conn: req.conn}
	r.sessions[sess.id] = sess
	r.open.Add(1)
	sessionsOpen.Inc()
	r.touch()

	if err := r.engine.AddPlayer(sess.name); err != nil {
		// Can't deal a hand; the session stays registered and keeps
		// receiving the shared view.
		r.log.Warn("cannot seat player", "player", sess.name, "error", err)
		r.sendError(sess, err)
	}

	r.sendHand(sess)
	r.broadcastState()
	r.log.Info("session joined", "player", sess.name, "sessions", len(r.sessions))

	req.reply <- sess
}

func (r *Room) handleLeave(sess *session) {
	if _, ok := r.sessions[sess.id]; !ok {
		return
	}
	sess.quit = true
	delete(r.sessions, sess.id)
	r.open.Add(-1)
	sessionsOpen.Dec()
	r.log.Info("session left", "player", sess.name, "sessions", len(r.sessions))
	r.broadcast(Message{Cmd: cmdQuit, Data: sess.name})
}

func (r *Room) handleMessage(sess *session, raw []byte) {
	if sess.quit {
		sess.conn.close()
		return
	}
	r.touch()

	cmd, err := parseCommand(raw)
	if err != nil {
		r.log.Warn("dropping frame", "player", sess.name, "error", err)
		return
	}

	// The turn marker follows whoever acted last. Display state only.
	r.engine.SetCurrentPlayer(sess.name)

	switch c := cmd.(type) {
	case discardCommand:
		if err := r.engine.Discard(sess.name, c.Card); err != nil {
			r.reject(sess, cmd, err)
			return
		}
		if len(r.engine.Hand(sess.name)) == 0 {
			r.announceWinner(sess.name)
		}
	case passCommand:
		r.engine.Pass()
	case pickupCommand:
		card, err := r.engine.Pickup(sess.name)
		if err != nil {
			r.reject(sess, cmd, err)
			return
		}
		r.send(sess, Message{Cmd: cmdLatestCard, Data: card})
	case undiscardCommand:
		card, err := r.engine.Undiscard(sess.name)
		if err != nil {
			r.reject(sess, cmd, err)
			return
		}
		r.send(sess, Message{Cmd: cmdLatestCard, Data: card})
	case resetCommand:
		commandsTotal.WithLabelValues(cmd.tag()).Inc()
		r.reset()
		return
	}
	commandsTotal.WithLabelValues(cmd.tag()).Inc()

	r.sendHand(sess)
	r.broadcastState()
	r.persist()
}

// reset swaps in a brand new engine and kicks every session; participants
// reconnect to pick up the fresh table. The fresh snapshot is persisted
// immediately so a restart cannot resurrect the old game.
func (r *Room) reset() {
	r.log.Info("table reset", "sessions", len(r.sessions))
	r.engine = game.New()
	r.persist()

	for id, sess := range r.sessions {
		sess.quit = true
		sess.conn.close()
		delete(r.sessions, id)
		r.open.Add(-1)
		sessionsOpen.Dec()
	}
}

func (r *Room) reject(sess *session, cmd command, err error) {
	commandErrors.WithLabelValues(cmd.tag()).Inc()
	r.log.Info("command rejected", "player", sess.name, "cmd", cmd.tag(), "error", err)
	r.sendError(sess, err)
}

func (r *Room) announceWinner(name string) {
	r.broadcast(Message{Cmd: cmdWinner, Data: name})

	if r.matches == nil {
		return
	}
	m := &repository.Match{
		Room:    r.name,
		Winner:  name,
		Players: r.engine.Players(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if err := r.matches.Create(ctx, m); err != nil {
			logger.Error("archive match", "room", m.Room, "winner", m.Winner, "error", err)
		}
	}()
}

func (r *Room) sendHand(sess *session) {
	hand := r.engine.Hand(sess.name)
	if hand == nil {
		hand = []game.Card{}
	}
	r.send(sess, Message{Cmd: cmdState, Data: handPayload{Hand: hand}})
}

func (r *Room) broadcastState() {
	r.broadcast(Message{Cmd: cmdState, Data: r.engine.SharedView()})
}

func (r *Room) sendError(sess *session, err error) {
	r.send(sess, Message{Error: err.Error()})
}

func (r *Room) send(sess *session, msg Message) {
	data := encode(msg)
	if data == nil {
		return
	}
	if !sess.conn.enqueue(data) {
		r.prune(sess)
	}
}

// broadcast fans a message out to every live session, collecting the ones
// whose send failed and removing them after the pass.
func (r *Room) broadcast(msg Message) {
	data := encode(msg)
	if data == nil {
		return
	}

	var dead []*session
	for _, sess := range r.sessions {
		if !sess.conn.enqueue(data) {
			dead = append(dead, sess)
		}
	}
	for _, sess := range dead {
		r.prune(sess)
	}
}

// prune drops a session whose transport failed. No quit notice: the read pump
// will observe the close and Leave normally finds the session already gone.
func (r *Room) prune(sess *session) {
	sess.quit = true
	if _, ok := r.sessions[sess.id]; ok {
		delete(r.sessions, sess.id)
		r.open.Add(-1)
		sessionsOpen.Dec()
		r.log.Warn("session pruned", "player", sess.name)
	}
	sess.conn.close()
}

// persist writes the current snapshot. This runs inside the actor loop after
// the broadcast, so the store can be at most one command behind what clients
// have already seen; a failed write is logged and the room plays on.
func (r *Room) persist() {
	data, err := json.Marshal(r.engine.Snapshot())
	if err != nil {
		r.log.Error("marshal snapshot", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := r.store.Save(ctx, r.name, data); err != nil {
		snapshotErrors.Inc()
		r.log.Error("persist snapshot", "error", err)
		return
	}
	snapshotWrites.Inc()
}

func (r *Room) touch() {
	r.lastActive.Store(time.Now().Unix())
}
