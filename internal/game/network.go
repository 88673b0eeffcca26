// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package game

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/playgrid/playgrid/internal/bus"
	"github.com/playgrid/playgrid/internal/platform"
)

// Config holds the dependencies for a Network. There is no ambient
// singleton: every component that needs store or bus access receives
// the Network at construction.
type Config struct {
	// ServerName is this process's name, the first segment of every
	// map identifier it owns.
	ServerName string

	Maps    MapRepository
	Arenas  ArenaRepository
	Groups  GroupRepository
	Members MemberRepository

	Bus bus.Bus

	World      platform.WorldProvider
	Teleporter platform.Teleporter
	Presence   platform.Presence

	// Sessions defaults to a fresh manager when nil.
	Sessions *SessionManager

	// Runner serializes bridge-driven mutations onto one goroutine.
	// Nil runs operations inline, which is fine for tests and for
	// single-threaded hosts.
	Runner *Runner
}

// Network is a process's handle on the shared minigame network. It
// resolves identifiers to local instances or global proxies, hosts the
// factories, and bridges inbound bus events to locally owned entities.
type Network struct {
	serverName string

	maps    MapRepository
	arenas  ArenaRepository
	groups  GroupRepository
	members MemberRepository

	bus        bus.Bus
	world      platform.WorldProvider
	teleporter platform.Teleporter
	presence   platform.Presence

	mapRegistry   *MapRegistry
	arenaRegistry *ArenaRegistry
	sessions      *SessionManager
	runner        *Runner
}

// NewNetwork validates the configuration, builds the registries and
// subscribes the event bridge on the bus.
func NewNetwork(cfg Config) (*Network, error) {
	switch {
	case cfg.ServerName == "":
		return nil, oops.Code("CONFIG_INVALID").Errorf("server name is required")
	case cfg.Maps == nil || cfg.Arenas == nil || cfg.Groups == nil || cfg.Members == nil:
		return nil, oops.Code("CONFIG_INVALID").Errorf("all repositories are required")
	case cfg.Bus == nil:
		return nil, oops.Code("CONFIG_INVALID").Errorf("bus is required")
	case cfg.World == nil || cfg.Teleporter == nil || cfg.Presence == nil:
		return nil, oops.Code("CONFIG_INVALID").Errorf("platform capabilities are required")
	}

	sessions := cfg.Sessions
	if sessions == nil {
		sessions = NewSessionManager()
	}

	n := &Network{
		serverName:    cfg.ServerName,
		maps:          cfg.Maps,
		arenas:        cfg.Arenas,
		groups:        cfg.Groups,
		members:       cfg.Members,
		bus:           cfg.Bus,
		world:         cfg.World,
		teleporter:    cfg.Teleporter,
		presence:      cfg.Presence,
		mapRegistry:   NewMapRegistry(),
		arenaRegistry: NewArenaRegistry(),
		sessions:      sessions,
		runner:        cfg.Runner,
	}
	n.bus.Subscribe(n.HandleEvent)
	return n, nil
}

// ServerName returns this process's server name.
func (n *Network) ServerName() string { return n.serverName }

// Sessions returns the session manager, for shutdown hooks.
func (n *Network) Sessions() *SessionManager { return n.sessions }

// MapRegistry returns the local map registry.
func (n *Network) MapRegistry() *MapRegistry { return n.mapRegistry }

// ArenaRegistry returns the local arena registry.
func (n *Network) ArenaRegistry() *ArenaRegistry { return n.arenaRegistry }

// CreateMap registers a new map owned by this process and persists it.
func (n *Network) CreateMap(ctx context.Context, gameID, name string) (*LocalMap, error) {
	id := NewMapID(n.serverName, gameID, name)

	if _, err := n.maps.Get(ctx, id); err == nil {
		return nil, oops.Code("MAP_EXISTS").
			With("identifier", id.String()).
			Errorf("map %s already exists", id)
	}

	rec := Map{ID: id, CreatedAt: time.Now()}
	if err := n.maps.Insert(ctx, &rec); err != nil {
		return nil, oops.With("identifier", id.String()).Wrap(err)
	}

	local := &LocalMap{net: n, rec: rec}
	if err := n.mapRegistry.Register(local); err != nil {
		return nil, err
	}
	return local, nil
}

// LoadMaps hydrates this server's persisted maps into local instances
// at process start. Corrupt records were already skipped by the store.
func (n *Network) LoadMaps(ctx context.Context, gameID string) ([]*LocalMap, error) {
	recs, err := n.maps.List(ctx, n.serverName, gameID)
	if err != nil {
		return nil, oops.With("game", gameID).Wrap(err)
	}

	out := make([]*LocalMap, 0, len(recs))
	for _, rec := range recs {
		local := &LocalMap{net: n, rec: *rec}
		if err := n.mapRegistry.Register(local); err != nil {
			slog.Warn("skipping duplicate map registration",
				"identifier", rec.ID.String(),
				"error", err,
			)
			continue
		}
		out = append(out, local)
	}
	return out, nil
}

// Map resolves an identifier to the local instance when this process
// owns it, otherwise to a global proxy with a confirmed backing record.
func (n *Network) Map(ctx context.Context, identifier string) (MapEntity, error) {
	id, err := ParseMapID(identifier)
	if err != nil {
		return nil, err
	}

	if local, ok := n.mapRegistry.Lookup(id.String()); ok {
		return local, nil
	}
	if _, err := n.maps.Get(ctx, id); err != nil {
		return nil, oops.Code("MAP_NOT_FOUND").
			With("identifier", id.String()).
			Wrap(err)
	}
	return &GlobalMap{net: n, id: id}, nil
}

// Maps lists the persisted maps for a server and game, from any
// process, with no RPC involved.
func (n *Network) Maps(ctx context.Context, server, gameID string) ([]*Map, error) {
	recs, err := n.maps.List(ctx, server, gameID)
	if err != nil {
		return nil, oops.With("server", server).With("game", gameID).Wrap(err)
	}
	return recs, nil
}

// CreateArena instantiates a map into a world hosted by this process.
func (n *Network) CreateArena(ctx context.Context, mapID MapID, world string) (*LocalArena, error) {
	if _, err := n.maps.Get(ctx, mapID); err != nil {
		return nil, oops.Code("MAP_NOT_FOUND").
			With("identifier", mapID.String()).
			Wrap(err)
	}

	rec := Arena{ID: NewArenaID(mapID, world), CreatedAt: time.Now()}
	if err := n.arenas.Insert(ctx, &rec); err != nil {
		return nil, oops.With("identifier", rec.ID.String()).Wrap(err)
	}

	local := &LocalArena{net: n, rec: rec, state: StateCreated}
	if err := n.arenaRegistry.Register(local); err != nil {
		return nil, err
	}
	return local, nil
}

// Arena resolves an identifier to the local instance when owned here,
// otherwise to a global proxy with a confirmed backing record.
func (n *Network) Arena(ctx context.Context, identifier string) (ArenaEntity, error) {
	id, err := ParseArenaID(identifier)
	if err != nil {
		return nil, err
	}

	if local, ok := n.arenaRegistry.Lookup(id.String()); ok {
		return local, nil
	}
	if _, err := n.arenas.Get(ctx, id); err != nil {
		return nil, oops.Code("ARENA_NOT_FOUND").
			With("identifier", id.String()).
			Wrap(err)
	}
	return &GlobalArena{net: n, id: id}, nil
}

// CreateGroup persists a new group of members queued for a game.
func (n *Network) CreateGroup(ctx context.Context, gameID string, members []uuid.UUID) (*Group, error) {
	g := &Group{
		ID:        uuid.New(),
		Game:      gameID,
		Members:   members,
		CreatedAt: time.Now(),
	}
	if err := n.groups.Insert(ctx, g); err != nil {
		return nil, oops.With("group_id", g.ID.String()).Wrap(err)
	}
	return g, nil
}

// Group resolves a persisted group.
func (n *Network) Group(ctx context.Context, id uuid.UUID) (*Group, error) {
	g, err := n.groups.Get(ctx, id)
	if err != nil {
		return nil, oops.Code("GROUP_NOT_FOUND").
			With("group_id", id.String()).
			Wrapf(ErrGroupNotFound, "group %s", id)
	}
	return g, nil
}

// RemoveGroup deletes a consumed group.
func (n *Network) RemoveGroup(ctx context.Context, id uuid.UUID) error {
	if err := n.groups.RemoveAll(ctx, id); err != nil {
		return oops.With("group_id", id.String()).Wrap(err)
	}
	return nil
}

// SaveMember writes a member record through, delete-before-insert.
// Called when a member connects to or leaves this process.
func (n *Network) SaveMember(ctx context.Context, m Member) error {
	if err := n.members.RemoveAll(ctx, m.ID); err != nil {
		return oops.With("member_id", m.ID.String()).Wrap(err)
	}
	if err := n.members.Insert(ctx, &m); err != nil {
		return oops.With("member_id", m.ID.String()).Wrap(err)
	}
	return nil
}

// Member resolves a persisted member.
func (n *Network) Member(ctx context.Context, id uuid.UUID) (*Member, error) {
	m, err := n.members.Get(ctx, id)
	if err != nil {
		return nil, oops.Code("MEMBER_NOT_FOUND").
			With("member_id", id.String()).
			Wrap(err)
	}
	return m, nil
}

// dispatch publishes an operation request and reports whether the
// owning process acknowledged it. An unclaimed request is returned as
// acknowledged false with a nil error; an error reported by the owner
// comes back as an error.
func (n *Network) dispatch(ctx context.Context, target, op string, args any) (bool, error) {
	ev, err := bus.NewEvent(n.serverName, target, op, args)
	if err != nil {
		return false, oops.With("op", op).With("target", target).Wrap(err)
	}

	resp, err := n.bus.Publish(ctx, ev)
	if err != nil {
		return false, oops.With("op", op).With("target", target).Wrap(err)
	}
	if !resp.Complete {
		return false, nil
	}
	if resp.Error != "" {
		builder := oops.Code("REMOTE_OPERATION_FAILED").
			With("op", op).
			With("target", target)
		if sentinel, ok := sentinelByCode[resp.Code]; ok {
			return true, builder.Wrapf(sentinel, "%s", resp.Error)
		}
		return true, builder.Errorf("%s", resp.Error)
	}
	return true, nil
}

// requestTeleport publishes a teleport request addressed at a member.
// Whichever process hosts the member's connection executes it; an
// unclaimed request means the member is connected nowhere right now.
func (n *Network) requestTeleport(ctx context.Context, member uuid.UUID, pos platform.Position) {
	acked, err := n.dispatch(ctx, member.String(), OpMemberTeleport, TeleportArgs{Pos: pos})
	if err != nil {
		slog.Warn("member teleport failed",
			"member", member.String(),
			"world", pos.World,
			"error", err,
		)
		return
	}
	if !acked {
		slog.Warn("member teleport unclaimed, member offline?",
			"member", member.String(),
			"world", pos.World,
		)
	}
}

// HandleEvent is the per-process bus bridge callback. Events whose
// target this process owns are executed against the local instance and
// returned complete; everything else is passed.
func (n *Network) HandleEvent(ctx context.Context, ev bus.Event) (bus.Event, bool) {
	switch ev.Op {
	case OpMapSave, OpMapRemove:
		local, ok := n.mapRegistry.Lookup(ev.Target)
		if !ok {
			return bus.Event{}, false
		}
		err := n.run(ctx, func() error {
			return n.applyMap(ctx, local, ev)
		})
		ev.Error, ev.Code = errString(err), errCode(err)
	case OpArenaCreateWorld, OpArenaActivate, OpArenaDeactivate, OpArenaRemove:
		local, ok := n.arenaRegistry.Lookup(ev.Target)
		if !ok {
			return bus.Event{}, false
		}
		err := n.run(ctx, func() error {
			return n.applyArena(ctx, local, ev)
		})
		ev.Error, ev.Code = errString(err), errCode(err)
	case OpMemberTeleport:
		// Member operations bypass the runner: they touch no local
		// entity state and may be issued from within an arena
		// operation already holding the runner.
		member, err := uuid.Parse(ev.Target)
		if err != nil || !n.presence.IsOnline(member) {
			return bus.Event{}, false
		}
		err = n.applyTeleport(ctx, member, ev)
		ev.Error, ev.Code = errString(err), errCode(err)
	default:
		slog.Warn("bridge ignoring unknown operation", "op", ev.Op)
		return bus.Event{}, false
	}

	ev.Complete = true
	return ev, true
}

// run executes fn on the runner when configured, inline otherwise.
func (n *Network) run(ctx context.Context, fn func() error) error {
	if n.runner == nil {
		return fn()
	}
	return n.runner.Do(ctx, fn)
}

// applyMap dispatches a map operation kind to the local instance.
func (n *Network) applyMap(ctx context.Context, local *LocalMap, ev bus.Event) error {
	switch ev.Op {
	case OpMapSave:
		var u MapUpdate
		if err := json.Unmarshal(ev.Args, &u); err != nil {
			return oops.Code("BAD_ARGS").With("op", ev.Op).Wrap(err)
		}
		_, err := local.Save(ctx, u)
		return err
	case OpMapRemove:
		_, err := local.Remove(ctx)
		return err
	default:
		return oops.Code("BAD_OP").Errorf("unhandled map operation %q", ev.Op)
	}
}

// applyArena dispatches an arena operation kind to the local instance.
func (n *Network) applyArena(ctx context.Context, local *LocalArena, ev bus.Event) error {
	switch ev.Op {
	case OpArenaCreateWorld:
		_, err := local.CreateWorld(ctx)
		return err
	case OpArenaActivate:
		var args ActivateArgs
		if err := json.Unmarshal(ev.Args, &args); err != nil {
			return oops.Code("BAD_ARGS").With("op", ev.Op).Wrap(err)
		}
		_, err := local.Activate(ctx, args.GroupID)
		return err
	case OpArenaDeactivate:
		_, err := local.Deactivate(ctx)
		return err
	case OpArenaRemove:
		_, err := local.Remove(ctx)
		return err
	default:
		return oops.Code("BAD_OP").Errorf("unhandled arena operation %q", ev.Op)
	}
}

// applyTeleport executes a teleport for a member hosted here.
func (n *Network) applyTeleport(ctx context.Context, member uuid.UUID, ev bus.Event) error {
	var args TeleportArgs
	if err := json.Unmarshal(ev.Args, &args); err != nil {
		return oops.Code("BAD_ARGS").With("op", ev.Op).Wrap(err)
	}
	if err := n.teleporter.Teleport(ctx, member, args.Pos); err != nil {
		return oops.With("member", member.String()).Wrap(err)
	}
	return nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// errCode extracts the machine-readable code from an error for the
// wire envelope. Errors without a code travel as message only.
func errCode(err error) string {
	if err == nil {
		return ""
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		if code, ok := oopsErr.Code().(string); ok {
			return code
		}
	}
	return ""
}
